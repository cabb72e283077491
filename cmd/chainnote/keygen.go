package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainnote/e2e/identity"
	"github.com/chainnote/e2e/identitystore"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new Ed25519 signing identity",
	Long: `Generate a new Ed25519 signing identity and derive its X25519
key-agreement public key (the value announced by publish-key).`,
	Example: `  # Generate the default identity
  chainnote keygen

  # Generate a named identity in a custom directory
  chainnote keygen --identity alice --identity-dir ./keys`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	store, err := identitystore.New(identityDir)
	if err != nil {
		return fmt.Errorf("open identity store: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generate ed25519 key: %w", err)
	}
	if err := store.Save(identityID, priv); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}

	kp, err := identity.DeriveFromEd25519PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("derive agreement key pair: %w", err)
	}

	fmt.Printf("Identity saved: %s (%s)\n", identityID, identityDir)
	fmt.Printf("  Signing public key:  %s\n", base64.StdEncoding.EncodeToString(pub))
	fmt.Printf("  Agreement public key: %s\n", base64.StdEncoding.EncodeToString(kp.PublicKey[:]))
	return nil
}
