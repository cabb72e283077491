package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainnote/e2e/identitystore"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/signverify"
)

var publishSign bool

var publishKeyCmd = &cobra.Command{
	Use:   "publish-key",
	Short: "Build a key-publish envelope announcing this identity's agreement key",
	Long: `Build the note bytes for a key-publish envelope (spec.md §4.H): a
plaintext announcement of this identity's X25519 key-agreement public
key, optionally signed by its Ed25519 signing key, ready to hand to a
chain client as the note of a payment transaction.`,
	Example: `  # Unsigned key publish
  chainnote publish-key

  # Signed key publish (lets discoverers prefer it over a later forgery)
  chainnote publish-key --sign`,
	RunE: runPublishKey,
}

func init() {
	publishKeyCmd.Flags().BoolVar(&publishSign, "sign", false, "sign the announcement with this identity's Ed25519 key")
	rootCmd.AddCommand(publishKeyCmd)
}

func runPublishKey(cmd *cobra.Command, args []string) error {
	kp, err := loadAgreementKeyPair()
	if err != nil {
		return err
	}

	var env interface{ Emit() []byte }
	if publishSign {
		store, err := identitystore.New(identityDir)
		if err != nil {
			return fmt.Errorf("open identity store: %w", err)
		}
		priv, err := store.Load(identityID)
		if err != nil {
			return fmt.Errorf("load identity %q: %w", identityID, err)
		}
		sig := signverify.Sign(priv, kp.PublicKey)
		env, err = message.EncryptKeyPublishSigned(kp, kp.PublicKey, sig)
		if err != nil {
			return fmt.Errorf("build signed key-publish envelope: %w", err)
		}
	} else {
		env, err = message.EncryptKeyPublish(kp, kp.PublicKey)
		if err != nil {
			return fmt.Errorf("build key-publish envelope: %w", err)
		}
	}

	fmt.Println(base64.StdEncoding.EncodeToString(env.Emit()))
	return nil
}
