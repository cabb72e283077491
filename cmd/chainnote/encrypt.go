package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/message"
)

var (
	encryptRecipient string
	encryptText      string
	decryptEnvelope  string
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a text message into a standard envelope",
	Long: `Seal text into a standard ephemeral-ECDH envelope (spec.md §4.D)
addressed to recipient's X25519 key-agreement public key, and print the
resulting note bytes base64-encoded.`,
	Example: `  chainnote encrypt --to <base64-agreement-pubkey> --text "hello"`,
	RunE:    runEncrypt,
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a standard envelope as this identity",
	Long: `Parse and open a standard envelope's note bytes (spec.md §4.D). Works
whether this identity is the original sender (recovering its own sent
message) or the recipient.`,
	Example: `  chainnote decrypt --envelope <base64-note-bytes>`,
	RunE:    runDecrypt,
}

func init() {
	encryptCmd.Flags().StringVar(&encryptRecipient, "to", "", "recipient's base64 X25519 agreement public key")
	encryptCmd.Flags().StringVar(&encryptText, "text", "", "plaintext message body")
	rootCmd.AddCommand(encryptCmd)

	decryptCmd.Flags().StringVar(&decryptEnvelope, "envelope", "", "base64 standard-envelope note bytes")
	rootCmd.AddCommand(decryptCmd)
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	if encryptRecipient == "" || encryptText == "" {
		return fmt.Errorf("--to and --text are required")
	}

	kp, err := loadAgreementKeyPair()
	if err != nil {
		return err
	}
	recipientPub, err := decodeStaticPub(encryptRecipient)
	if err != nil {
		return err
	}

	env, err := message.Encrypt(kp, recipientPub, encryptText, nil)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(env.Emit()))
	return nil
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	if decryptEnvelope == "" {
		return fmt.Errorf("--envelope is required")
	}

	kp, err := loadAgreementKeyPair()
	if err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(decryptEnvelope)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	env, err := envelope.ParseStandard(raw)
	if err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}

	dec, err := message.Decrypt(kp, env)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if dec.Filtered {
		fmt.Println("(key-publish announcement, no user-visible text)")
		return nil
	}
	fmt.Println(dec.Text)
	if dec.ReplyToID != "" {
		fmt.Printf("  in reply to: %s (%s)\n", dec.ReplyToID, dec.ReplyToPreview)
	}
	return nil
}
