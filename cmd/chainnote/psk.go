package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainnote/e2e/envelope"
	"github.com/chainnote/e2e/message"
	"github.com/chainnote/e2e/pskmanager"
	"github.com/chainnote/e2e/pskmanager/store"
	"github.com/chainnote/e2e/pskmessage"
	"github.com/chainnote/e2e/pskuri"
)

var pskDir string

var pskCmd = &cobra.Command{
	Use:   "psk",
	Short: "Manage PSK contacts and exchange ratcheted PSK messages",
}

var pskAddContactCmd = &cobra.Command{
	Use:   "add-contact",
	Short: "Register a contact from an out-of-band PSK URI",
	Long: `Parse an algochat-psk:// URI (spec.md §6) and save its address,
initial PSK, and label as a new contact.`,
	Example: `  chainnote psk add-contact "algochat-psk://v1?addr=ABCD&psk=<base64url>&label=alice"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPskAddContact,
}

var (
	pskSendTo   string
	pskSendText string
)

var pskSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Encrypt a message to a contact using the PSK ratchet",
	Example: `  chainnote psk send --to <address> --text "hello"`,
	RunE: runPskSend,
}

var pskReceiveEnvelope string

var pskReceiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Decrypt a PSK envelope received from a contact",
	Example: `  chainnote psk receive --from <address> --envelope <base64-note-bytes>`,
	RunE: runPskReceive,
}

var pskReceiveFrom string

func init() {
	pskCmd.PersistentFlags().StringVar(&pskDir, "psk-dir", ".chainnote/psk", "directory holding PSK contact and state records")

	pskCmd.AddCommand(pskAddContactCmd)

	pskSendCmd.Flags().StringVar(&pskSendTo, "to", "", "recipient contact address")
	pskSendCmd.Flags().StringVar(&pskSendText, "text", "", "plaintext message body")
	pskCmd.AddCommand(pskSendCmd)

	pskReceiveCmd.Flags().StringVar(&pskReceiveFrom, "from", "", "sender contact address")
	pskReceiveCmd.Flags().StringVar(&pskReceiveEnvelope, "envelope", "", "base64 PSK-envelope note bytes")
	pskCmd.AddCommand(pskReceiveCmd)

	rootCmd.AddCommand(pskCmd)
}

func openPskManager() (*pskmanager.Manager, error) {
	backend, err := store.NewFileStore(pskDir)
	if err != nil {
		return nil, fmt.Errorf("open psk store: %w", err)
	}
	return pskmanager.NewManager(backend), nil
}

func runPskAddContact(cmd *cobra.Command, args []string) error {
	parsed, err := pskuri.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse psk uri: %w", err)
	}

	mgr, err := openPskManager()
	if err != nil {
		return err
	}

	contact := &pskmanager.Contact{
		Address:    parsed.Address,
		InitialPSK: parsed.Key,
		Label:      parsed.Label,
	}
	if err := mgr.AddContact(cmd.Context(), contact); err != nil {
		return fmt.Errorf("add contact: %w", err)
	}

	fmt.Printf("Contact %s saved (label=%q)\n", parsed.Address, parsed.Label)
	return nil
}

func runPskSend(cmd *cobra.Command, args []string) error {
	if pskSendTo == "" || pskSendText == "" {
		return fmt.Errorf("--to and --text are required")
	}

	kp, err := loadAgreementKeyPair()
	if err != nil {
		return err
	}

	mgr, err := openPskManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	contact, err := mgr.GetContact(ctx, pskSendTo)
	if err != nil {
		return fmt.Errorf("lookup contact %s: %w", pskSendTo, err)
	}
	sendState, persist, err := mgr.SendState(ctx, pskSendTo)
	if err != nil {
		return fmt.Errorf("load send state: %w", err)
	}

	env, err := pskmessage.Encrypt(kp, contact.StaticPub, contact.InitialPSK, sendState, persist, pskSendText, nil)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(env.Emit()))
	return nil
}

func runPskReceive(cmd *cobra.Command, args []string) error {
	if pskReceiveFrom == "" || pskReceiveEnvelope == "" {
		return fmt.Errorf("--from and --envelope are required")
	}

	kp, err := loadAgreementKeyPair()
	if err != nil {
		return err
	}

	mgr, err := openPskManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	contact, err := mgr.GetContact(ctx, pskReceiveFrom)
	if err != nil {
		return fmt.Errorf("lookup contact %s: %w", pskReceiveFrom, err)
	}
	receiveState, err := mgr.ReceiveState(ctx, pskReceiveFrom)
	if err != nil {
		return fmt.Errorf("load receive state: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(pskReceiveEnvelope)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	env, err := envelope.ParsePSK(raw)
	if err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}

	dec, err := pskmessage.Decrypt(kp, env, contact.InitialPSK, receiveState)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if err := mgr.PersistReceiveState(ctx, pskReceiveFrom); err != nil {
		return fmt.Errorf("persist receive state: %w", err)
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
