// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	identityDir string
	identityID  string
)

var rootCmd = &cobra.Command{
	Use:   "chainnote",
	Short: "chainnote CLI - end-to-end encrypted messaging over blockchain notes",
	Long: `chainnote provides tools for deriving key-agreement identities, publishing
them on-chain, and encrypting/decrypting messages carried as opaque
payment-transaction note bytes.

This tool supports:
- Ed25519 identity generation and X25519 key-agreement derivation
- Key-publish envelope construction (signed or unsigned)
- Standard (ephemeral-ECDH) and PSK-ratcheted encrypt/decrypt
- PSK contact bookkeeping
- On-chain key discovery`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&identityDir, "identity-dir", ".chainnote/keys", "directory holding Ed25519 identities")
	rootCmd.PersistentFlags().StringVar(&identityID, "identity", "default", "identity id within identity-dir")

	// Subcommands register themselves in their own files:
	// - keygen.go: keygenCmd
	// - publish.go: publishKeyCmd
	// - encrypt.go: encryptCmd, decryptCmd
	// - psk.go: pskCmd (add-contact, send, receive)
	// - discover.go: discoverCmd
}
