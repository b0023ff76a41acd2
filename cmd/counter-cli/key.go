// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/crypto/ed25519"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key and store it in the config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		if err := setConfigValue("key", key.ToHex()); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, keyCmdResponse{
			Address: auth.NewED25519Address(key.PublicKey()).String(),
		})
	},
}

var keyImportCmd = &cobra.Command{
	Use:   "import [hex|file]",
	Short: "Import a private key from hex or a file and store it in the config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := privateKeyFromString(args[0])
		if err != nil {
			return fmt.Errorf("failed to decode key: %w", err)
		}
		if err := setConfigValue("key", key.ToHex()); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, keyCmdResponse{
			Address: auth.NewED25519Address(key.PublicKey()).String(),
		})
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print current key address",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := loadKey(cmd)
		if err != nil {
			return err
		}
		return printValue(cmd, keyCmdResponse{
			Address: auth.NewED25519Address(key.PublicKey()).String(),
		})
	},
}

type keyCmdResponse struct {
	Address string `json:"address"`
}

func (r keyCmdResponse) String() string {
	return r.Address
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd, keyImportCmd, keyAddressCmd)
	rootCmd.AddCommand(keyCmd)
}
