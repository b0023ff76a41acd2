// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/utils"
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Read the counter record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		client := rpc.NewJSONRPCClient(endpoint)
		reply, err := client.Counter(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read counter: %w", err)
		}
		return printValue(cmd, counterCmdResponse(*reply))
	},
}

type counterCmdResponse rpc.CounterReply

func (r counterCmdResponse) String() string {
	if !r.Exists {
		return fmt.Sprintf("%s: not initialized", r.Address)
	}
	return fmt.Sprintf("%s: count=%d bump=%d", r.Address, r.Count, r.Bump)
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Read the balance of an address (defaults to the current key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr codec.Address
		if len(args) == 1 {
			parsed, err := codec.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse address: %w", err)
			}
			addr = parsed
		} else {
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			addr = auth.NewED25519Address(key.PublicKey())
		}

		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		client := rpc.NewJSONRPCClient(endpoint)
		balance, err := client.Balance(context.Background(), addr)
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		return printValue(cmd, balanceCmdResponse{
			Address: addr.String(),
			Balance: balance,
		})
	},
}

type balanceCmdResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

func (r balanceCmdResponse) String() string {
	return fmt.Sprintf("%s: %s", r.Address, utils.FormatBalance(r.Balance))
}

func init() {
	rootCmd.AddCommand(counterCmd, balanceCmd)
}
