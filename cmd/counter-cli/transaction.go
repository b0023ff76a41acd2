// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/vm"
)

const txTimeout = 30 * time.Second

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create the counter record, paying its rent",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sendAction(cmd, "initialize", func(addr codec.Address) chain.Action {
			return &actions.Initialize{Counter: addr}
		})
	},
}

var incrementCmd = &cobra.Command{
	Use:   "increment",
	Short: "Add one to the counter",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sendAction(cmd, "increment", func(addr codec.Address) chain.Action {
			return &actions.Increment{Counter: addr}
		})
	},
}

// counterAddressFor returns --counter if set, otherwise the node's canonical
// counter address.
func counterAddressFor(ctx context.Context, cmd *cobra.Command, client *rpc.JSONRPCClient) (codec.Address, error) {
	if raw, err := cmd.Flags().GetString("counter"); err == nil && raw != "" {
		return codec.ParseAddress(raw)
	}
	addr, _, err := client.CounterAddress(ctx)
	return addr, err
}

func sendAction(cmd *cobra.Command, name string, build func(codec.Address) chain.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)
	defer cancel()

	key, err := loadKey(cmd)
	if err != nil {
		return err
	}
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return fmt.Errorf("failed to get endpoint: %w", err)
	}
	client := rpc.NewJSONRPCClient(endpoint)
	addr, err := counterAddressFor(ctx, cmd, client)
	if err != nil {
		return fmt.Errorf("failed to get counter address: %w", err)
	}
	if err := confirm(cmd, fmt.Sprintf("%s counter %s", name, addr)); err != nil {
		return err
	}

	factory := auth.NewED25519Factory(key)
	result, err := client.SendTransaction(ctx, vm.Parser, []chain.Action{build(addr)}, factory)
	if err != nil && !errors.Is(err, rpc.ErrTxFailed) {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	resp := txResponse{
		TxID:    result.TxID,
		Success: result.Success,
		Error:   result.Error,
		Logs:    result.Logs,
	}
	if result.Success {
		if len(result.Outputs) != 1 {
			return fmt.Errorf("%w: expected 1 output, got %d", ErrUnexpectedOutput, len(result.Outputs))
		}
		output, err := chain.UnmarshalOutput(result.Outputs[0], vm.Parser)
		if err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
		resp.Output = output
	}
	return printValue(cmd, resp)
}

type txResponse struct {
	TxID    ids.ID       `json:"txId"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Logs    []string     `json:"logs"`
	Output  chain.Output `json:"output,omitempty"`
}

func (r txResponse) String() string {
	var result strings.Builder
	if r.Success {
		result.WriteString(fmt.Sprintf("✅ Transaction successful (txID: %s)\n", r.TxID))
	} else {
		result.WriteString(fmt.Sprintf("❌ Transaction failed (txID: %s): %s\n", r.TxID, r.Error))
	}
	for _, line := range r.Logs {
		result.WriteString("  " + line + "\n")
	}
	switch o := r.Output.(type) {
	case *actions.InitializeResult:
		result.WriteString(fmt.Sprintf("count: %d bump: %d\n", o.Count, o.Bump))
	case *actions.IncrementResult:
		result.WriteString(fmt.Sprintf("count: %d\n", o.Count))
	}
	return strings.TrimSuffix(result.String(), "\n")
}

func init() {
	for _, c := range []*cobra.Command{initializeCmd, incrementCmd} {
		c.Flags().String("counter", "", "Counter address (defaults to the node's canonical address)")
		c.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
		rootCmd.AddCommand(c)
	}
}
