// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/pda"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Derive program addresses",
}

var addressCounterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Print the counter address of the program and its bump",
	RunE: func(cmd *cobra.Command, _ []string) error {
		programID, err := loadProgramID(cmd)
		if err != nil {
			return fmt.Errorf("failed to get program ID: %w", err)
		}
		addr, bump, err := pda.FindProgramAddress([][]byte{[]byte(consts.CounterSeed)}, programID)
		if err != nil {
			return err
		}
		return printValue(cmd, addressCounterCmdResponse{
			ProgramID: programID.String(),
			Address:   addr.String(),
			Bump:      bump,
		})
	},
}

type addressCounterCmdResponse struct {
	ProgramID string `json:"programId"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
}

func (r addressCounterCmdResponse) String() string {
	return fmt.Sprintf("%s (bump %d)", r.Address, r.Bump)
}

func init() {
	addressCmd.AddCommand(addressCounterCmd)
	rootCmd.AddCommand(addressCmd)
}
