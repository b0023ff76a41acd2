// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// confirm asks before sending [label] unless --yes was passed.
func confirm(cmd *cobra.Command, label string) error {
	if yes, err := cmd.Flags().GetBool("yes"); err == nil && yes {
		return nil
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	answer, err := prompt.Run()
	if err != nil {
		// promptui returns ErrAbort when the answer is not "y".
		if errors.Is(err, promptui.ErrAbort) {
			return ErrAborted
		}
		return err
	}
	if strings.ToLower(answer) != "y" {
		return ErrAborted
	}
	return nil
}
