// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
)

// Parser decodes every action, auth and output countervm understands.
var Parser chain.Parser

// Setup types
func init() {
	actionParser := codec.NewTypeParser[chain.Action]()
	authParser := codec.NewTypeParser[chain.Auth]()
	outputParser := codec.NewTypeParser[chain.Output]()

	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		actionParser.Register(&actions.Initialize{}, actions.UnmarshalInitialize),
		actionParser.Register(&actions.Increment{}, actions.UnmarshalIncrement),

		// When registering new auth, ALWAYS make sure to append at the end.
		authParser.Register(&auth.ED25519{}, auth.UnmarshalED25519),

		outputParser.Register(&actions.InitializeResult{}, actions.UnmarshalInitializeResult),
		outputParser.Register(&actions.IncrementResult{}, actions.UnmarshalIncrementResult),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
	Parser = chain.NewRegistry(actionParser, authParser, outputParser)
}
