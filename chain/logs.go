// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "fmt"

// Logs collects the diagnostic lines emitted by the actions of one
// transaction.
type Logs struct {
	lines []string
}

func (l *Logs) Msg(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *Logs) Lines() []string {
	return l.lines
}
