// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import "errors"

var ErrUnexpectedStatus = errors.New("unexpected status code")
