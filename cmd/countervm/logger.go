// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/consts"
)

const (
	logMaxSize  = 8 // megabytes
	logMaxAge   = 0 // days
	logMaxFiles = 7
)

// newLogger writes colored output to stderr at [LogDisplayLevel] and JSON to
// a rotated file in [LogDir] at [LogLevel].
func newLogger(cfg *config.Config) (logging.Logger, func() error) {
	consoleCore := logging.NewWrappedCore(cfg.LogDisplayLevel, os.Stderr, logging.Colors.ConsoleEncoder())

	rw := &lumberjack.Logger{
		Filename:   path.Join(cfg.LogDir, consts.Name+".log"),
		MaxSize:    logMaxSize,  // megabytes
		MaxAge:     logMaxAge,   // days
		MaxBackups: logMaxFiles, // files
		Compress:   true,
	}
	fileCore := logging.NewWrappedCore(cfg.LogLevel, rw, logging.JSON.FileEncoder())
	prefix := logging.JSON.WrapPrefix(consts.Name)

	return logging.NewLogger(prefix, consoleCore, fileCore), rw.Close
}
