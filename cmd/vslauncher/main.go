package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// @title Vintage Story Launcher API
// @version 1.0
// @description Local control API for installing game versions, managing instances and browsing mods

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /
// @schemes http

// @tag.name Versions
// @tag.description Version catalog and installed versions

// @tag.name Downloads
// @tag.description Version downloads and progress

// @tag.name Instances
// @tag.description Instance management and launching

// @tag.name Mods
// @tag.description Remote mod listings

// @tag.name System
// @tag.description Launcher health

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state := &cliState{}
	root := newRootCmd(state)
	err := root.ExecuteContext(ctx)
	if closeErr := state.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), formatError(err))
		stop()
		os.Exit(1)
	}
}
