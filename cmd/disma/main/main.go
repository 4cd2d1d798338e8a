package main

import (
	"context"
	"os"

	"github.com/fuad-daoud/disma/logger/dlog"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		dlog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
