package main

import (
	"os"

	"github.com/yigit/hobbysphere/internal/pkg/logger"
)

func main() {
	if err := rootApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
