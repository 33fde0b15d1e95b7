// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"codeberg.org/oliverandrich/notes-backend/internal/config"
	"codeberg.org/oliverandrich/notes-backend/internal/server"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "notes-backend",
		Usage:   "OTP and Google sign-in backed notes API server",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:   "cleanup-otps",
				Usage:  "Remove expired and consumed one-time passcodes",
				Flags:  config.Flags(),
				Action: server.CleanupOTPs,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
