// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/admindeck/admindeck/internal/config"
)

// serviceName identifies this process in logs.
const serviceName = "admindeck"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the AdminDeck CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admindeck",
		Short: "AdminDeck - accounts and sessions for the admin console",
		Long: `AdminDeck serves the account and session API behind the admin
console: registration, login with cookie sessions, and user management.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (YAML)")
	flags.String("environment", "", "deployment environment (development, test, production)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-format", config.DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// loadConfig reads the configuration for cmd, applying any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	//nolint:wrapcheck // config errors already carry codes
	return config.Load(config.Options{
		File:  configFile,
		Flags: cmd.Flags(),
	})
}
