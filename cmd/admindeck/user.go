// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/internal/config"
	"github.com/admindeck/admindeck/internal/logging"
	"github.com/admindeck/admindeck/internal/store"
	"github.com/admindeck/admindeck/internal/users"
	userspg "github.com/admindeck/admindeck/internal/users/postgres"
)

const defaultUserTimeout = 30 * time.Second

// userCreator is the part of users.Service the user command needs.
type userCreator interface {
	Create(ctx context.Context, in users.CreateInput) (*auth.User, error)
}

// userServiceFactory opens the database and returns a user service plus a
// function that releases it. Replaced in tests.
var userServiceFactory = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (userCreator, func(), error) {
	pool, err := store.Connect(ctx, cfg.DatabaseURL, store.WithConnectLogger(logger))
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	policy, err := auth.NewPasswordPolicy(cfg.PasswordConfig())
	if err != nil {
		pool.Close()
		return nil, nil, oops.With("operation", "create password policy").Wrap(err)
	}
	svc, err := users.NewService(userspg.NewUserRepository(pool), policy, users.WithLogger(logger))
	if err != nil {
		pool.Close()
		return nil, nil, oops.With("operation", "create user service").Wrap(err)
	}
	return svc, pool.Close, nil
}

// userCreateConfig holds flags for user create.
type userCreateConfig struct {
	username string
	email    string
	password string
	timeout  time.Duration
}

// NewUserCmd creates the user subcommand.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	cfg := &userCreateConfig{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account directly in the database. The first account
created becomes the administrator. If --password is omitted the password is
prompted for, or read from the first line of stdin when it is not a terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUserCreate(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "", "username (required)")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password (prompted when omitted)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultUserTimeout, "timeout for database operations")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag is defined above
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag is defined above

	return cmd
}

func runUserCreate(cmd *cobra.Command, cfg *userCreateConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := appCfg.RequireDatabaseURL(); err != nil {
		return err //nolint:wrapcheck // already coded
	}
	logger := logging.Setup(serviceName, version, appCfg.Log.Format, appCfg.Log.Level, cmd.ErrOrStderr())

	password := cfg.password
	if password == "" {
		password, err = readPassword(cmd)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	svc, release, err := userServiceFactory(ctx, appCfg, logger)
	if err != nil {
		return err
	}
	defer release()

	user, err := svc.Create(ctx, users.CreateInput{
		Username: cfg.username,
		Email:    cfg.email,
		Password: password,
	})
	if err != nil {
		return err //nolint:wrapcheck // taxonomy error is shown as-is
	}

	cmd.Printf("Created %s %s (%s)\n", user.Role, user.Username, user.ID)
	return nil
}

// readPassword prompts on a terminal, otherwise reads one line from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // fd fits in int
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
		cmd.Print("Password: ")
		first, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
		}
		cmd.Print("Confirm password: ")
		second, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
		}
		if string(first) != string(second) {
			return "", oops.Code("PASSWORD_MISMATCH").Errorf("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", oops.Code("PASSWORD_READ_FAILED").Errorf("no password given on stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
