package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cperrin88/cavern/internal/logger"
	"github.com/cperrin88/cavern/pkg/config"
	"github.com/cperrin88/cavern/pkg/credentials"
	"github.com/cperrin88/cavern/pkg/errors"
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an API key",
		Long: `Verify an API key against the content API and store it.

Without --api-key the configured key (api.api_key or CAVERN_API_KEY) is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, apiKey)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to log in with")

	return cmd
}

func runLogin(cmd *cobra.Command, apiKey string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = cfg.API.APIKey
	}
	if apiKey == "" {
		return fmt.Errorf("%w: --api-key or %s", errors.ErrMissingArgument, config.EnvAPIKey)
	}

	store := newCredentialStore(cfg)
	if _, err := store.Login(cmd.Context(), credentials.Credentials{APIKey: apiKey}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	username := store.Credentials().Username
	logger.Success("Logged in", logger.Fields{"username": username})
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), username)
	return nil
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := newCredentialStore(cfg).Logout(); err != nil {
				return err
			}
			logger.Success("Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account of the stored session",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := newCredentialStore(cfg)
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	sess, err := store.CurrentUser()
	if err != nil {
		return fmt.Errorf("%w: run cavern login", err)
	}
	user, err := sess.Me(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput(cfg) {
		return printJSON(cmd.OutOrStdout(), user)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", user.Username, user.ID)
	return nil
}
