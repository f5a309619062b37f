package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go-auth-dashboard/internal/apiclient"
	"go-auth-dashboard/internal/config"
	"go-auth-dashboard/internal/event"
	"go-auth-dashboard/internal/logger"
	"go-auth-dashboard/internal/service"
	"go-auth-dashboard/internal/session"
)

type rootOptions struct {
	apiURL        string
	sessionDriver string
	sessionFile   string
	verbose       bool
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Each invocation gets its own flag
// state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dashctl",
		Short: "dashctl signs in to the dashboard API from the terminal",
		Long: `dashctl talks to the same auth API as the web dashboard and keeps the
session (access token, refresh token, user) in a local store, by default a
JSON file in the user config directory.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Auth API base URL (default from API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.sessionDriver, "session-driver", "", "Session store driver: memory, file, bbolt, redis or postgres")
	root.PersistentFlags().StringVar(&opts.sessionFile, "session-file", "", "Session file for the file driver")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newCheckEmailCmd(opts),
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newRefreshCmd(opts),
		newWhoamiCmd(opts),
		newProfileCmd(opts),
	)

	return root
}

// client bundles everything a command needs. close must be called.
type client struct {
	auth     *service.AuthClient
	provider *service.SessionProvider
	close    func()
}

func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(os.Getenv("SESSION_DRIVER")) == "" {
		cfg.SessionDriver = config.SessionDriverFile
	}
	if o.apiURL != "" {
		cfg.APIBaseURL = strings.TrimRight(o.apiURL, "/")
	}
	if o.sessionDriver != "" {
		cfg.SessionDriver = strings.ToLower(o.sessionDriver)
	}
	if o.sessionFile != "" {
		cfg.SessionFile = o.sessionFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) connect(cmd *cobra.Command) (*client, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	slog.SetDefault(logger.New(cmd.ErrOrStderr(), level, cfg.LogFormat))

	driver, err := session.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	store := session.NewStore(driver)
	sess := session.New(store)

	transport := apiclient.NewAuthTransport(cfg.APIBaseURL, sess)
	api := apiclient.New(cfg.APIBaseURL, transport, cfg.RequestTimeout)
	auth := service.NewAuthClient(api, sess)
	provider := service.NewSessionProvider(auth, service.NewProfileClient(api, sess), event.NewBus())

	transport.OnSessionExpired(provider.HandleSessionExpired)
	transport.OnSessionExpired(func() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Session expired. Run `dashctl login` to sign in again.")
	})

	provider.Init(cmd.Context())

	return &client{
		auth:     auth,
		provider: provider,
		close: func() {
			if err := store.Close(); err != nil {
				slog.Warn("failed to close session store", "error", err)
			}
		},
	}, nil
}
