package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spec-kit/issuetrack/internal/api"
	"github.com/spec-kit/issuetrack/internal/authz"
	"github.com/spec-kit/issuetrack/internal/config"
	"github.com/spec-kit/issuetrack/internal/events"
	"github.com/spec-kit/issuetrack/internal/observability"
	"github.com/spec-kit/issuetrack/internal/session"
	"github.com/spec-kit/issuetrack/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	cfg        *config.Config
	logger     *zap.Logger
	ui         *UI
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	sessions   *session.Manager
	apiClient  api.Client
	issues     *store.IssueStore

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "issuetrack",
	Short: "Issue tracker client - file, triage, and export issues",
	Long: `issuetrack is a terminal client for the issue tracker backend.
Customers file issues, technicians triage and update status, and admins
manage everything including CSV export.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from cmd/issuetrack.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (overrides config)")

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		printMetrics()
		_ = logger.Sync()
	}
}

func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
		os.Exit(1)
	}

	viper.AddConfigPath(filepath.Join(home, ".config", "issuetrack"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("ISSUETRACK")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	_ = viper.ReadInConfig()
}

func initDeps() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if v := viper.GetString("api_url"); v != "" {
		cfg.API.BaseURL = v
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}

	logger, err = observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ui = NewUI()
	ui.Verbose = verbose

	metrics = observability.NewMetrics()
	dispatcher = events.NewInMemoryDispatcher()

	tokenStore := session.NewStore(cfg.State)
	sessions = session.NewManager(session.ManagerDependencies{
		Store:      tokenStore,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	sessions.Resolve(context.Background())

	apiClient = api.NewClient(cfg.API, api.ClientDependencies{
		Metrics: metrics,
		Logger:  logger,
	})
	issues = store.NewIssueStore(store.Dependencies{
		Client:     apiClient,
		Session:    sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	dispatcher.Subscribe(events.EventCacheRefreshed, func(ctx context.Context, ev events.Event) error {
		if payload, ok := ev.Payload.(events.CacheRefreshedPayload); ok {
			ui.VerboseLog("cache refreshed (%d issues)", payload.Count)
		}
		return nil
	})
	dispatcher.Subscribe(events.EventSessionCleared, func(ctx context.Context, ev events.Event) error {
		ui.VerboseLog("stored session cleared")
		return nil
	})
}

// requireAuthenticated gates commands that need any signed-in user.
func requireAuthenticated() error {
	switch authz.RequireAuthenticated(sessions.State()) {
	case authz.DecisionAllow:
		return nil
	case authz.DecisionWait:
		return fmt.Errorf("session is still resolving, try again")
	default:
		return fmt.Errorf("not logged in; run 'issuetrack login' first")
	}
}

// requireAdmin gates admin-only commands.
func requireAdmin() error {
	switch authz.RequireAdmin(sessions.State(), sessions.CurrentUser()) {
	case authz.DecisionAllow:
		return nil
	case authz.DecisionWait:
		return fmt.Errorf("session is still resolving, try again")
	default:
		if sessions.State() == session.StateAuthenticated {
			return fmt.Errorf("admin role required")
		}
		return fmt.Errorf("not logged in; run 'issuetrack login' first")
	}
}

func printMetrics() {
	if !verbose || metrics == nil {
		return
	}
	requests, errs := metrics.Snapshot()
	for _, c := range requests {
		ui.VerboseLog("request %s = %d", c.Key, c.Count)
	}
	for _, c := range errs {
		ui.VerboseLog("error %s = %d", c.Key, c.Count)
	}
}
