package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgfetch/internal/config"
	"github.com/vvka-141/pgfetch/internal/db"
	"github.com/vvka-141/pgfetch/internal/executor"
	"github.com/vvka-141/pgfetch/internal/fetcher"
	"github.com/vvka-141/pgfetch/internal/logging"
	"github.com/vvka-141/pgfetch/internal/notify"
	"github.com/vvka-141/pgfetch/internal/queries"
	"github.com/vvka-141/pgfetch/internal/retry"
	"github.com/vvka-141/pgfetch/internal/snapshot"
	"github.com/vvka-141/pgfetch/internal/tui"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// runFlags holds every flag of the run command.
type runFlags struct {
	host     string
	port     int
	username string
	password string
	database string

	authMethod        string
	awsRegion         string
	googleInstance    string
	azureTenantID     string
	azureClientID     string
	azureClientSecret string

	maxAttempts int
	limit       string
	snapshotDir string

	params    []string
	startDate string
	endDate   string
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <queries_dir>",
		Short: "Run every .sql query in a directory with retries",
		Long: `Run loads every .sql file in the given directory as a named query,
executes the batch against PostgreSQL, and retries failed queries with
exponential backoff until all succeed or the attempt budget runs out.

Connection parameters resolve from flags, then DB_USER / DB_PASSWORD /
DB_HOST / DB_PORT / DB_NAME environment variables (a .env file is
honored), then pgfetch.yaml in the queries directory.`,
		Args: RequireQueriesDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "Database host")
	cmd.Flags().IntVar(&flags.port, "port", 0, "Database port (default 5432)")
	cmd.Flags().StringVarP(&flags.username, "username", "U", "", "Database user")
	cmd.Flags().StringVar(&flags.password, "password", "", "Database password (prefer DB_PASSWORD)")
	cmd.Flags().StringVarP(&flags.database, "database", "d", "", "Database name")

	cmd.Flags().StringVar(&flags.authMethod, "auth-method", "", "Authentication method: standard, aws-iam, google-iam, azure-entra-id")
	cmd.Flags().StringVar(&flags.awsRegion, "aws-region", "", "AWS region for IAM authentication")
	cmd.Flags().StringVar(&flags.googleInstance, "google-instance", "", "Cloud SQL instance (project:region:instance)")
	cmd.Flags().StringVar(&flags.azureTenantID, "azure-tenant-id", "", "Azure tenant ID for service principal auth")
	cmd.Flags().StringVar(&flags.azureClientID, "azure-client-id", "", "Azure client ID for service principal auth")

	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 0, fmt.Sprintf("Retry budget for the session (default %d)", pgfetch.DefaultMaxAttempts))
	cmd.Flags().StringVar(&flags.limit, "limit", "", "Row limit spliced into every query")
	cmd.Flags().StringVar(&flags.snapshotDir, "snapshot-dir", "", "Directory for per-attempt result snapshots")

	cmd.Flags().StringArrayVar(&flags.params, "param", nil, "Placeholder substitution TOKEN=VALUE (repeatable)")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "Value for the $START_DATE placeholder")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "Value for the $END_DATE placeholder")

	return cmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func runFetch(cmd *cobra.Command, queriesDir string, flags *runFlags) error {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	projectCfg, err := config.Load(queriesDir)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}

	env, err := config.FromEnv()
	if err != nil {
		return err
	}

	connCfg, fetchCfg, err := config.Resolve(projectCfg, env, config.Overrides{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Password: flags.password,
		Database: flags.database,

		AuthMethod:        flags.authMethod,
		AWSRegion:         flags.awsRegion,
		GoogleInstance:    flags.googleInstance,
		AzureTenantID:     flags.azureTenantID,
		AzureClientID:     flags.azureClientID,
		AzureClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),

		MaxAttempts: flags.maxAttempts,
		Limit:       flags.limit,
		SnapshotDir: flags.snapshotDir,
		Verbose:     verbose,
	})
	if err != nil {
		return err
	}

	if err := connCfg.Validate(); err != nil {
		return err
	}

	params, err := buildParams(projectCfg, flags)
	if err != nil {
		return err
	}

	batch, err := queries.LoadDir(queriesDir, params)
	if err != nil {
		return err
	}
	logger.Verbose("loaded %d queries from %s", batch.Len(), queriesDir)

	connector, err := db.NewConnector(&connCfg)
	if err != nil {
		return err
	}
	// The Google Cloud SQL connector holds a dialer that outlives pools.
	if closer, ok := connector.(io.Closer); ok {
		defer closer.Close()
	}

	target := fmt.Sprintf("%s:%d/%s", connCfg.Host, connCfg.Port, connCfg.Database)
	exec := executor.New(logger, notify.NewBellNotifier(), fetchCfg.Limit, target)

	sessionID := uuid.New()
	opts := []fetcher.Option{
		fetcher.WithLogger(logger),
		fetcher.WithSessionID(sessionID),
		fetcher.WithBackoff(retry.NewExponentialBackoff(fetchCfg.MaxAttempts)),
	}
	if fetchCfg.SnapshotDir != "" {
		opts = append(opts, fetcher.WithSnapshotStore(snapshot.NewFileStore(fetchCfg.SnapshotDir, sessionID)))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := fetcher.New(connector, exec, opts...).Run(ctx, batch)
	if err != nil {
		return err
	}

	fmt.Println(tui.RenderSummary(batch.Names(), results, tui.DetectMode()))

	if failed := results.Failed(batch.Names()); len(failed) > 0 {
		return fmt.Errorf("%d of %d queries failed after %d attempts: %w",
			len(failed), batch.Len(), fetchCfg.MaxAttempts, pgfetch.ErrQueryFailed)
	}
	return nil
}

// buildParams layers placeholder substitutions: pgfetch.yaml params,
// then date flags, then explicit --param flags.
func buildParams(projectCfg *config.ProjectConfig, flags *runFlags) (queries.Params, error) {
	params := queries.Params{}
	if projectCfg != nil {
		params = params.Merge(queries.Params(projectCfg.Params))
	}

	params = params.Merge(queries.DateRange(flags.startDate, flags.endDate))

	flagParams, err := parseParamFlags(flags.params)
	if err != nil {
		return nil, err
	}
	return params.Merge(queries.Params(flagParams)), nil
}
