package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pnregistry-dbinit/internal/bootstrap/config"
	"pnregistry-dbinit/internal/bootstrap/domain/model"
	"pnregistry-dbinit/internal/di"
	apperrors "pnregistry-dbinit/internal/shared/errors"
	"pnregistry-dbinit/internal/shared/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// cliFlags are the command line overrides of the environment configuration
type cliFlags struct {
	envFile        string
	strictExitCode bool
	dryRun         bool
	seedFile       string

	fs *pflag.FlagSet
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := pflag.NewFlagSet("pnregistry-dbinit", pflag.ContinueOnError)
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.BoolVar(&f.strictExitCode, "strict-exit-code", false, "exit non-zero when the seed record cannot be written")
	fs.BoolVar(&f.dryRun, "dry-run", false, "connect and probe only, never write")
	fs.StringVar(&f.seedFile, "seed-file", "", "YAML or JSON file with the seed record")
	fs.SortFlags = false

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.fs = fs
	return f, nil
}

// apply overrides cfg with every flag given explicitly
func (f *cliFlags) apply(cfg *config.Config) {
	if f.fs.Changed("strict-exit-code") {
		cfg.StrictExitCode = f.strictExitCode
	}
	if f.fs.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if f.fs.Changed("seed-file") {
		cfg.SeedFile = f.seedFile
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return apperrors.ExitOK
		}
		fmt.Fprintln(os.Stderr, err)
		return apperrors.ExitConfig
	}

	// Variables already set in the environment win over the file
	envErr := godotenv.Load(flags.envFile)

	appLogger := logger.NewLogger()
	logger.SetDefault(appLogger)
	defer func() {
		if s, ok := appLogger.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()

	if envErr != nil {
		appLogger.Warnf("Could not load env file %s: %v", flags.envFile, envErr)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Errorf("Failed to load configuration: %v", err)
		return apperrors.ExitCode(err)
	}
	flags.apply(cfg)

	container := di.NewContainer()
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	if err := container.InitializeBootstrap(cfg, appLogger); err != nil {
		appLogger.Errorf("Failed to initialize bootstrap module: %v", err)
		return apperrors.ExitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := container.GetBootstrapModule().Run(ctx)
	code := apperrors.ExitCode(err)
	if err != nil {
		appLogger.WithFields(failureFields(err, report)).Errorf("Initialization failed: %v", err)
		return code
	}

	appLogger.WithFields(summaryFields(report)).Info("Initialization finished")
	if report.Outcome == model.OutcomePartiallyInitialized {
		appLogger.Warnf("Collection and index are in place but the seed record was not written: %v", report.Cause)
	}
	return code
}

// failureFields renders a failed run as log fields. Errors that are not
// AppErrors are reported as internal errors.
func failureFields(err error, report model.Report) map[string]interface{} {
	appErr := apperrors.WrapError(err, "unexpected initialization failure")
	fields := map[string]interface{}{
		"exit_code":  apperrors.ExitCode(err),
		"error_type": string(appErr.Type),
		"error_code": appErr.Code,
		"attempts":   report.Attempts,
	}
	if hint := failureHint(err); hint != "" {
		fields["hint"] = hint
	}
	if report.RunID != "" {
		fields["run_id"] = report.RunID
	}
	return fields
}

// failureHint names what an operator should check for each kind of failure
func failureHint(err error) string {
	switch {
	case apperrors.IsConnection(err):
		return "check PN_REGISTRY_API_MONGODB_HOST, _PORT and credentials"
	case apperrors.IsProbe(err):
		return "check that the user may list databases and collections"
	case apperrors.IsSetup(err):
		return "check that the user may create collections and indexes"
	case apperrors.IsWrite(err):
		return "check the seed record and write permissions"
	case apperrors.IsLock(err):
		return "check INIT_LOCK_REDIS_* settings"
	case apperrors.IsValidation(err):
		return "check SEED_FILE"
	default:
		return ""
	}
}

// summaryFields renders the report of a successful run as log fields
func summaryFields(report model.Report) map[string]interface{} {
	fields := map[string]interface{}{
		"outcome":  string(report.Outcome),
		"attempts": report.Attempts,
		"wrote":    report.Wrote(),
	}
	if report.RunID != "" {
		fields["run_id"] = report.RunID
	}
	if report.Cause != nil {
		fields["cause"] = report.Cause.Error()
	}
	return fields
}
