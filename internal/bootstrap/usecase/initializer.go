package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"pnregistry-dbinit/internal/bootstrap/domain/model"
	"pnregistry-dbinit/internal/bootstrap/domain/repository"
	apperrors "pnregistry-dbinit/internal/shared/errors"
	"pnregistry-dbinit/internal/shared/logger"
	"pnregistry-dbinit/internal/shared/utils"

	"github.com/google/uuid"
)

const (
	componentName     = "initializer"
	disconnectTimeout = 10 * time.Second
)

// Error codes attached to the AppErrors of each failing step
const (
	CodeConnect          = "CONNECT"
	CodeListDatabases    = "LIST_DATABASES"
	CodeListCollections  = "LIST_COLLECTIONS"
	CodeCreateCollection = "CREATE_COLLECTION"
	CodeCreateIndex      = "CREATE_INDEX"
	CodeInsertSeed       = "INSERT_SEED"
	CodeAcquireLock      = "ACQUIRE_LOCK"
)

// Options holds the per-run settings of the Initializer
type Options struct {
	Database   string
	Collection string

	// StrictExitCode makes a failed seed insert fail the run.
	StrictExitCode bool
	// DryRun stops after the probe without writing.
	DryRun  bool
	LockTTL time.Duration
}

// Initializer ensures the target collection exists, is indexed on the record
// id and holds a seed record. It never touches a collection that already
// exists.
type Initializer struct {
	connector repository.Connector
	seeds     repository.SeedSource
	locker    repository.Locker
	policy    RetryPolicy
	opts      Options
	logger    logger.Logger
}

// NewInitializer creates a new Initializer
func NewInitializer(connector repository.Connector, seeds repository.SeedSource, policy RetryPolicy, opts Options, log logger.Logger) *Initializer {
	if log == nil {
		log = logger.Default()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	return &Initializer{
		connector: connector,
		seeds:     seeds,
		policy:    policy,
		opts:      opts,
		logger:    log.WithComponent(componentName),
	}
}

// WithLocker enables the run lock
func (i *Initializer) WithLocker(locker repository.Locker) *Initializer {
	i.locker = locker
	return i
}

// Run performs one idempotent initialization pass. A seed write failure is
// reported in the Report and only returned as an error in strict mode.
func (i *Initializer) Run(ctx context.Context) (model.Report, error) {
	ctx = i.runContext(ctx)
	log := i.logger.WithContext(ctx)

	report := model.Report{
		RunID:      utils.GetRunIDOrDefault(ctx, ""),
		Database:   i.opts.Database,
		Collection: i.opts.Collection,
	}

	// The seed is validated before the first connection attempt
	seed, err := i.seeds.Load()
	if err != nil {
		return report, err
	}

	store, attempts, err := i.Connect(ctx)
	report.Attempts = attempts
	if err != nil {
		return report, err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := store.Disconnect(dctx); err != nil {
			log.Warnf("Failed to disconnect from mongoDB: %v", err)
		}
	}()

	if i.locker != nil {
		release, held, err := i.acquireLock(ctx)
		if err != nil {
			return report, err
		}
		if held {
			report.Outcome = model.OutcomeLockHeld
			report.Cause = apperrors.ErrLockHeld
			log.Infof("Another initializer holds the lock for '%s/%s', skipping", i.opts.Database, i.opts.Collection)
			return report, nil
		}
		defer release()
	}

	exists, err := i.Probe(ctx, store)
	if err != nil {
		return report, err
	}
	if exists {
		report.Outcome = model.OutcomeAlreadyInitialized
		log.Infof("Collection '%s' already exists in database '%s'", i.opts.Collection, i.opts.Database)
		return report, nil
	}

	if i.opts.DryRun {
		report.Outcome = model.OutcomeDryRun
		log.WithFields(map[string]interface{}{
			"index_field": model.IndexField,
			"seed_id":     seed.Id,
		}).Infof("Dry run: would create collection '%s' in database '%s', index it and insert one seed record", i.opts.Collection, i.opts.Database)
		return report, nil
	}

	err = i.Initialize(ctx, store, seed)
	switch {
	case err == nil:
		report.Outcome = model.OutcomeInitialized
		log.Infof("Collection '%s' in database '%s' initialized", i.opts.Collection, i.opts.Database)
		return report, nil
	case apperrors.IsWrite(err):
		report.Outcome = model.OutcomePartiallyInitialized
		report.Cause = err
		if i.opts.StrictExitCode {
			return report, err
		}
		// Lenient policy: a failed seed insert does not fail the run
		log.Warn("Seed record was not written; collection and index are in place")
		return report, nil
	default:
		return report, err
	}
}

// Connect opens a connection, retrying per the policy. With the default
// unlimited policy it only returns an error when ctx is done.
func (i *Initializer) Connect(ctx context.Context) (repository.Store, int, error) {
	ctx = utils.WithOperation(ctx, "connect")
	log := i.logger.WithContext(ctx)

	var store repository.Store
	attempts, err := i.policy.Do(ctx, func(attempt int) error {
		s, err := i.connector.Connect(ctx)
		if err != nil {
			return err
		}
		store = s
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		log.Errorf("Cannot connect to mongoDB: %v", err)
		log.Warnf("Will retry after %d seconds", int(wait.Seconds()))
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, attempts, apperrors.NewConnectionError("connection attempts interrupted").
				WithCode(CodeConnect).
				WithCause(ctxErr).
				WithDetail("attempts", attempts)
		}
		return nil, attempts, apperrors.NewConnectionError(fmt.Sprintf("giving up after %d attempts", attempts)).
			WithCode(CodeConnect).
			WithCause(errors.Join(apperrors.ErrRetriesExhausted, err)).
			WithDetail("attempts", attempts)
	}

	log.WithFields(map[string]interface{}{"attempts": attempts}).Info("Connected to mongoDB")
	return store, attempts, nil
}

// Probe reports whether the target collection already exists in the target
// database. Any listing failure is a ProbeError.
func (i *Initializer) Probe(ctx context.Context, store repository.Store) (bool, error) {
	ctx = utils.WithOperation(ctx, "probe")
	log := i.logger.WithContext(ctx)

	databases, err := store.ListDatabaseNames(ctx)
	if err != nil {
		return false, apperrors.NewProbeError("failed to list databases").WithCode(CodeListDatabases).WithCause(err).WithComponent(componentName)
	}
	if !slices.Contains(databases, i.opts.Database) {
		log.Debugf("Database '%s' does not exist yet", i.opts.Database)
		return false, nil
	}

	collections, err := store.ListCollectionNames(ctx, i.opts.Database)
	if err != nil {
		return false, apperrors.NewProbeError("failed to list collections").
			WithCode(CodeListCollections).
			WithCause(err).
			WithComponent(componentName).
			WithDetail("database", i.opts.Database)
	}
	return slices.Contains(collections, i.opts.Collection), nil
}

// Initialize creates the collection, its id index and inserts the seed
// record, in that order. Collection or index failures are SetupErrors; a
// failed insert is logged and returned as a WriteError.
func (i *Initializer) Initialize(ctx context.Context, store repository.Store, seed model.Record) error {
	ctx = utils.WithOperation(ctx, "initialize")
	log := i.logger.WithContext(ctx)
	db, coll := i.opts.Database, i.opts.Collection

	if err := store.CreateCollection(ctx, db, coll); err != nil {
		return apperrors.NewSetupError("failed to create collection").
			WithCode(CodeCreateCollection).
			WithCause(err).
			WithComponent(componentName).
			WithDetail("collection", coll)
	}
	log.Infof("Created collection '%s' in database '%s'", coll, db)

	indexName, err := store.CreateIndex(ctx, db, coll, model.IndexField)
	if err != nil {
		return apperrors.NewSetupError("failed to create index").
			WithCode(CodeCreateIndex).
			WithCause(err).
			WithComponent(componentName).
			WithDetail("field", model.IndexField)
	}
	log.Infof("Created index '%s'", indexName)

	if err := store.InsertOne(ctx, db, coll, seed); err != nil {
		log.Errorf("Error when writing the data: %v", err)
		return apperrors.NewWriteError("failed to insert seed record").
			WithCode(CodeInsertSeed).
			WithCause(err).
			WithComponent(componentName).
			WithDetail("id", seed.Id)
	}
	log.WithFields(map[string]interface{}{"id": seed.Id}).Info("Inserted seed record")
	return nil
}

// acquireLock takes the run lock. held is true when another run owns it.
func (i *Initializer) acquireLock(ctx context.Context) (release func(), held bool, err error) {
	ctx = utils.WithOperation(ctx, "lock")
	log := i.logger.WithContext(ctx)
	key := i.opts.Database + "/" + i.opts.Collection

	ok, err := i.locker.Acquire(ctx, key, i.opts.LockTTL)
	if err != nil {
		return nil, false, apperrors.NewLockError("failed to acquire initialization lock").WithCode(CodeAcquireLock).WithCause(err).WithDetail("key", key)
	}
	if !ok {
		return nil, true, nil
	}

	release = func() {
		rctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := i.locker.Release(rctx, key); err != nil {
			log.Warnf("Failed to release initialization lock: %v", err)
		}
	}
	return release, false, nil
}

// runContext tags ctx with a run id and the target names for logging
func (i *Initializer) runContext(ctx context.Context) context.Context {
	if !utils.HasRunID(ctx) {
		ctx = utils.WithRunID(ctx, uuid.NewString())
	}
	return utils.WithTarget(ctx, i.opts.Database, i.opts.Collection)
}
