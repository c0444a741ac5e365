// Package integration wires real infrastructure for the FinBook test suites:
// a PostgreSQL container per suite, the golang-migrate schema and seed
// helpers for ledger rows in known states.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "postgres"
	postgresPassword = "finbook-test"
	startupTimeout   = 60 * time.Second
)

// sharedPG holds the one container reused by suites that clean up after
// themselves. TestMain tears it down through CleanupSharedContainer.
var sharedPG struct {
	mu        sync.Mutex
	container testcontainers.Container
	dsn       string
}

// TestDB is a migrated PostgreSQL database for one test.
type TestDB struct {
	DB *gorm.DB

	sqlDB     *sql.DB
	container testcontainers.Container
	ownsC     bool
	t         *testing.T
}

// NewTestDB starts a dedicated PostgreSQL container, runs all migrations and
// registers teardown on the test. Use this when a test mutates global state,
// for example by truncating tables.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, dsn := startPostgres(t, "finbook_test")

	db, sqlDB := openGorm(t, dsn)
	migrateUp(t, sqlDB)

	tdb := &TestDB{DB: db, sqlDB: sqlDB, container: container, ownsC: true, t: t}
	t.Cleanup(tdb.close)
	return tdb
}

// NewSharedTestDB connects to a container shared across the package, starting
// it on first use. Cheaper than NewTestDB, for tests whose rows do not
// collide with anyone else's.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedPG.mu.Lock()
	defer sharedPG.mu.Unlock()

	if sharedPG.container == nil {
		container, dsn := startPostgres(t, "finbook_shared_test")

		_, sqlDB := openGorm(t, dsn)
		migrateUp(t, sqlDB)
		require.NoError(t, sqlDB.Close())

		sharedPG.container = container
		sharedPG.dsn = dsn
	}

	db, sqlDB := openGorm(t, sharedPG.dsn)

	tdb := &TestDB{DB: db, sqlDB: sqlDB, container: sharedPG.container, ownsC: false, t: t}
	t.Cleanup(tdb.close)
	return tdb
}

// CleanupSharedContainer terminates the shared container if any test started
// it. Call it from TestMain after m.Run.
func CleanupSharedContainer() {
	sharedPG.mu.Lock()
	defer sharedPG.mu.Unlock()

	if sharedPG.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedPG.container.Terminate(ctx)
	sharedPG.container = nil
	sharedPG.dsn = ""
}

// close releases the connection and, for dedicated databases, the container.
func (tdb *TestDB) close() {
	if tdb.sqlDB != nil {
		_ = tdb.sqlDB.Close()
	}
	if tdb.ownsC && tdb.container != nil {
		if err := tdb.container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("terminating postgres container: %v", err)
		}
	}
}

// CleanTables truncates every application table in one statement, keeping
// the schema_migrations bookkeeping intact.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to list tables")

	if len(tables) == 0 {
		return
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	require.NoError(tdb.t, tdb.DB.Exec(stmt).Error, "Failed to truncate tables")
}

// WithRollback runs fn inside a transaction that is always rolled back, so
// repository behavior can be probed without leaving rows behind.
func (tdb *TestDB) WithRollback(fn func(tx *gorm.DB)) {
	tdb.t.Helper()

	tx := tdb.DB.Begin()
	require.NoError(tdb.t, tx.Error, "Failed to begin transaction")
	defer tx.Rollback()

	fn(tx)
}

// startPostgres launches a PostgreSQL container and returns it with its DSN.
func startPostgres(t *testing.T, database string) (testcontainers.Container, string) {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername(postgresUser),
		tcpostgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to read container DSN")
	return container, dsn
}

// openGorm connects GORM to the database with quiet logging and a small pool.
// Set TEST_DB_DEBUG to see the SQL.
func openGorm(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	logMode := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logMode = logger.Info
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to unwrap sql.DB")
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// migrateUp applies the repository's migrations to the test database.
func migrateUp(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	path := migrationsDir()
	require.NotEmpty(t, path, "Could not locate the migrations directory")

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "Failed to create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	require.NoError(t, err, "Failed to create migrate instance")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}
}

// migrationsDir walks up from this source file until it finds migrations/.
func migrationsDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// SeedBackfillCandidate inserts a transaction that still embeds a raw
// counterparty identifier, the way rows imported before the registry existed
// look. created_at is set explicitly because the backfill scans candidates
// in creation order.
func (tdb *TestDB) SeedBackfillCandidate(id uuid.UUID, createdAt time.Time, taxID, name, sellerName string) {
	tdb.t.Helper()

	description := fmt.Sprintf("Imported statement row %s", id.String()[:8])
	err := tdb.DB.Exec(`
		INSERT INTO transactions (
			id, created_at, updated_at, version,
			description, amount, currency, type, status, occurred_at, payment_method,
			counterparty_tax_id, counterparty_name, counterparty_seller_name
		)
		VALUES (?, ?, ?, 1, ?, 100.00, 'BRL', 'expense', 'cleared', ?, 'other', ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, id, createdAt, createdAt, description, createdAt, taxID, name, sellerName).Error
	require.NoError(tdb.t, err, "Failed to seed backfill candidate")
}

// SeedLinkedTransaction inserts a transaction already linked to a registry
// record, with the embedded counterparty fields cleared.
func (tdb *TestDB) SeedLinkedTransaction(id, entityID uuid.UUID, createdAt time.Time) {
	tdb.t.Helper()

	description := fmt.Sprintf("Linked transaction %s", id.String()[:8])
	err := tdb.DB.Exec(`
		INSERT INTO transactions (
			id, created_at, updated_at, version,
			description, amount, currency, type, status, occurred_at, payment_method,
			counterparty_entity_id, counterparty_tax_id, counterparty_name, counterparty_seller_name
		)
		VALUES (?, ?, ?, 1, ?, 100.00, 'BRL', 'expense', 'cleared', ?, 'other', ?, '', '', '')
		ON CONFLICT (id) DO NOTHING
	`, id, createdAt, createdAt, description, createdAt, entityID).Error
	require.NoError(tdb.t, err, "Failed to seed linked transaction")
}

// CountRows counts the rows of a table, for asserting that an aborted run
// left nothing behind.
func (tdb *TestDB) CountRows(table string) int64 {
	tdb.t.Helper()

	var count int64
	err := tdb.DB.Table(table).Count(&count).Error
	require.NoError(tdb.t, err, "Failed to count rows of %s", table)
	return count
}
