// database.go - Handles per-request database sessions and schema setup
//
// Session Lifecycle:
// 1. Provider.Open opens a dedicated connection for one request
// 2. Session.FindUserByEmail runs the single parameterized lookup
// 3. Session.Close releases the connection (callers defer it)
//
// Nothing is pooled across requests: each session caps its pool at one
// connection and closes it on Close.

package database // Declares the package name

import ( // Import required packages
	"context" // Request-scoped cancellation passed to the driver
	"errors"  // Sentinel errors
	"fmt"     // Error wrapping

	"email-login-backend/config" // Project config (driver + DSN)
	"email-login-backend/models" // User schema and Row type

	"gorm.io/driver/mysql"                 // MySQL driver for GORM
	"gorm.io/driver/postgres"              // Postgres driver for GORM
	"gorm.io/driver/sqlite"                // SQLite driver for GORM
	"gorm.io/gorm"                         // GORM ORM
	"gorm.io/gorm/logger"                  // GORM query logger
	"gorm.io/plugin/opentelemetry/tracing" // Query spans
)

// ErrUserNotFound is returned by FindUserByEmail when no row matches.
var ErrUserNotFound = errors.New("user not found")

const findUserByEmailSQL = "SELECT * FROM users WHERE email = ?"

// Provider opens scoped sessions. Handlers depend on this interface so tests can swap in a fake.
type Provider interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one open connection. Close must be called on every path.
type Session interface {
	FindUserByEmail(ctx context.Context, email string) (*models.Row, error)
	Close() error
}

// GormProvider opens a fresh GORM connection for every session.
type GormProvider struct {
	dialector func() gorm.Dialector // Built per Open, dialectors keep connection state
	logLevel  logger.LogLevel
}

// NewProvider builds a provider for the configured driver.
func NewProvider(cfg *config.Config) (*GormProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dsn := cfg.DSN()
	p := &GormProvider{logLevel: logger.Warn}
	switch cfg.DBDriver {
	case config.DriverPostgres:
		p.dialector = func() gorm.Dialector { return postgres.Open(dsn) }
	case config.DriverSQLite:
		p.dialector = func() gorm.Dialector { return sqlite.Open(dsn) }
	default:
		p.dialector = func() gorm.Dialector { return mysql.Open(dsn) }
	}
	return p, nil
}

// Open connects to the database and returns a session holding that single connection.
func (p *GormProvider) Open(ctx context.Context) (Session, error) {
	db, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	return &gormSession{db: db}, nil
}

// Migrate creates the users table if it does not exist.
func (p *GormProvider) Migrate(ctx context.Context) error {
	db, err := p.connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db) // Migration uses its own short-lived connection too

	if err := db.WithContext(ctx).AutoMigrate(&models.User{}); err != nil { // Auto-migrate the User model
		return fmt.Errorf("migrate users table: %w", err)
	}
	return nil
}

func (p *GormProvider) connect(ctx context.Context) (*gorm.DB, error) {
	db, err := gorm.Open(p.dialector(), &gorm.Config{
		Logger:               logger.Default.LogMode(p.logLevel),
		DisableAutomaticPing: true, // Pinged below with the request context
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // One connection per session
	sqlDB.SetMaxIdleConns(1)

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

type gormSession struct {
	db *gorm.DB
}

// FindUserByEmail returns the first row whose email equals the argument.
func (s *gormSession) FindUserByEmail(ctx context.Context, email string) (*models.Row, error) {
	rows, err := s.db.WithContext(ctx).Raw(findUserByEmailSQL, email).Rows()
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	defer rows.Close() // Cursor is released even if scanning fails

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate users: %w", err)
		}
		return nil, ErrUserNotFound
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	row := models.NewRow()
	for i, col := range columns {
		row.Set(col, values[i])
	}
	return row, nil
}

func (s *gormSession) Close() error {
	return closeDB(s.db)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
