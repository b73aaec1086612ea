// Package leadstore persists delivered leads with gorm so captured leads
// survive a webhook or analytics outage.
package leadstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Lead is one captured lead row.
type Lead struct {
	ID             string    `gorm:"primaryKey;size:36"`
	SessionID      string    `gorm:"size:64;index"`
	EventType      string    `gorm:"size:32"`
	Terminal       string    `gorm:"size:32;index"`
	Outcome        string    `gorm:"size:32"`
	FirstName      string    `gorm:"size:255"`
	LastName       string    `gorm:"size:255"`
	Email          string    `gorm:"size:255;index"`
	CompanyName    string    `gorm:"size:255"`
	JobTitle       string    `gorm:"size:255"`
	NumEmployees   string    `gorm:"size:16"`
	Referral       string    `gorm:"size:64"`
	TechnicalLevel string    `gorm:"size:32"`
	InternalTools  string    `gorm:"size:800"`
	CreatedAt      time.Time `gorm:"index"`
}

// TableName pins the table name regardless of gorm naming strategy.
func (Lead) TableName() string { return "leads" }

// Options tune the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// Open connects to driver using dsn. SQLite accepts ":memory:" for ephemeral
// stores.
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3":
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres, "postgresql":
		if dsn == "" {
			return nil, errors.New("leadstore: postgres dsn is required")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("leadstore: unsupported driver %q", driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("leadstore: open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("leadstore: underlying sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate creates or updates the leads table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Lead{}); err != nil {
		return fmt.Errorf("leadstore: migrate: %w", err)
	}
	return nil
}

// Repository reads and writes leads.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts lead. Saving the same id twice is an error so duplicate
// deliveries surface in the logs instead of overwriting earlier rows.
func (r *Repository) Save(ctx context.Context, lead *Lead) error {
	if lead == nil || strings.TrimSpace(lead.ID) == "" {
		return errors.New("leadstore: lead id is required")
	}
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("leadstore: save %s: %w", lead.ID, err)
	}
	return nil
}

// Recent returns up to limit leads, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	var leads []Lead
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("leadstore: recent: %w", err)
	}
	return leads, nil
}

// ByEmail returns every lead captured for email, oldest first.
func (r *Repository) ByEmail(ctx context.Context, email string) ([]Lead, error) {
	var leads []Lead
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at ASC").
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("leadstore: by email: %w", err)
	}
	return leads, nil
}
