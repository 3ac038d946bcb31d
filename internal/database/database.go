package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/tasklists-backend/internal/config"
	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// Service exposes the GORM handle plus the lifecycle hooks the server needs.
type Service interface {
	Health(ctx context.Context) map[string]string
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db     *gorm.DB
	name   string
	logger *log.Logger
}

// Pool configures the underlying sql.DB connection pool. Zero values keep
// the database/sql defaults.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// sqlitePool keeps a single long-lived connection; an in-memory database
// disappears with its last connection.
var sqlitePool = Pool{MaxOpenConns: 1, MaxIdleConns: 1}

// New opens the database described by cfg.
func New(cfg config.DatabaseConfig, l *log.Logger) (Service, error) {
	switch cfg.Driver {
	case "sqlite":
		return Open(sqlite.Open(cfg.Path), cfg.Path, sqlitePool, l)
	case "postgres", "":
		pool := Pool{MaxOpenConns: cfg.MaxOpenConns, MaxIdleConns: cfg.MaxIdleConns, ConnMaxLifetime: time.Hour}
		return Open(postgres.Open(PostgresDSN(cfg)), cfg.Name, pool, l)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// PostgresDSN builds a keyword/value DSN understood by pgx.
func PostgresDSN(cfg config.DatabaseConfig) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.Username, cfg.Password, cfg.Name, cfg.Port)
	if cfg.Schema != "" {
		dsn += " search_path=" + cfg.Schema
	}
	return dsn
}

// Open connects through an arbitrary dialector. Unique violations are
// translated to gorm.ErrDuplicatedKey for every supported driver.
func Open(dialector gorm.Dialector, name string, pool Pool, l *log.Logger) (Service, error) {
	if l == nil {
		l = log.Default()
	}

	gormLogger := logger.New(
		l.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return &service{db: db, name: name, logger: l}, nil
}

// NewInMemory opens a private, migrated in-memory SQLite database. Each call
// gets its own database.
func NewInMemory(l *log.Logger) (Service, error) {
	name := "mem-" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	svc, err := Open(sqlite.Open(dsn), name, sqlitePool, l)
	if err != nil {
		return nil, err
	}
	if err := Migrate(svc.GetDB()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

// Migrate creates or updates the lists and tasks tables and their indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.List{}, &domain.Task{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health pings the database and reports pool statistics.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("failed to get underlying DB for health check: %v", err)
		s.logger.Error("health check failed", "err", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.Error("db down", "err", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > 80 {
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	if dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 && dbStats.OpenConnections > dbStats.Idle {
		stats["message"] = "Many idle connections are being closed, consider revising the connection pool settings (MaxIdleConns, ConnMaxIdleTime)."
	}

	if dbStats.MaxLifetimeClosed > int64(dbStats.OpenConnections)/2 {
		stats["message"] = "Many connections are being closed due to max lifetime, consider increasing ConnMaxLifetime or revising the connection usage pattern."
	}

	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB for closing: %w", err)
	}
	s.logger.Info("closing connection pool", "database", s.name)
	return sqlDB.Close()
}
