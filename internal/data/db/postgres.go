package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/forum-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SQLitePath string

	MaxOpenConns  int
	SlowThreshold time.Duration
}

func (o Options) postgresDSN() string {
	sslmode := strings.TrimSpace(o.PostgresSSLMode)
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		o.PostgresUser,
		o.PostgresPassword,
		o.PostgresHost,
		o.PostgresPort,
		o.PostgresName,
		sslmode,
	)
}

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// Open connects to the configured store. TranslateError is on so unique
// violations surface as gorm.ErrDuplicatedKey on both drivers.
func Open(opts Options, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService", "driver", opts.Driver)

	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		logg,
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormLog,
	}

	var (
		dialector gorm.Dialector
		driver    = strings.ToLower(strings.TrimSpace(opts.Driver))
	)
	switch driver {
	case DriverPostgres, "":
		driver = DriverPostgres
		dialector = postgres.Open(opts.postgresDSN())
	case DriverSQLite:
		path := strings.TrimSpace(opts.SQLitePath)
		if path == "" {
			path = "forum.db"
		}
		dialector = sqlite.Open(SQLiteDSN(path))
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	switch {
	case driver == DriverSQLite:
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY inside transactions.
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	serviceLog.Info("Database connected")
	return &Service{db: db, driver: driver, log: serviceLog}, nil
}

// SQLiteDSN turns on foreign key enforcement, which sqlite leaves off per connection.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Running auto migration")
	return AutoMigrateAll(s.db)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
