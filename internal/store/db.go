// Package store persists conversations, messages and investors with GORM.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

// Open connects to the database named by url: postgres:// or postgresql://
// URLs use PostgreSQL, anything else is a SQLite path (an optional sqlite://
// prefix is stripped).
func Open(url string, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		dialector = postgres.Open(url)
	default:
		dialector = sqlite.Open(strings.TrimPrefix(url, "sqlite://"))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(log),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// SQLite allows one writer; serialize through a single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.Investor{},
		&model.ConversationInvestor{},
		&model.SearchResult{},
		&model.ProviderUsage{},
	)
}

// Ping checks the database connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Store groups the repositories.
type Store struct {
	DB            *gorm.DB
	Conversations *ConversationRepository
	Messages      *MessageRepository
	Investors     *InvestorRepository
	SearchResults *SearchResultRepository
	Users         *UserRepository
	Usage         *UsageRepository
}

// New builds every repository over db.
func New(db *gorm.DB) *Store {
	return &Store{
		DB:            db,
		Conversations: &ConversationRepository{db: db},
		Messages:      &MessageRepository{db: db},
		Investors:     &InvestorRepository{db: db},
		SearchResults: &SearchResultRepository{db: db},
		Users:         &UserRepository{db: db},
		Usage:         &UsageRepository{db: db},
	}
}

// gormLogger routes slow-query and error logs to zap.
type gormLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
}

func newGormLogger(log *logger.Logger) gormlogger.Interface {
	return &gormLogger{log: log.Named("gorm"), level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: l.log, level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && err != gorm.ErrRecordNotFound && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error("query failed", zap.Error(err), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case elapsed > 200*time.Millisecond && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug("query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
