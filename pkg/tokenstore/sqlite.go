package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	keyAccess  = "access"
	keyRefresh = "refresh"
	keyUser    = "user"

	visitKeyPrefix = "visit:"
)

type stateRow struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

func (stateRow) TableName() string {
	return "client_state"
}

// SQLiteStore is the durable tier, backing remember-me logins across
// process restarts.
type SQLiteStore struct {
	conn *gorm.DB
}

// OpenSQLite creates or opens the state database under dir.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return openSQLite(filepath.Join(dir, "state.db"))
}

// OpenSQLiteDSN opens the store on an explicit sqlite DSN. Tests use
// "file::memory:?cache=shared".
func OpenSQLiteDSN(dsn string) (*SQLiteStore, error) {
	return openSQLite(dsn)
}

func openSQLite(dsn string) (*SQLiteStore, error) {
	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if err := conn.AutoMigrate(&stateRow{}); err != nil {
		return nil, fmt.Errorf("migrating state db: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Close shuts down the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) set(ctx context.Context, key, value string) error {
	row := stateRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.conn.WithContext(ctx).Save(&row).Error
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var row stateRow
	err := s.conn.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *SQLiteStore) SetTokens(ctx context.Context, tokens Tokens) error {
	if err := s.set(ctx, keyAccess, tokens.Access); err != nil {
		return err
	}
	return s.set(ctx, keyRefresh, tokens.Refresh)
}

func (s *SQLiteStore) Tokens(ctx context.Context) (Tokens, error) {
	access, err := s.get(ctx, keyAccess)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.get(ctx, keyRefresh)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

func (s *SQLiteStore) SetAccess(ctx context.Context, access string) error {
	return s.set(ctx, keyAccess, access)
}

func (s *SQLiteStore) SetUser(ctx context.Context, raw json.RawMessage) error {
	return s.set(ctx, keyUser, string(raw))
}

func (s *SQLiteStore) User(ctx context.Context) (json.RawMessage, error) {
	value, err := s.get(ctx, keyUser)
	if err != nil || value == "" {
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (s *SQLiteStore) SetVisitMark(ctx context.Context, name string, at time.Time) error {
	return s.set(ctx, visitKeyPrefix+name, at.UTC().Format(time.RFC3339Nano))
}

func (s *SQLiteStore) VisitMark(ctx context.Context, name string) (time.Time, error) {
	value, err := s.get(ctx, visitKeyPrefix+name)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt visit mark %q: %w", name, err)
	}
	return at, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.conn.WithContext(ctx).
		Delete(&stateRow{}, "key IN ?", []string{keyAccess, keyRefresh, keyUser}).Error
}
