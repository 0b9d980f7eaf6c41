package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MigrationStore tracks which migrations have been applied.
type MigrationStore interface {
	EnsureTable(ctx context.Context) error
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, m Migration) error
	RevertMigration(ctx context.Context, m Migration) error
}

// MigrationLog is a row in migration_logs.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore creates a MigrationStore backed by db.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) EnsureTable(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration_logs: %w", err)
	}
	return nil
}

func (s *migrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	var versions []int
	err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("get applied migrations: %w", err)
	}
	return versions, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// ApplyMigration runs the up script and records it in one transaction.
func (s *migrationStore) ApplyMigration(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply migration %s: %w", m, err)
		}
		if err := tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", m, err)
		}
		return nil
	})
}

// RevertMigration runs the down script and removes the record in one transaction.
func (s *migrationStore) RevertMigration(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert migration %s: %w", m, err)
		}
		if err := tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error; err != nil {
			return fmt.Errorf("remove migration record %d: %w", m.Version, err)
		}
		return nil
	})
}

// Migrator applies and reverts SQL migrations.
type Migrator struct {
	store      MigrationStore
	migrations []Migration
	log        *slog.Logger
}

// NewMigrator returns a Migrator for the embedded migrations.
func NewMigrator(db *gorm.DB, log *slog.Logger) (*Migrator, error) {
	migrations, err := EmbeddedMigrations()
	if err != nil {
		return nil, err
	}
	return &Migrator{store: NewMigrationStore(db), migrations: migrations, log: log}, nil
}

// Migrations returns the registered migrations in version order.
func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

// Pending returns the registered migrations not yet applied.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.store.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration in order.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.store.EnsureTable(ctx); err != nil {
		return err
	}
	applied, err := m.store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, m.migrations); err != nil {
		return err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		m.log.Info("Applying migration", slog.Int("version", mig.Version), slog.String("name", mig.Name))
		if err := m.store.ApplyMigration(ctx, mig); err != nil {
			return err
		}
	}
	return nil
}

// Rollback reverts a single applied migration.
func (m *Migrator) Rollback(ctx context.Context, version int) error {
	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, v := range applied {
		if v == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	m.log.Info("Rolling back migration", slog.Int("version", version), slog.String("name", target.Name))
	return m.store.RevertMigration(ctx, *target)
}

func validateAppliedVersions(applied []int, registered []Migration) error {
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	var unknown []int
	for _, version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, version := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", version))
	}
	return fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(parts, ", "))
}
