package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	log "github.com/sirupsen/logrus"
)

// migrateLockID serialises schema migration across replicas.
const migrateLockID int64 = 20260222

func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Println("database connected")
	return db, nil
}

// Migrate runs AutoMigrate under a postgres advisory lock.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return withAdvisoryLock(ctx, db, migrateLockID, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(domain.Models()...); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
		if err := dropLegacyIndexes(tx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
		log.Println("migration successful")
		return nil
	})
}

// legacyIndexes were replaced by partial indexes and are not dropped by AutoMigrate.
var legacyIndexes = []struct {
	model any
	name  string
}{
	{&domain.User{}, "idx_users_email"},
}

func dropLegacyIndexes(db *gorm.DB) error {
	m := db.Migrator()
	for _, idx := range legacyIndexes {
		if !m.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := m.DropIndex(idx.model, idx.name); err != nil {
			return err
		}
		log.Printf("dropped legacy index %s", idx.name)
	}
	return nil
}

// withAdvisoryLock pins a single connection so lock and unlock hit the same session.
func withAdvisoryLock(ctx context.Context, db *gorm.DB, id int64, fn func(*gorm.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", id); err != nil {
		return fmt.Errorf("migration lock error: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", id); err != nil {
			log.Printf("migration unlock error: %v", err)
		}
	}()

	return fn(db.WithContext(ctx))
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("database close error: %v", err)
	}
}
