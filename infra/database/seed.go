package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	log "github.com/sirupsen/logrus"
)

// SeedCycle creates an open cycle for the current year when no cycle exists yet.
func SeedCycle(ctx context.Context, db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.ScholarshipCycle{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	year := now.Year()
	cycle := domain.ScholarshipCycle{
		Name:      fmt.Sprintf("%d Bursary", year),
		StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:    domain.CycleStatusOpen,
	}
	err := db.WithContext(ctx).Where("name = ?", cycle.Name).FirstOrCreate(&cycle).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	log.Printf("seeded scholarship cycle %q", cycle.Name)
	return nil
}
