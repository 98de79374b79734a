package domain

import "time"

type CycleStatus string

const (
	CycleStatusUpcoming CycleStatus = "Upcoming"
	CycleStatusOpen     CycleStatus = "Open"
	CycleStatusClosed   CycleStatus = "Closed"
)

func (s CycleStatus) Valid() bool {
	switch s {
	case CycleStatusUpcoming, CycleStatusOpen, CycleStatusClosed:
		return true
	}
	return false
}

// ScholarshipCycle is the window during which new applications are accepted.
type ScholarshipCycle struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	StartDate   time.Time   `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time   `gorm:"type:date;not null" json:"end_date"`
	Status      CycleStatus `gorm:"type:varchar(20);not null;default:'Upcoming';index" json:"status"`
	Description string      `gorm:"type:text" json:"description"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// AcceptsSubmissionsAt reports whether the cycle is open and t falls on or
// between its start and end dates.
func (c *ScholarshipCycle) AcceptsSubmissionsAt(t time.Time) bool {
	if c.Status != CycleStatusOpen {
		return false
	}
	day := truncateDay(t)
	return !day.Before(truncateDay(c.StartDate)) && !day.After(truncateDay(c.EndDate))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
