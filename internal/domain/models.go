package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no row matches.
// The gorm implementations translate gorm.ErrRecordNotFound into it so
// services stay storage-agnostic.
var ErrNotFound = errors.New("record not found")

// User is the account receiving daily reports. The deployment is
// single-tenant but the model allows multiple rows.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	GoogleID       string `gorm:"size:255;uniqueIndex"`
	Email          string `gorm:"size:255;uniqueIndex"`
	TelegramChatID string `gorm:"size:100"`
}

// OAuthCredential holds the Google tokens for one user (1:1).
// AccessToken and ExpiresAt must always change together.
type OAuthCredential struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint `gorm:"uniqueIndex"`
	User         User
	AccessToken  string    `gorm:"size:512;not null"`
	RefreshToken string    `gorm:"size:512"`
	ExpiresAt    time.Time `gorm:"not null"`
}

// HealthMetricSnapshot is one persisted row of daily aggregates,
// unique per (user, calendar day), last write wins.
//
// SleepHours and HeartRateAvg exist in the schema but the report flow
// currently renders those metrics without persisting them.
type HealthMetricSnapshot struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint `gorm:"uniqueIndex:idx_snapshots_user_date"`
	User         User
	Date         time.Time `gorm:"type:date;uniqueIndex:idx_snapshots_user_date"`
	Steps        int       `gorm:"default:0"`
	SleepHours   float64   `gorm:"default:0"`
	HeartRateAvg float64
}
