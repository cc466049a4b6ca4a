package domain

import (
	"context"
	"time"
)

// UserRepository handles user rows
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateTelegramChatID(ctx context.Context, userID uint, chatID string) error
}

// CredentialRepository handles the per-user OAuth credential row
type CredentialRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*OAuthCredential, error)
	// UpdateAccessToken writes the access token and its expiry in one
	// transaction so the pair never diverges.
	UpdateAccessToken(ctx context.Context, userID uint, accessToken string, expiresAt time.Time) error
	Upsert(ctx context.Context, cred *OAuthCredential) error
}

// SnapshotRepository handles daily metric snapshots
type SnapshotRepository interface {
	// UpsertDaily inserts or overwrites the (user, date) row.
	UpsertDaily(ctx context.Context, snapshot *HealthMetricSnapshot) error
	GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*HealthMetricSnapshot, error)
}

// TokenProvider yields a currently-valid access token for a user,
// refreshing it against the OAuth provider when near expiry.
type TokenProvider interface {
	EnsureValidToken(ctx context.Context, userID uint) (string, error)
}

// FitnessClient reads aggregated metrics from the fitness API. Each
// call takes a valid bearer token and an explicit time window.
type FitnessClient interface {
	FetchSteps(ctx context.Context, token string, start, end time.Time) (int, error)
	FetchHeartRate(ctx context.Context, token string, start, end time.Time) (int, error)
	FetchSleep(ctx context.Context, token string, start, end time.Time) (string, error)
}

// UserLinker links a Telegram chat to a configured user identity.
type UserLinker interface {
	LinkTelegramChat(ctx context.Context, email string, chatID int64) error
}

// ReportService generates the daily report text for an identity.
type ReportService interface {
	GenerateDailyReport(ctx context.Context, email string) string
}
