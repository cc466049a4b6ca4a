package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository handles OAuth credential rows
type CredentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// GetByUserID gets the credential for a user, domain.ErrNotFound when absent
func (r *CredentialRepository) GetByUserID(ctx context.Context, userID uint) (*domain.OAuthCredential, error) {
	var cred domain.OAuthCredential
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &cred, nil
}

// UpdateAccessToken writes the token and its expiry in one transaction.
// The refresh token is deliberately left alone.
func (r *CredentialRepository) UpdateAccessToken(ctx context.Context, userID uint, accessToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.OAuthCredential{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"access_token": accessToken,
				"expires_at":   expiresAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Upsert creates or replaces the credential row for cred.UserID. Used
// by the one-time auth setup, where a fresh refresh token must win.
func (r *CredentialRepository) Upsert(ctx context.Context, cred *domain.OAuthCredential) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(cred).Error
}
