package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// LoginAttemptRepositoryImpl implements domain.LoginAttemptRepository using GORM
type LoginAttemptRepositoryImpl struct {
	db *gorm.DB
}

// DBLoginAttempt represents a row in the login-attempt audit trail
type DBLoginAttempt struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"index;size:255"`
	UserID    uint   `gorm:"index"`
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:512"`
	Success   bool
	Reason    string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBLoginAttempt) TableName() string {
	return "login_attempts"
}

// NewLoginAttemptRepository creates a new login attempt repository
func NewLoginAttemptRepository(db *gorm.DB) domain.LoginAttemptRepository {
	return &LoginAttemptRepositoryImpl{db: db}
}

// Append implements domain.LoginAttemptRepository
func (r *LoginAttemptRepositoryImpl) Append(ctx context.Context, attempt *domain.LoginAttempt) error {
	row := &DBLoginAttempt{
		Email:     attempt.Email,
		UserID:    attempt.UserID,
		IP:        attempt.IP,
		UserAgent: attempt.UserAgent,
		Success:   attempt.Success,
		Reason:    attempt.Reason,
		CreatedAt: attempt.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(row).Error
}
