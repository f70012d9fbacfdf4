package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// PasswordResetTokenRepositoryImpl implements domain.PasswordResetTokenRepository
type PasswordResetTokenRepositoryImpl struct {
	db *gorm.DB
}

// DBPasswordResetToken represents the database model for PasswordResetToken
type DBPasswordResetToken struct {
	Token     string `gorm:"primaryKey;size:64"`
	UserID    uint   `gorm:"index"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (DBPasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// NewPasswordResetTokenRepository creates a new reset token repository
func NewPasswordResetTokenRepository(db *gorm.DB) domain.PasswordResetTokenRepository {
	return &PasswordResetTokenRepositoryImpl{db: db}
}

// Create implements domain.PasswordResetTokenRepository
func (r *PasswordResetTokenRepositoryImpl) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(&DBPasswordResetToken{
		Token:     token.Token,
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}).Error
}

// FindLive implements domain.PasswordResetTokenRepository. Only unused,
// unexpired tokens are returned.
func (r *PasswordResetTokenRepositoryImpl) FindLive(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var row DBPasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, err
	}
	return &domain.PasswordResetToken{
		Token:     row.Token,
		UserID:    row.UserID,
		ExpiresAt: row.ExpiresAt,
		UsedAt:    row.UsedAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

// MarkUsed implements domain.PasswordResetTokenRepository
func (r *PasswordResetTokenRepositoryImpl) MarkUsed(ctx context.Context, token string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&DBPasswordResetToken{}).
		Where("token = ?", token).
		Update("used_at", &now).Error
}

// InvalidateForUser implements domain.PasswordResetTokenRepository
func (r *PasswordResetTokenRepositoryImpl) InvalidateForUser(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&DBPasswordResetToken{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", &now).Error
}

// InvitationRepositoryImpl implements domain.InvitationRepository
type InvitationRepositoryImpl struct {
	db *gorm.DB
}

// DBInvitation represents the database model for Invitation
type DBInvitation struct {
	Token          string `gorm:"primaryKey;size:64"`
	Email          string `gorm:"index;size:255"`
	Role           string `gorm:"size:64"`
	OrganisationID *uint
	ExpiresAt      time.Time
	AcceptedAt     *time.Time
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (DBInvitation) TableName() string {
	return "invitations"
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) domain.InvitationRepository {
	return &InvitationRepositoryImpl{db: db}
}

// Create implements domain.InvitationRepository
func (r *InvitationRepositoryImpl) Create(ctx context.Context, inv *domain.Invitation) error {
	return r.db.WithContext(ctx).Create(&DBInvitation{
		Token:          inv.Token,
		Email:          inv.Email,
		Role:           inv.Role,
		OrganisationID: inv.OrganisationID,
		ExpiresAt:      inv.ExpiresAt,
		CreatedAt:      inv.CreatedAt,
	}).Error
}

// FindLive implements domain.InvitationRepository
func (r *InvitationRepositoryImpl) FindLive(ctx context.Context, token string) (*domain.Invitation, error) {
	var row DBInvitation
	err := r.db.WithContext(ctx).
		Where("token = ? AND accepted_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrInvitationInvalid
		}
		return nil, err
	}
	return &domain.Invitation{
		Token:          row.Token,
		Email:          row.Email,
		Role:           row.Role,
		OrganisationID: row.OrganisationID,
		ExpiresAt:      row.ExpiresAt,
		AcceptedAt:     row.AcceptedAt,
		CreatedAt:      row.CreatedAt,
	}, nil
}

// MarkAccepted implements domain.InvitationRepository
func (r *InvitationRepositoryImpl) MarkAccepted(ctx context.Context, token string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&DBInvitation{}).
		Where("token = ?", token).
		Update("accepted_at", &now).Error
}
