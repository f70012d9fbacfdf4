package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// TwoFactorCodeRepositoryImpl implements domain.TwoFactorCodeRepository using GORM
type TwoFactorCodeRepositoryImpl struct {
	db *gorm.DB
}

// DBTwoFactorCode represents the database model for TwoFactorCode
type DBTwoFactorCode struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      uint   `gorm:"index"`
	Code        string `gorm:"index;size:12"`
	Status      string `gorm:"index;size:16"`
	ResendCount int
	CreatedAt   time.Time
	ExpiresAt   time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBTwoFactorCode) TableName() string {
	return "two_factor_codes"
}

// NewTwoFactorCodeRepository creates a new two-factor code repository
func NewTwoFactorCodeRepository(db *gorm.DB) domain.TwoFactorCodeRepository {
	return &TwoFactorCodeRepositoryImpl{db: db}
}

// Insert implements domain.TwoFactorCodeRepository
func (r *TwoFactorCodeRepositoryImpl) Insert(ctx context.Context, code *domain.TwoFactorCode) error {
	return r.db.WithContext(ctx).Create(r.domainToDB(code)).Error
}

// FindByID implements domain.TwoFactorCodeRepository
func (r *TwoFactorCodeRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.TwoFactorCode, error) {
	var dbCode DBTwoFactorCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbCode).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTwoFactorCodeInvalid
		}
		return nil, err
	}
	return r.dbToDomain(&dbCode), nil
}

// FindActiveByCode implements domain.TwoFactorCodeRepository. Lookup is by
// code value alone, which is why issuance enforces global uniqueness among
// active codes.
func (r *TwoFactorCodeRepositoryImpl) FindActiveByCode(ctx context.Context, code string) (*domain.TwoFactorCode, error) {
	var dbCode DBTwoFactorCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND status = ?", code, domain.CodeStatusActive).
		First(&dbCode).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTwoFactorCodeInvalid
		}
		return nil, err
	}
	return r.dbToDomain(&dbCode), nil
}

// ActiveCodeExists implements domain.TwoFactorCodeRepository
func (r *TwoFactorCodeRepositoryImpl) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBTwoFactorCode{}).
		Where("code = ? AND status = ? AND expires_at > ?", code, domain.CodeStatusActive, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkUsed implements domain.TwoFactorCodeRepository
func (r *TwoFactorCodeRepositoryImpl) MarkUsed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&DBTwoFactorCode{}).
		Where("id = ?", id).
		Update("status", domain.CodeStatusUsed).Error
}

// SupersedeActive implements domain.TwoFactorCodeRepository. All outstanding
// active codes for the user move to the terminal superseded state.
func (r *TwoFactorCodeRepositoryImpl) SupersedeActive(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBTwoFactorCode{}).
		Where("user_id = ? AND status = ?", userID, domain.CodeStatusActive).
		Update("status", domain.CodeStatusSuperseded).Error
}

// IncrementResend implements domain.TwoFactorCodeRepository
func (r *TwoFactorCodeRepositoryImpl) IncrementResend(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&DBTwoFactorCode{}).
		Where("id = ?", id).
		Update("resend_count", gorm.Expr("resend_count + 1")).Error
}

func (r *TwoFactorCodeRepositoryImpl) domainToDB(code *domain.TwoFactorCode) *DBTwoFactorCode {
	return &DBTwoFactorCode{
		ID:          code.ID,
		UserID:      code.UserID,
		Code:        code.Code,
		Status:      code.Status,
		ResendCount: code.ResendCount,
		CreatedAt:   code.CreatedAt,
		ExpiresAt:   code.ExpiresAt,
	}
}

func (r *TwoFactorCodeRepositoryImpl) dbToDomain(dbCode *DBTwoFactorCode) *domain.TwoFactorCode {
	return &domain.TwoFactorCode{
		ID:          dbCode.ID,
		UserID:      dbCode.UserID,
		Code:        dbCode.Code,
		Status:      dbCode.Status,
		ResendCount: dbCode.ResendCount,
		CreatedAt:   dbCode.CreatedAt,
		ExpiresAt:   dbCode.ExpiresAt,
	}
}
