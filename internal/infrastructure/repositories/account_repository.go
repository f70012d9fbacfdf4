package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository using GORM
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// DBAccount represents the database model for Account (with GORM tags)
type DBAccount struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;size:255"`
	Phone          string `gorm:"size:32"`
	PasswordHash   string `gorm:"column:password"`
	Role           string `gorm:"index;size:64"`
	OrganisationID *uint  `gorm:"index"`
	TwoFAEnabled   bool
	IsActive       bool           `gorm:"index"`
	CreatedAt      time.Time      `gorm:"index"`
	UpdatedAt      time.Time      `gorm:"index"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBAccount) TableName() string {
	return "accounts"
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create implements domain.AccountRepository
func (r *AccountRepositoryImpl) Create(ctx context.Context, acc *domain.Account) error {
	dbAcc := r.domainToDB(acc)
	if err := r.db.WithContext(ctx).Create(dbAcc).Error; err != nil {
		return err
	}
	acc.ID = dbAcc.ID
	return nil
}

// FindByEmail implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var dbAcc DBAccount
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbAcc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAcc), nil
}

// FindByID implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var dbAcc DBAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbAcc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAcc), nil
}

// Update implements domain.AccountRepository
func (r *AccountRepositoryImpl) Update(ctx context.Context, acc *domain.Account) error {
	return r.db.WithContext(ctx).Save(r.domainToDB(acc)).Error
}

// UpdatePassword implements domain.AccountRepository
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).Where("id = ?", userID).Update("password", passwordHash).Error
}

func (r *AccountRepositoryImpl) domainToDB(acc *domain.Account) *DBAccount {
	return &DBAccount{
		ID:             acc.ID,
		Email:          acc.Email,
		Phone:          acc.Phone,
		PasswordHash:   acc.PasswordHash,
		Role:           acc.Role,
		OrganisationID: acc.OrganisationID,
		TwoFAEnabled:   acc.TwoFAEnabled,
		IsActive:       acc.IsActive,
	}
}

func (r *AccountRepositoryImpl) dbToDomain(dbAcc *DBAccount) *domain.Account {
	return &domain.Account{
		ID:             dbAcc.ID,
		Email:          dbAcc.Email,
		Phone:          dbAcc.Phone,
		PasswordHash:   dbAcc.PasswordHash,
		Role:           dbAcc.Role,
		OrganisationID: dbAcc.OrganisationID,
		TwoFAEnabled:   dbAcc.TwoFAEnabled,
		IsActive:       dbAcc.IsActive,
		CreatedAt:      dbAcc.CreatedAt,
		UpdatedAt:      dbAcc.UpdatedAt,
	}
}
