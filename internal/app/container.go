package app

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jainabhi1607/loanease-sub003/domain"
	"github.com/jainabhi1607/loanease-sub003/internal/config"
	"github.com/jainabhi1607/loanease-sub003/internal/http/session"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/auth"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/database"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/notifications"
	"github.com/jainabhi1607/loanease-sub003/internal/infrastructure/repositories"
	"github.com/jainabhi1607/loanease-sub003/internal/services"
	"github.com/jainabhi1607/loanease-sub003/internal/throttle"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Enforcer    *casbin.Enforcer

	// Repositories
	AccountRepo domain.AccountRepository
	CodeRepo    domain.TwoFactorCodeRepository
	ResetRepo   domain.PasswordResetTokenRepository
	InviteRepo  domain.InvitationRepository
	AttemptRepo domain.LoginAttemptRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	LoginThrottle   domain.AttemptThrottle
	TwoFAThrottle   domain.AttemptThrottle
	ChallengeSvc    domain.ChallengeService
	AuthSvc         domain.AuthService

	Sessions *session.Manager
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	if err := c.initRedis(); err != nil {
		return nil, err
	}

	c.initRepositories()

	if err := c.initServices(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return fmt.Errorf("database open failed: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	cas, err := auth.NewCasbinService(db, c.Config.CasbinModelPath)
	if err != nil {
		return fmt.Errorf("route policy init failed: %w", err)
	}

	c.DB = db
	c.Enforcer = cas.E
	return nil
}

func (c *Container) initRedis() error {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
	return nil
}

func (c *Container) initRepositories() {
	c.AccountRepo = repositories.NewAccountRepository(c.DB)
	c.CodeRepo = repositories.NewTwoFactorCodeRepository(c.DB)
	c.ResetRepo = repositories.NewPasswordResetTokenRepository(c.DB)
	c.InviteRepo = repositories.NewInvitationRepository(c.DB)
	c.AttemptRepo = repositories.NewLoginAttemptRepository(c.DB)
}

func (c *Container) initServices() error {
	c.PasswordSvc = auth.NewPasswordService()

	tokenSvc, err := auth.NewJWTService(
		c.Config.JWTAccessSecret,
		c.Config.JWTRefreshSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	if err != nil {
		return err
	}
	c.TokenSvc = tokenSvc

	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Logger,
	)

	c.LoginThrottle = c.newThrottle("login", c.Config.LoginThrottle)
	c.TwoFAThrottle = c.newThrottle("two_fa", c.Config.TwoFAThrottle)

	audit := services.NewAttemptAuditLogger(c.AttemptRepo, c.Logger)

	c.ChallengeSvc = services.NewChallengeService(
		c.CodeRepo,
		c.AccountRepo,
		c.NotificationSvc,
		c.RedisClient,
		audit,
		services.ChallengeConfig{
			Length:         c.Config.TwoFALength,
			TTL:            c.Config.TwoFATTL,
			HourlyCap:      c.Config.TwoFAHourlyCap,
			ResendCooldown: c.Config.TwoFAResendCooldown,
			MaxResends:     c.Config.TwoFAMaxResends,
		},
		c.Logger,
	)

	c.AuthSvc = services.NewAuthService(
		c.AccountRepo,
		audit,
		c.ResetRepo,
		c.InviteRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.ChallengeSvc,
		c.NotificationSvc,
		c.LoginThrottle,
		c.TwoFAThrottle,
		c.Logger,
	)

	c.Sessions = session.NewManager(c.TokenSvc, c.Config.GinMode == "release")
	return nil
}

// newThrottle picks the configured backend. Memory suits a single instance;
// Redis keeps counters consistent across replicas.
func (c *Container) newThrottle(name string, policy config.ThrottlePolicy) domain.AttemptThrottle {
	p := throttle.Policy{
		MaxAttempts: policy.MaxAttempts,
		Window:      policy.Window,
		Lockout:     policy.Lockout,
	}
	if c.Config.ThrottleBackend == "redis" {
		return throttle.NewRedisThrottle(c.RedisClient, name, p)
	}
	return throttle.NewMemoryThrottle(p)
}

// Close releases all held resources in reverse dependency order.
func (c *Container) Close() error {
	if c.LoginThrottle != nil {
		c.LoginThrottle.Close()
	}
	if c.TwoFAThrottle != nil {
		c.TwoFAThrottle.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
