package app

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jainabhi1607/loanease-sub003/internal/config"
	httpx "github.com/jainabhi1607/loanease-sub003/internal/http"
	"github.com/jainabhi1607/loanease-sub003/internal/http/handlers"
	"github.com/jainabhi1607/loanease-sub003/internal/http/middleware"
)

// Run wires the container, seeds the route policy on first boot, and serves
// until the listener fails.
func Run(cfg *config.Config) error {
	logger := NewLogger()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	container, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	seedRoutePolicies(container, logger)

	authH := handlers.NewAuthHandlers(container.AuthSvc, container.ChallengeSvc, container.Sessions)
	gate := middleware.NewGate(container.Sessions, container.Enforcer, logger)

	r := httpx.BuildRouter(authH, gate)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, r)
}

// NewLogger builds the process-wide structured logger.
func NewLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if lv, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		level = lv
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "loanease-auth").Logger()
}

// seedRoutePolicies installs the default role-to-route grants when the policy
// store is empty. Team members inherit their parent role's routes through the
// grouping rules.
func seedRoutePolicies(c *Container, logger zerolog.Logger) {
	policies, _ := c.Enforcer.GetPolicy()
	if len(policies) > 0 {
		return
	}

	c.Enforcer.AddPolicy("role_admin", "/admin*", "(GET|POST|PUT|PATCH|DELETE)")
	c.Enforcer.AddPolicy("role_admin", "/account*", "(GET|POST|PUT|PATCH|DELETE)")
	c.Enforcer.AddPolicy("role_admin", "/auth/*", "(GET|POST)")
	c.Enforcer.AddPolicy("role_referrer", "/dashboard*", "(GET|POST|PUT|PATCH|DELETE)")
	c.Enforcer.AddPolicy("role_referrer", "/account*", "(GET|POST|PUT|PATCH|DELETE)")
	c.Enforcer.AddPolicy("role_referrer", "/auth/*", "(GET|POST)")
	c.Enforcer.AddGroupingPolicy("role_admin_team", "role_admin")
	c.Enforcer.AddGroupingPolicy("role_referrer_team", "role_referrer")
	if err := c.Enforcer.SavePolicy(); err != nil {
		logger.Warn().Err(err).Msg("route policy seed not persisted")
		return
	}
	logger.Info().Msg("route policy: seeded default grants")
}
