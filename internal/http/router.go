package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jainabhi1607/loanease-sub003/internal/http/handlers"
	"github.com/jainabhi1607/loanease-sub003/internal/http/middleware"
)

// BuildRouter assembles the gin engine. The gate runs on every request so
// navigational pages and API endpoints share one resolution and redirect
// policy.
func BuildRouter(ah *handlers.AuthHandlers, gate *middleware.Gate) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), gate.Handle())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/login", ah.Login)
	auth.POST("/two-factor/verify", ah.VerifyTwoFactor)
	auth.POST("/two-factor/resend", ah.ResendTwoFactor)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/signup", ah.Signup)
	auth.POST("/password-reset/request", ah.RequestPasswordReset)
	auth.POST("/password-reset/confirm", ah.ConfirmPasswordReset)
	auth.POST("/invitations", ah.Invite)
	auth.GET("/me", ah.Me)
	auth.POST("/logout", ah.Logout)

	// Navigational pages. The SPA serves the markup; these exist so the gate
	// has concrete routes to redirect between.
	r.GET(middleware.RouteLogin, pageStub("login"))
	r.GET(middleware.RouteSignup, pageStub("signup"))
	r.GET(middleware.RouteTwoFactor, pageStub("two_factor"))
	r.GET("/dashboard", landingStub("dashboard"))
	r.GET("/admin", landingStub("admin"))
	r.GET("/account", landingStub("account"))

	return r
}

func pageStub(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name})
	}
}

func landingStub(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.CurrentClaims(c)
		c.JSON(http.StatusOK, gin.H{"page": name, "user_id": claims.UserID, "role": claims.Role})
	}
}
