package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authservice "github.com/Black-And-White-Club/racepack/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/racepack/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/racepack/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
)

// Config carries the token and rate limit settings.
type Config struct {
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
}

// Module represents the auth module.
type Module struct {
	Service  *authservice.AuthService
	Handlers *authhandlers.AuthHandlers
	Provider authjwt.Provider
	// Limiter is shared by every rate-limited public route.
	Limiter *authhandlers.IPRateLimiter
	logger  *slog.Logger
	origins []string
}

// NewAuthModule creates the auth module. users is usually the registration
// repository; limiter is shared with the other throttled public routes.
func NewAuthModule(
	ctx context.Context,
	obs *observability.Observability,
	users authservice.UserLookup,
	cfg Config,
	limiter *authhandlers.IPRateLimiter,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "auth.NewAuthModule initializing")

	provider := authjwt.NewProvider(cfg.JWTSecret)
	service := authservice.NewAuthService(
		users,
		provider,
		cfg.TokenTTL,
		logger,
		obs.Metrics("auth"),
		obs.Tracer("auth"),
	)

	return &Module{
		Service:  service,
		Handlers: authhandlers.NewAuthHandlers(service, logger, authhandlers.RateLimitMiddleware(limiter)),
		Provider: provider,
		Limiter:  limiter,
		logger:   logger,
		origins:  cfg.AllowedOrigins,
	}
}

// RateLimit is the middleware for public routes that need throttling.
func (m *Module) RateLimit() func(http.Handler) http.Handler {
	return authhandlers.RateLimitMiddleware(m.Limiter)
}

// RequireAdmin guards the admin routes.
func (m *Module) RequireAdmin() func(http.Handler) http.Handler {
	return authhandlers.AuthMiddleware(m.Provider, m.logger)
}

// CORS applies the configured origin allowlist.
func (m *Module) CORS() func(http.Handler) http.Handler {
	return authhandlers.CORSMiddleware(m.origins)
}
