package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "github.com/Black-And-White-Club/racepack/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/racepack/app/modules/auth/infrastructure/jwt"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

const DefaultTokenTTL = 12 * time.Hour

// AuthService implements the Service interface.
type AuthService struct {
	users       UserLookup
	jwtProvider authjwt.Provider
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
	telemetry   operation.Telemetry
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewAuthService(
	users UserLookup,
	jwtProvider authjwt.Provider,
	ttl time.Duration,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		users:       users,
		jwtProvider: jwtProvider,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
		telemetry: operation.Telemetry{
			Service: "AuthService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
	}
}

var _ Service = (*AuthService)(nil)

// CreateSession looks up the access code and signs a token for admins.
// Unknown codes and non-admin users get the same ErrInvalidCredentials.
func (s *AuthService) CreateSession(ctx context.Context, accessCode string) (*Session, error) {
	code := strings.ToLower(strings.TrimSpace(accessCode))

	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "CreateSession", "", func(ctx context.Context) (results.OperationResult[*Session, error], error) {
		if code == "" {
			return results.FailureResult[*Session, error](ErrInvalidCredentials), nil
		}

		user, err := s.users.GetUserByAccessCode(ctx, nil, code)
		if errors.Is(err, registrationdb.ErrNotFound) {
			return results.FailureResult[*Session, error](ErrInvalidCredentials), nil
		}
		if err != nil {
			return results.OperationResult[*Session, error]{}, fmt.Errorf("failed to look up access code: %w", err)
		}

		role := authdomain.Role(user.Role)
		if role != authdomain.RoleAdmin {
			s.logger.WarnContext(ctx, "Non-admin access code rejected", attr.Int64("user_id", user.ID))
			return results.FailureResult[*Session, error](ErrInvalidCredentials), nil
		}

		now := s.now()
		claims := &authdomain.Claims{UserID: user.ID, Role: role, IssuedAt: now, ExpiresAt: now.Add(s.ttl)}
		token, err := s.jwtProvider.GenerateToken(claims, s.ttl)
		if err != nil {
			return results.OperationResult[*Session, error]{}, fmt.Errorf("%w: %w", ErrGenerateToken, err)
		}

		return results.SuccessResult[*Session, error](&Session{Token: token, ExpiresAt: claims.ExpiresAt}), nil
	}))
}
