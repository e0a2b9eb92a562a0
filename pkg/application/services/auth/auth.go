package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	minSecretLength = 16
	// limiters idle for this long are dropped once the table grows past maxLimiters
	limiterIdle = 10 * time.Minute
	maxLimiters = 10000
)

const errInvalidCredentials = "invalid email or password"

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Service authenticates users and issues HS256 access tokens
type Service struct {
	cfg       Config
	users     repositories.UserRepository
	publisher events.Publisher
	clock     clock.Clock
	log       *zap.Logger

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

// NewService creates an auth service
func NewService(cfg Config, users repositories.UserRepository, publisher events.Publisher, clk clock.Clock, log *zap.Logger) (*Service, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLength)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.LoginRate <= 0 {
		cfg.LoginRate = rate.Inf
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 1
	}
	return &Service{
		cfg:       cfg,
		users:     users,
		publisher: publisher,
		clock:     clk,
		log:       log,
		limiters:  make(map[string]*limiterEntry),
	}, nil
}

var _ services.AuthService = (*Service)(nil)

// Login checks the credentials of a user of companyID. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, companyID entities.CompanyID, email, password string) (*dto.Token, error) {
	const op = "auth/Login"

	email = entities.NormalizeEmail(email)
	if !s.allow(string(companyID) + "/" + email) {
		return nil, &perrors.Error{Code: perrors.ETooManyRequests, Op: op, Msg: "too many login attempts, try again later"}
	}

	user, err := s.users.GetUserByEmail(companyID, email)
	if err != nil {
		if perrors.ErrorCode(err) == perrors.ENotFound {
			return nil, &perrors.Error{Code: perrors.EUnauthorized, Op: op, Msg: errInvalidCredentials}
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &perrors.Error{Code: perrors.EUnauthorized, Op: op, Msg: errInvalidCredentials}
	}
	if !user.Active {
		return nil, &perrors.Error{Code: perrors.EForbidden, Op: op, Msg: "user is disabled"}
	}

	now := s.clock.Now().UTC()
	expires := now.Add(s.cfg.TokenTTL)
	claims := &dto.Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, &perrors.Error{Code: perrors.EInternal, Op: op, Err: err}
	}

	if err := s.publisher.Publish(ctx, events.NewLoginEvent(user)); err != nil {
		s.log.Warn("Failed to publish login event", zap.String("user_id", string(user.ID)), zap.Error(err))
	}

	return &dto.Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		User:        user,
	}, nil
}

// Verify parses and validates an access token. Only HS256 tokens from the
// configured issuer are accepted.
func (s *Service) Verify(ctx context.Context, token string) (*dto.Claims, error) {
	const op = "auth/Verify"

	claims := &dto.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token has expired"
		}
		return nil, &perrors.Error{Code: perrors.EUnauthorized, Op: op, Msg: msg, Err: err}
	}
	if !parsed.Valid || claims.UserID == "" || claims.CompanyID == "" {
		return nil, &perrors.Error{Code: perrors.EUnauthorized, Op: op, Msg: "invalid token"}
	}
	return claims, nil
}

// Me returns the user behind a verified token
func (s *Service) Me(ctx context.Context, companyID entities.CompanyID, userID entities.UserID) (*entities.User, error) {
	user, err := s.users.GetUser(companyID, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, &perrors.Error{Code: perrors.EForbidden, Op: "auth/Me", Msg: "user is disabled"}
	}
	return user, nil
}

// allow consumes one login attempt for key
func (s *Service) allow(key string) bool {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[key]
	if !ok {
		if len(s.limiters) >= maxLimiters {
			s.pruneLocked(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(s.cfg.LoginRate, s.cfg.LoginBurst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (s *Service) pruneLocked(now time.Time) {
	for k, e := range s.limiters {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(s.limiters, k)
		}
	}
}
