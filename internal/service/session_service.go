package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courseai/internal/model"
	"courseai/internal/repository"
	"courseai/internal/util"

	"github.com/rs/zerolog"
)

// ErrInvalidSession is returned for a token that is malformed, expired,
// revoked, or whose user no longer exists.
var ErrInvalidSession = errors.New("invalid or expired session")

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SessionService issues session tokens and re-checks them on every request.
type SessionService interface {
	Issue(user *model.User) (string, *model.Session, error)
	Validate(ctx context.Context, token string) (*model.Session, error)
	Revoke(ctx context.Context, session *model.Session) error
}

type sessionService struct {
	secret      string
	ttl         time.Duration
	users       repository.UserRepository
	revocations RevocationStore
	now         func() time.Time
	logger      zerolog.Logger
}

// NewSessionService creates a SessionService. Without a revocation store,
// tokens stay valid until they expire.
func NewSessionService(secret string, ttl time.Duration, users repository.UserRepository, revocations RevocationStore, logger zerolog.Logger) SessionService {
	return &sessionService{
		secret:      secret,
		ttl:         ttl,
		users:       users,
		revocations: revocations,
		now:         time.Now,
		logger:      logger.With().Str("service", "SessionService").Logger(),
	}
}

func (s *sessionService) Issue(user *model.User) (string, *model.Session, error) {
	token, claims, err := util.IssueJWT(s.secret, user.UserID, user.Email, string(user.Role), s.ttl, s.now())
	if err != nil {
		return "", nil, err
	}
	return token, &model.Session{
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (*model.Session, error) {
	claims, err := util.ValidateJWT(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("checking session revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: session was revoked", ErrInvalidSession)
		}
	}

	// The stored user is the source of truth for role and existence.
	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidSession)
	}

	return &model.Session{
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *sessionService) Revoke(ctx context.Context, session *model.Session) error {
	if s.revocations == nil {
		s.logger.Warn().Str("user_id", session.UserID).Msg("No revocation store configured, session stays valid until expiry")
		return nil
	}
	if err := s.revocations.Revoke(ctx, session.TokenID, session.ExpiresAt.Sub(s.now())); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", session.UserID).Msg("Session revoked")
	return nil
}
