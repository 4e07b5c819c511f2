package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/travel_app/internal/events"
	"github.com/Skotchmaster/travel_app/internal/metrics"
	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/pkg/clock"
	"github.com/Skotchmaster/travel_app/pkg/logging"
	"github.com/Skotchmaster/travel_app/pkg/tokens"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type TokenCodec interface {
	IssueAccess(userID uint, ttl time.Duration) (string, error)
	IssueRefresh(userID uint, ttl time.Duration) (string, time.Time, error)
	Decode(token string, expected tokens.Type) (*tokens.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type AuthService struct {
	Store  repo.Store
	Hasher PasswordHasher
	Tokens TokenCodec
	Clock  clock.Clock
	Events events.Publisher

	// RotateRefresh revokes the presented refresh token on every refresh and
	// hands out a new one.
	RotateRefresh bool

	dummyOnce   sync.Once
	dummyDigest string
}

type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}

func (s *AuthService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

// issue mints an access+refresh pair and persists the refresh token through st.
func (s *AuthService) issue(ctx context.Context, st repo.Store, userID uint) (string, string, error) {
	access, err := s.Tokens.IssueAccess(userID, s.Tokens.AccessTTL())
	if err != nil {
		return "", "", err
	}
	refresh, exp, err := s.Tokens.IssueRefresh(userID, s.Tokens.RefreshTTL())
	if err != nil {
		return "", "", err
	}
	if _, err := st.RefreshTokens().Create(ctx, refresh, userID, exp); err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	var sess Session
	err = s.Store.Transaction(ctx, func(tx repo.Store) error {
		user, err := tx.Users().Create(ctx, email, digest)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateEmail
			}
			return err
		}
		access, refresh, err := s.issue(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		sess = Session{AccessToken: access, RefreshToken: refresh, User: user}
		return nil
	})
	metrics.AuthOperations.WithLabelValues("register", metrics.Outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			l.Warn("register_error", "status", 409, "reason", "email already registered")
		} else {
			l.Error("register_error", "status", 500, "error", err)
		}
		return nil, err
	}

	s.publish(ctx, events.TopicUsers, events.Event{Type: events.UserRegistered, UserID: sess.User.ID})
	l.Info("register_successful", "user_id", sess.User.ID)
	return &sess, nil
}

// dummy returns a digest to verify against when the email is unknown, so both
// failure paths cost one hash.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.Hasher.Hash("travel-app-dummy-password")
	})
	return s.dummyDigest
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.Store.Users().ByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		s.Hasher.Verify(password, s.dummy())
		metrics.AuthOperations.WithLabelValues("login", "failure").Inc()
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	case err != nil:
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		metrics.AuthOperations.WithLabelValues("login", "failure").Inc()
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	var access, refresh string
	err = s.Store.Transaction(ctx, func(tx repo.Store) error {
		var err error
		access, refresh, err = s.issue(ctx, tx, user.ID)
		return err
	})
	metrics.AuthOperations.WithLabelValues("login", metrics.Outcome(err)).Inc()
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUsers, events.Event{Type: events.UserLoggedIn, UserID: user.ID})
	l.Info("login_successful", "user_id", user.ID)
	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh mints a new access token from a valid refresh token. A presented
// token whose record has expired is revoked on the way out.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	res, err := s.refresh(ctx, refreshToken)
	metrics.AuthOperations.WithLabelValues("refresh", metrics.Outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			l.Warn("refresh_failed", "status", 401, "reason", err.Error())
		} else {
			l.Error("refresh_failed", "status", 500, "error", err)
		}
		return nil, err
	}
	return res, nil
}

func (s *AuthService) refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.Tokens.Decode(refreshToken, tokens.TypeRefresh)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			if rerr := s.revokeExpired(ctx, refreshToken); rerr != nil {
				return nil, rerr
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	rec, err := s.Store.RefreshTokens().Find(ctx, refreshToken)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown refresh token", ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	if rec.Revoked {
		return nil, fmt.Errorf("%w: refresh token revoked", ErrInvalidToken)
	}
	if !s.now().Before(rec.ExpiresAt) {
		if err := s.revokeExpired(ctx, refreshToken); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: refresh token expired", ErrInvalidToken)
	}
	if rec.UserID != userID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	if _, err := s.Store.Users().ByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}

	access, err := s.Tokens.IssueAccess(userID, s.Tokens.AccessTTL())
	if err != nil {
		return nil, err
	}
	if !s.RotateRefresh {
		return &RefreshResult{AccessToken: access, RefreshToken: refreshToken}, nil
	}

	var next string
	err = s.Store.Transaction(ctx, func(tx repo.Store) error {
		locked, err := tx.RefreshTokens().FindForUpdate(ctx, refreshToken)
		if err != nil {
			return err
		}
		if locked.Revoked {
			return fmt.Errorf("%w: refresh token revoked", ErrInvalidToken)
		}
		if _, err := tx.RefreshTokens().Revoke(ctx, refreshToken); err != nil {
			return err
		}
		token, exp, err := s.Tokens.IssueRefresh(userID, s.Tokens.RefreshTTL())
		if err != nil {
			return err
		}
		if _, err := tx.RefreshTokens().Create(ctx, token, userID, exp); err != nil {
			return err
		}
		next = token
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RefreshTokensRevoked.Inc()
	return &RefreshResult{AccessToken: access, RefreshToken: next}, nil
}

func (s *AuthService) revokeExpired(ctx context.Context, token string) error {
	rec, err := s.Store.RefreshTokens().Revoke(ctx, token)
	if err != nil {
		return err
	}
	if rec != nil {
		metrics.RefreshTokensRevoked.Inc()
	}
	return nil
}

// Logout revokes a single refresh token. Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	rec, err := s.Store.RefreshTokens().Revoke(ctx, refreshToken)
	metrics.AuthOperations.WithLabelValues("logout", metrics.Outcome(err)).Inc()
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return err
	}
	if rec == nil {
		l.Warn("logout_failed", "status", 404, "reason", "refresh token not found")
		return ErrTokenNotFound
	}
	metrics.RefreshTokensRevoked.Inc()
	l.Info("successful_logout", "user_id", rec.UserID)
	return nil
}

func (s *AuthService) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.revoke_all", "user_id", userID)

	n, err := s.Store.RefreshTokens().RevokeAllForUser(ctx, userID)
	metrics.AuthOperations.WithLabelValues("revoke_all", metrics.Outcome(err)).Inc()
	if err != nil {
		l.Error("revoke_all_failed", "status", 500, "error", err)
		return 0, err
	}
	metrics.RefreshTokensRevoked.Add(float64(n))
	l.Info("revoked_all", "count", n)
	return n, nil
}

func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.Store.RefreshTokens().PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.RefreshTokensPurged.Add(float64(n))
	logging.FromContext(ctx).Info("purged_refresh_tokens", "count", n)
	return n, nil
}

// Authenticate resolves the user behind an access token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.Tokens.Decode(accessToken, tokens.TypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	user, err := s.Store.Users().ByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
	}
	return user, err
}

func (s *AuthService) publish(ctx context.Context, topic string, ev events.Event) {
	publish(ctx, s.Events, s.now(), topic, ev)
}

func publish(ctx context.Context, p events.Publisher, now time.Time, topic string, ev events.Event) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = now
	}
	key := strconv.FormatUint(uint64(ev.UserID), 10)
	if ev.TripID != 0 {
		key = strconv.FormatUint(uint64(ev.TripID), 10)
	}
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
