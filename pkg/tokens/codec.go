package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/travel_app/pkg/clock"
)

var ErrInvalidToken = errors.New("invalid token")

// ErrExpired is matched by Decode errors for well-signed tokens past their expiry.
var ErrExpired = jwt.ErrTokenExpired

const MinSecretLen = 32

// Config is the signing setup established once at startup.
type Config struct {
	SecretKey  []byte
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec builds, signs and validates access and refresh tokens.
// Signature and expiry checks are delegated to jwt; the codec owns the claim-shape policy.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

func NewCodec(cfg Config, clk clock.Clock) (*Codec, error) {
	if len(cfg.SecretKey) < MinSecretLen {
		return nil, fmt.Errorf("secret key must be at least %d bytes", MinSecretLen)
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Codec{
		secret:     cfg.SecretKey,
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clock:      clk,
	}, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs {sub, type=access, iat, exp=now+ttl}.
func (c *Codec) IssueAccess(userID uint, ttl time.Duration) (string, error) {
	token, _, err := c.build(userID, TypeAccess, ttl, "")
	return token, err
}

// IssueRefresh signs {sub, type=refresh, iat, exp=now+ttl, jti} and returns the
// expiry instant so the caller can persist it.
func (c *Codec) IssueRefresh(userID uint, ttl time.Duration) (string, time.Time, error) {
	return c.build(userID, TypeRefresh, ttl, uuid.NewString())
}

func (c *Codec) build(userID uint, typ Type, ttl time.Duration, jti string) (string, time.Time, error) {
	if userID == 0 {
		return "", time.Time{}, errors.New("user id is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("ttl must be positive")
	}

	now := c.clock.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing %s token: %w", typ, err)
	}
	// exp is serialised with second precision
	return signed, exp.Truncate(time.Second), nil
}

// Decode verifies signature and expiry, then the claim shape. An empty
// expected type skips the type check. Every failure wraps ErrInvalidToken.
func (c *Codec) Decode(token string, expected Type) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != TypeAccess && claims.Type != TypeRefresh {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidToken, claims.Type)
	}
	if expected != "" && claims.Type != expected {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, expected)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	if claims.Type == TypeRefresh && claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return &claims, nil
}
