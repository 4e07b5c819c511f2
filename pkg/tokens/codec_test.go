package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/travel_app/pkg/clock"
)

var testSecret = []byte("test-secret-key-that-is-long-enough!!")

func newTestCodec(t *testing.T, clk clock.Clock) *Codec {
	t.Helper()

	c, err := NewCodec(Config{
		SecretKey:  testSecret,
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, clk)
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "short secret", cfg: Config{SecretKey: []byte("short"), AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{name: "rsa algorithm", cfg: Config{SecretKey: testSecret, Algorithm: "RS256", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{name: "unknown algorithm", cfg: Config{SecretKey: testSecret, Algorithm: "none", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{name: "zero ttl", cfg: Config{SecretKey: testSecret, Algorithm: "HS256"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCodec(tt.cfg, nil)
			require.Error(t, err)
		})
	}
}

func TestCodec_IssueAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(time.Now())
	c := newTestCodec(t, clk)

	token, err := c.IssueAccess(42, 15*time.Minute)
	require.NoError(t, err)

	claims, err := c.Decode(token, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.Equal(t, "42", claims.Subject)
	assert.Empty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, clk.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestCodec_IssueRefresh_ReturnsExpiryAndUniqueJTI(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(time.Now())
	c := newTestCodec(t, clk)

	first, exp, err := c.IssueRefresh(7, 24*time.Hour)
	require.NoError(t, err)
	second, _, err := c.IssueRefresh(7, 24*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := c.Decode(first, TypeRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
	assert.WithinDuration(t, clk.Now().Add(24*time.Hour), exp, time.Second)

	other, err := c.Decode(second, TypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, other.ID)
}

func TestCodec_Decode_TypeMismatch(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, nil)

	access, err := c.IssueAccess(1, time.Minute)
	require.NoError(t, err)
	refresh, _, err := c.IssueRefresh(1, time.Hour)
	require.NoError(t, err)

	_, err = c.Decode(access, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.Decode(refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := c.Decode(refresh, "")
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestCodec_Decode_Expired(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock(time.Now())
	c := newTestCodec(t, clk)

	token, err := c.IssueAccess(1, time.Minute)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = c.Decode(token, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_Decode_RejectsForeignAndMalformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, nil)
	other, err := NewCodec(Config{
		SecretKey:  []byte(strings.Repeat("z", 40)),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, nil)
	require.NoError(t, err)

	foreign, err := other.IssueAccess(1, time.Minute)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type:             TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString(testSecret)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	noType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-valid-jwt",
		"foreign secret": foreign,
		"other alg":      hs512,
		"no subject":     noSubject,
		"no expiry":      noExpiry,
		"bad subject":    badSubject,
		"no type":        noType,
	}

	for name, token := range tests {
		_, err := c.Decode(token, "")
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
