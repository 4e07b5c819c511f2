package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newTestHasher(t *testing.T) *Argon2 {
	t.Helper()
	h, err := New(testParams)
	require.NoError(t, err)
	return h
}

func TestArgon2_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	tests := []struct {
		name     string
		password string
	}{
		{name: "short", password: "pw1"},
		{name: "empty", password: ""},
		{name: "unicode", password: "пароль-密码-🔑"},
		{name: "longer than 72 bytes", password: strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			digest, err := h.Hash(tt.password)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"))
			assert.True(t, h.Verify(tt.password, digest))
			assert.False(t, h.Verify(tt.password+"x", digest))
		})
	}
}

func TestArgon2_NoTruncationPastLegacyCap(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	prefix := strings.Repeat("p", 72)

	digest, err := h.Hash(prefix + "-first")
	require.NoError(t, err)

	assert.True(t, h.Verify(prefix+"-first", digest))
	assert.False(t, h.Verify(prefix+"-second", digest))
	assert.False(t, h.Verify(prefix, digest))
}

func TestArgon2_SaltedDigestsDiffer(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestArgon2_Verify_MalformedDigest(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	digests := []string{
		"",
		"not-a-digest",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=99999999,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}

	for _, d := range digests {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("password", d), d)
		})
	}
}

func TestNew_RejectsUnverifiableParams(t *testing.T) {
	t.Parallel()

	_, err := New(Params{Time: 1, Memory: MaxMemoryKiB + 1024, Threads: 1})
	require.Error(t, err)

	h, err := New(Params{Time: 1, Memory: MaxMemoryKiB, Threads: 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(MaxMemoryKiB), h.params.Memory)
}

func TestNew_DefaultsZeroFields(t *testing.T) {
	t.Parallel()

	h, err := New(Params{})
	require.NoError(t, err)
	assert.Equal(t, DefaultParams, h.params)
}

func TestParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Params
		ok   bool
	}{
		{name: "defaults", p: DefaultParams, ok: true},
		{name: "memory at limit", p: Params{Time: 1, Memory: MaxMemoryKiB, Threads: 1, KeyLen: 32, SaltLen: 16}, ok: true},
		{name: "memory over limit", p: Params{Time: 1, Memory: MaxMemoryKiB + 1, Threads: 1, KeyLen: 32, SaltLen: 16}},
		{name: "zero memory", p: Params{Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}},
		{name: "zero time", p: Params{Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}},
		{name: "zero threads", p: Params{Time: 1, Memory: 1024, KeyLen: 32, SaltLen: 16}},
	}
	for _, tt := range tests {
		err := tt.p.Validate()
		if tt.ok {
			assert.NoError(t, err, tt.name)
		} else {
			assert.Error(t, err, tt.name)
		}
	}
}
