package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the Argon2id cost settings. Memory is in KiB.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

// MaxMemoryKiB bounds the Argon2 memory cost. Digests claiming more are
// rejected before hashing, so New refuses to produce them.
const MaxMemoryKiB = 1 << 20

var ErrMalformedDigest = errors.New("malformed password digest")

// Argon2 hashes passwords with Argon2id and encodes them in PHC format:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
// The whole plaintext is fed to the KDF; there is no length ceiling.
type Argon2 struct {
	params Params
}

// Validate reports whether digests produced with p can be verified again.
func (p Params) Validate() error {
	switch {
	case p.Time == 0:
		return errors.New("argon2: time cost must be positive")
	case p.Threads == 0:
		return errors.New("argon2: threads must be positive")
	case p.Memory == 0 || p.Memory > MaxMemoryKiB:
		return fmt.Errorf("argon2: memory must be in (0, %d] KiB", MaxMemoryKiB)
	case p.KeyLen == 0 || p.SaltLen == 0:
		return errors.New("argon2: key and salt length must be positive")
	}
	return nil
}

// New fills zero fields from DefaultParams and rejects settings whose digests
// Verify would refuse.
func New(p Params) (*Argon2, error) {
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = DefaultParams.KeyLen
	}
	if p.SaltLen == 0 {
		p.SaltLen = DefaultParams.SaltLen
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Argon2{params: p}, nil
}

func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.Memory, a.params.Threads, a.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.params.Memory, a.params.Time, a.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether password matches digest. A malformed digest is a mismatch.
func (a *Argon2) Verify(password, digest string) bool {
	p, salt, sum, err := decode(digest)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(sum)))
	return subtle.ConstantTimeCompare(sum, candidate) == 1
}

func decode(digest string) (p Params, salt, sum []byte, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedDigest
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedDigest
	}
	if p.Time == 0 || p.Threads == 0 || p.Memory == 0 || p.Memory > MaxMemoryKiB {
		return p, nil, nil, ErrMalformedDigest
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrMalformedDigest
	}
	sum, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return p, nil, nil, ErrMalformedDigest
	}
	return p, salt, sum, nil
}
