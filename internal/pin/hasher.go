package pin

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Length is the number of digits in a PIN.
const Length = 6

// Validate accepts exactly six ASCII digits.
func Validate(p string) error {
	if len(p) != Length {
		return ErrInvalidInput
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return ErrInvalidInput
		}
	}
	return nil
}

// Hasher turns a validated PIN into a storable digest and checks candidates
// against one.
type Hasher interface {
	Hash(pin string) (string, error)
	// Verify reports whether pin matches encoded. needsRehash is set when
	// encoded was produced by an older scheme or weaker parameters.
	Verify(pin, encoded string) (ok bool, needsRehash bool, err error)
}

var errMalformedDigest = errors.New("malformed pin digest")

// Argon2idParams controls the cost of PIN digests.
type Argon2idParams struct {
	Time        uint32 `yaml:"time"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
	SaltLen     uint32 `yaml:"salt_len"`
	KeyLen      uint32 `yaml:"key_len"`
}

func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		SaltLen:     16,
		KeyLen:      32,
	}
}

// Argon2idHasher stores a random salt with every digest:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Salt and key are unpadded standard base64.
type Argon2idHasher struct {
	Params Argon2idParams
	// Legacy, when set, is consulted for digests that are not argon2id.
	Legacy *LegacySHA256
}

func NewArgon2idHasher(params Argon2idParams) *Argon2idHasher {
	return &Argon2idHasher{Params: params, Legacy: &LegacySHA256{Salt: LegacySalt}}
}

func (h *Argon2idHasher) Hash(pin string) (string, error) {
	salt := make([]byte, h.Params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating pin salt: %w", err)
	}
	return h.HashWithSalt(pin, salt), nil
}

// HashWithSalt is deterministic for a given salt and parameter set.
func (h *Argon2idHasher) HashWithSalt(pin string, salt []byte) string {
	p := h.Params
	key := argon2.IDKey([]byte(pin), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func (h *Argon2idHasher) Verify(pin, encoded string) (bool, bool, error) {
	if !strings.HasPrefix(encoded, "$argon2id$") {
		if h.Legacy == nil {
			return false, false, errMalformedDigest
		}
		ok, _, err := h.Legacy.Verify(pin, encoded)
		return ok, ok, err
	}

	params, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false, false, err
	}
	got := argon2.IDKey([]byte(pin), salt, params.Time, params.MemoryKiB, params.Parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(got, key) != 1 {
		return false, false, nil
	}
	weaker := params.Time < h.Params.Time || params.MemoryKiB < h.Params.MemoryKiB
	return true, weaker, nil
}

func decodeArgon2id(encoded string) (Argon2idParams, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return Argon2idParams{}, nil, nil, errMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2idParams{}, nil, nil, errMalformedDigest
	}

	var p Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Parallelism); err != nil {
		return Argon2idParams{}, nil, nil, errMalformedDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2idParams{}, nil, nil, errMalformedDigest
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Argon2idParams{}, nil, nil, errMalformedDigest
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

// LegacySalt is the global salt literal of digests written before argon2id.
const LegacySalt = "salt"

// LegacySHA256 is hex(sha256(salt + pin)). It is deterministic and shares one
// salt across all users, so it is kept only to verify old digests.
type LegacySHA256 struct {
	Salt string
}

func (h *LegacySHA256) Hash(pin string) (string, error) {
	return h.digest(pin), nil
}

func (h *LegacySHA256) digest(pin string) string {
	sum := sha256.Sum256([]byte(h.Salt + pin))
	return hex.EncodeToString(sum[:])
}

func (h *LegacySHA256) Verify(pin, encoded string) (bool, bool, error) {
	if len(encoded) != sha256.Size*2 {
		return false, false, errMalformedDigest
	}
	want := h.digest(pin)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(encoded))) == 1, false, nil
}
