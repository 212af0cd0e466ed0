package pin

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the test suite fast
func testParams() Argon2idParams {
	return Argon2idParams{Time: 1, MemoryKiB: 64, Parallelism: 1, SaltLen: 16, KeyLen: 32}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		pin string
		ok  bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"", false},
		{"12a456", false},
		{" 23456", false},
		{"١٢٣٤٥٦", false}, // non-ASCII digits
		{"12345\n", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.pin), func(t *testing.T) {
			err := Validate(tt.pin)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestLegacySHA256_KnownDigest(t *testing.T) {
	h := &LegacySHA256{Salt: LegacySalt}

	got, err := h.Hash("123456")
	require.NoError(t, err)
	// sha256("salt123456")
	assert.Equal(t, "9898410d7f5045bc673db80c1a49b74f088fd7440037d8ce25c7d272a505bce5", got)
	assert.Len(t, got, 64)
}

func TestLegacySHA256_Deterministic(t *testing.T) {
	h := &LegacySHA256{Salt: LegacySalt}
	for _, p := range []string{"000000", "123456", "999999"} {
		a, _ := h.Hash(p)
		b, _ := h.Hash(p)
		assert.Equal(t, a, b)
	}
}

func TestLegacySHA256_DistinctPins(t *testing.T) {
	h := &LegacySHA256{Salt: LegacySalt}
	seen := make(map[string]string)
	for i := 0; i < 2000; i++ {
		p := fmt.Sprintf("%06d", i*457%1000000)
		d, _ := h.Hash(p)
		if prev, dup := seen[d]; dup && prev != p {
			t.Fatalf("digest collision between %s and %s", prev, p)
		}
		seen[d] = p
	}
}

func TestLegacySHA256_Verify(t *testing.T) {
	h := &LegacySHA256{Salt: LegacySalt}
	d, _ := h.Hash("123456")

	ok, _, err := h.Verify("123456", d)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = h.Verify("123456", strings.ToUpper(d))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = h.Verify("000000", d)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = h.Verify("123456", "short")
	assert.Error(t, err)
}

func TestArgon2id_RoundTrip(t *testing.T) {
	h := NewArgon2idHasher(testParams())

	d, err := h.Hash("123456")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d, "$argon2id$v=19$m=64,t=1,p=1$"), d)

	ok, rehash, err := h.Verify("123456", d)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _, err = h.Verify("000000", d)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2id_SaltPerDigest(t *testing.T) {
	h := NewArgon2idHasher(testParams())

	a, err := h.Hash("123456")
	require.NoError(t, err)
	b, err := h.Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2id_DeterministicForSalt(t *testing.T) {
	h := NewArgon2idHasher(testParams())
	salt := []byte("0123456789abcdef")

	assert.Equal(t, h.HashWithSalt("123456", salt), h.HashWithSalt("123456", salt))
	assert.NotEqual(t, h.HashWithSalt("123456", salt), h.HashWithSalt("123457", salt))
}

func TestArgon2id_LegacyDigestNeedsRehash(t *testing.T) {
	h := NewArgon2idHasher(testParams())
	legacy, _ := (&LegacySHA256{Salt: LegacySalt}).Hash("123456")

	ok, rehash, err := h.Verify("123456", legacy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, rehash, err = h.Verify("654321", legacy)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, rehash)
}

func TestArgon2id_WeakerParamsNeedRehash(t *testing.T) {
	weak := NewArgon2idHasher(testParams())
	d, err := weak.Hash("123456")
	require.NoError(t, err)

	stronger := testParams()
	stronger.Time = 2
	ok, rehash, err := NewArgon2idHasher(stronger).Verify("123456", d)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rehash)
}

func TestArgon2id_MalformedDigest(t *testing.T) {
	h := NewArgon2idHasher(testParams())
	for _, d := range []string{
		"$argon2id$v=19$m=64,t=1,p=1$onlysalt",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5",
	} {
		_, _, err := h.Verify("123456", d)
		assert.Error(t, err, d)
	}

	h.Legacy = nil
	_, _, err := h.Verify("123456", "9898410d7f5045bc673db80c1a49b74f088fd7440037d8ce25c7d272a505bce5")
	assert.Error(t, err)
}
