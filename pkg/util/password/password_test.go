package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
func testHasher() *Hasher {
	return NewHasher(Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, MinLength: 8, GeneratedLength: 12})
}

func TestHashFormat(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("correcthorsebatterystaple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="))
	assert.Len(t, strings.Split(hash, "$"), 6)
	assert.Contains(t, hash, "m=1024,t=1,p=1")
}

func TestVerify(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("mysecretpassword")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{"correct password", hash, "mysecretpassword", nil},
		{"wrong password", hash, "wrongpassword", ErrMismatch},
		{"empty password", hash, "", ErrMismatch},
		{"garbage hash", "notahash", "mysecretpassword", ErrInvalidHash},
		{"wrong algorithm", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA", "x", ErrInvalidHash},
		{"wrong version", "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$aGFzaA", "x", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify(tt.hash, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	h := testHasher()
	a, err := h.Hash("samepassword")
	require.NoError(t, err)
	b, err := h.Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NoError(t, h.Verify(a, "samepassword"))
	assert.NoError(t, h.Verify(b, "samepassword"))
}

func TestVerifyAcrossParameterChanges(t *testing.T) {
	old := testHasher()
	hash, err := old.Hash("secret-pass")
	require.NoError(t, err)

	newer := NewHasher(Config{MemoryKiB: 2048, Iterations: 2, Parallelism: 1})
	assert.NoError(t, newer.Verify(hash, "secret-pass"))
	assert.True(t, newer.NeedsRehash(hash))
	assert.False(t, old.NeedsRehash(hash))
	assert.True(t, newer.NeedsRehash("broken"))
}

func TestCheck(t *testing.T) {
	h := testHasher()

	assert.NoError(t, h.Check("12345678"))
	err := h.Check("1234567")
	assert.True(t, errors.Is(err, ErrTooShort))
	// runes, not bytes
	assert.Error(t, h.Check("ééééééé"))
}

func TestTemporary(t *testing.T) {
	h := testHasher()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := h.Temporary()
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		assert.False(t, seen[pw])
		seen[pw] = true
	}
}

func TestLowMemoryMode(t *testing.T) {
	p := Config{MemoryKiB: 64 * 1024, Iterations: 3, LowMemoryMode: true}.params()
	assert.Equal(t, uint32(32*1024), p.Memory)
	assert.Equal(t, uint32(4), p.Iterations)
	assert.Equal(t, uint8(2), p.Parallelism)
}
