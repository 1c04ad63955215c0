package cryptox

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T, fill byte) *Guard {
	t.Helper()
	g, err := NewGuard(bytes.Repeat([]byte{fill}, KeySize))
	require.NoError(t, err)
	return g
}

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveMasterKey(password, []byte("salt-1"))
	key2 := DeriveMasterKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestNewGuard_KeyLength(t *testing.T) {
	_, err := NewGuard(make([]byte, 16))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCrypto)
}

func TestGuard_RoundTrip(t *testing.T) {
	g := newTestGuard(t, 7)

	for _, in := range []string{"x", "221B Baker Street", "+1 555 0100", "юникод ✓"} {
		enc, err := g.Encrypt(in)
		require.NoError(t, err)
		assert.NotEqual(t, in, enc)

		out, err := g.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestGuard_Layout(t *testing.T) {
	g := newTestGuard(t, 1)

	enc, err := g.Encrypt("abc")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	assert.Len(t, raw, nonceSize+3+tagSize)
}

func TestGuard_FreshNonce(t *testing.T) {
	g := newTestGuard(t, 2)

	a, err := g.Encrypt("same")
	require.NoError(t, err)
	b, err := g.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGuard_Empty(t *testing.T) {
	g := newTestGuard(t, 3)

	enc, err := g.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", enc)

	dec, err := g.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", dec)
}

func TestGuard_DecryptFailures(t *testing.T) {
	g := newTestGuard(t, 4)
	other := newTestGuard(t, 5)

	foreign, err := other.Encrypt("secret")
	require.NoError(t, err)

	good, err := g.Encrypt("secret")
	require.NoError(t, err)
	raw, _ := base64.StdEncoding.DecodeString(good)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"plaintext", "221B Baker Street"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"foreign key", foreign},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Decrypt(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrDecryption)
		})
	}
}

func TestGuard_DecryptWrappedLines(t *testing.T) {
	g := newTestGuard(t, 6)

	enc, err := g.Encrypt("a value long enough to be wrapped by a line encoder")
	require.NoError(t, err)

	wrapped := enc[:20] + "\n" + enc[20:] + "\n"
	out, err := g.Decrypt(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "a value long enough to be wrapped by a line encoder", out)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGuard_EncryptNonceFailure(t *testing.T) {
	old := randReader
	randReader = failingReader{}
	defer func() { randReader = old }()

	g := newTestGuard(t, 8)
	_, err := g.Encrypt("x")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCrypto)
}
