package password

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestHashPinAndVerifyPin(t *testing.T) {
	hash, err := HashPin("1234")
	require.NoError(t, err)

	assert.NoError(t, VerifyPin(hash, "1234"))
	assert.Error(t, VerifyPin(hash, "4321"))
}

func TestHashPin_SelfDescribingIterations(t *testing.T) {
	hash, err := HashPin("0000")
	require.NoError(t, err)

	parts := strings.Split(hash, ".")
	require.Len(t, parts, 3)
	assert.Equal(t, "100000", parts[0])

	// старый хэш с меньшей стоимостью продолжает проверяться
	legacy := "1000." + parts[1] + "." + parts[2]
	assert.Error(t, VerifyPin(legacy, "0000"))

	salt := parts[1]
	key := pbkdf2Key("0000", mustDecodeHex(t, salt), 1000, keyLength)
	legacyValid := "1000." + salt + "." + hex.EncodeToString(key)
	assert.NoError(t, VerifyPin(legacyValid, "0000"))
}

func TestVerifyPin_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "two parts", hash: "100000.deadbeef"},
		{name: "non-numeric iterations", hash: "abc.deadbeef.deadbeef"},
		{name: "negative iterations", hash: "-1.deadbeef.deadbeef"},
		{name: "bad salt hex", hash: "100000.zz.deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, VerifyPin(tt.hash, "1234"))
		})
	}
}

func TestValidPin(t *testing.T) {
	tests := []struct {
		pin  string
		want bool
	}{
		{pin: "1234", want: true},
		{pin: "0000", want: true},
		{pin: "123", want: false},
		{pin: "12345", want: false},
		{pin: "12a4", want: false},
		{pin: "", want: false},
		{pin: "12 4", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPin(tt.pin), "pin %q", tt.pin)
	}
}
