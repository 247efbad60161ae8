package common

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsername(t *testing.T) {
	for i := 0; i < 200; i++ {
		username, err := GenerateUsername()
		require.NoError(t, err)
		assert.Len(t, username, UsernameLength)
		assert.Regexp(t, "^[a-z][a-z0-9]{7}$", username)
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "7bcdefgh", want: "ubcdefgh"},
		{raw: "ABCdef12", want: "abcdef12"},
		{raw: "0ABCDEFG", want: "uabcdefg"},
		{raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUsername(tt.raw))
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	pass, err := GeneratePassword()
	require.NoError(t, err)
	assert.Len(t, pass, PasswordLength)
	for _, r := range pass {
		assert.True(t, unicode.IsLetter(r) || unicode.IsDigit(r), "unexpected rune %q", r)
	}
}

func TestNormalizeDomain(t *testing.T) {
	domain, err := NormalizeDomain("  Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)

	_, err = NormalizeDomain("")
	assert.EqualError(t, err, "domain is required")

	for _, bad := range []string{"localhost", "-bad.com", "bad_.com", "exa mple.com"} {
		_, err = NormalizeDomain(bad)
		assert.Error(t, err, bad)
	}
}
