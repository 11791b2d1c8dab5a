package security

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestHashRoundTrip(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := a.VerifyPasswd("correct horse battery staple", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.VerifyPasswd("wrong password", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyUsesEmbeddedParams(t *testing.T) {
	// Hash under one cost, verify under another: the PHC string wins
	viper.Set("security.argon_memory", 32*1024)
	viper.Set("security.argon_iterations", 2)
	t.Cleanup(func() {
		viper.Set("security.argon_memory", 0)
		viper.Set("security.argon_iterations", 0)
	})

	encoded, err := New().GenerateFromPassword("s3cret")
	require.NoError(t, err)
	require.Contains(t, encoded, "m=32768,t=2")

	viper.Set("security.argon_memory", 64*1024)
	viper.Set("security.argon_iterations", 3)

	ok, err := New().VerifyPasswd("s3cret", encoded)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := New().VerifyPasswd("anything", "not-a-phc-string")
	require.Error(t, err)
}
