package github

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	githublib "github.com/google/go-github/v70/github"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func TestEncryptSecretSealsForTheRepoKey(t *testing.T) {
	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	repoKey := &githublib.PublicKey{
		KeyID: githublib.String("key-1"),
		Key:   githublib.String(base64.StdEncoding.EncodeToString(publicKey[:])),
	}

	sealed, err := EncryptSecret(repoKey, "s3cret-value")
	require.NoError(t, err)

	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)

	opened, ok := box.OpenAnonymous(nil, ciphertext, publicKey, privateKey)
	require.True(t, ok)
	require.Equal(t, "s3cret-value", string(opened))
}

func TestEncryptSecretRandomizesTheSeal(t *testing.T) {
	publicKey, _, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	repoKey := &githublib.PublicKey{
		KeyID: githublib.String("key-1"),
		Key:   githublib.String(base64.StdEncoding.EncodeToString(publicKey[:])),
	}

	first, err := EncryptSecret(repoKey, "value")
	require.NoError(t, err)
	second, err := EncryptSecret(repoKey, "value")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestEncryptSecretRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"not base64", "%%%"},
		{"wrong length", base64.StdEncoding.EncodeToString([]byte("short"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncryptSecret(&githublib.PublicKey{Key: githublib.String(tt.key)}, "value")
			require.Error(t, err)
		})
	}
}
