package github

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	githublib "github.com/google/go-github/v70/github"
	"golang.org/x/crypto/nacl/box"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// GetRepoPublicKey fetches the actions public key used to encrypt secrets.
func (client *Client) GetRepoPublicKey(ctx context.Context, owner, repo string) (*githublib.PublicKey, error) {
	var key *githublib.PublicKey
	err := RetryableOperation(ctx, func() error {
		var err error
		key, _, err = client.GetInner().Actions.GetRepoPublicKey(ctx, owner, repo)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("repository %s/%s: %w", owner, repo, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get public key of %s/%s: %w", owner, repo, err)
	}
	return key, nil
}

// EncryptSecret seals value with the repository public key using a libsodium
// anonymous sealed box, the format the secrets API requires.
func EncryptSecret(publicKey *githublib.PublicKey, value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(publicKey.GetKey())
	if err != nil {
		return "", fmt.Errorf("failed to decode repository public key: %w", err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("repository public key has %d bytes, expected 32", len(decoded))
	}

	var recipientKey [32]byte
	copy(recipientKey[:], decoded)

	sealed, err := box.SealAnonymous(nil, []byte(value), &recipientKey, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// PutRepoSecret creates or updates an actions secret on the repository.
func (client *Client) PutRepoSecret(ctx context.Context, owner, repo, name, encryptedValue, keyID string) error {
	logger.Debug("Updating repository secret", "owner", owner, "repo", repo, "secret", name)

	err := RetryableOperation(ctx, func() error {
		_, err := client.GetInner().Actions.CreateOrUpdateRepoSecret(ctx, owner, repo, &githublib.EncryptedSecret{
			Name:           name,
			KeyID:          keyID,
			EncryptedValue: encryptedValue,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update secret %s on %s/%s: %w", name, owner, repo, err)
	}
	return nil
}
