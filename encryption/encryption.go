// Package encryption protects git credentials stored in the app registry.
package encryption

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/wasmhost/wasm/domain"
)

// Credentials never expire on their own.
const tokenTTL = 100 * 365 * 24 * time.Hour

// EncryptionService handles encryption/decryption of sensitive data
type EncryptionService struct {
	key *fernet.Key
}

// NewEncryptionService creates a new encryption service with the provided key
func NewEncryptionService(keyString string) (*EncryptionService, error) {
	if keyString == "" {
		return nil, fmt.Errorf("encryption key cannot be empty")
	}

	key, err := fernet.DecodeKey(keyString)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	return &EncryptionService{key: key}, nil
}

// GenerateKey returns a new base64-encoded fernet key.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key.Encode(), nil
}

// Encrypt encrypts plaintext and returns a base64-encoded token
func (e *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	token, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

// Decrypt decrypts a base64-encoded token and returns plaintext
func (e *EncryptionService) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	tokenBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid token format: %w", err)
	}

	plaintext := fernet.VerifyAndDecrypt(tokenBytes, tokenTTL, []*fernet.Key{e.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt token: invalid or expired")
	}

	return string(plaintext), nil
}

type gitAuthCredentials struct {
	HTTP *domain.GitHTTPAuthConfig `json:"http,omitempty"`
	SSH  *domain.GitSSHAuthConfig  `json:"ssh,omitempty"`
}

// EncryptGitAuthConfig returns the auth type and the encrypted credentials blob.
// Both are empty when auth carries nothing.
func (e *EncryptionService) EncryptGitAuthConfig(auth *domain.GitAuthConfig) (string, string, error) {
	authType := auth.Type()
	if authType == "" {
		return "", "", nil
	}

	data, err := json.Marshal(&gitAuthCredentials{HTTP: auth.HTTPAuth, SSH: auth.SSHAuth})
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize credentials: %w", err)
	}

	encrypted, err := e.Encrypt(string(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	return authType.String(), encrypted, nil
}

// DecryptGitAuthConfig reverses EncryptGitAuthConfig.
func (e *EncryptionService) DecryptGitAuthConfig(authType, encrypted string) (*domain.GitAuthConfig, error) {
	if authType == "" || encrypted == "" {
		return nil, nil
	}

	parsed, err := domain.ParseGitAuthType(authType)
	if err != nil {
		return nil, err
	}

	data, err := e.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds gitAuthCredentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to deserialize credentials: %w", err)
	}

	auth := &domain.GitAuthConfig{}
	switch parsed {
	case domain.GitAuthTypeHTTP:
		auth.HTTPAuth = creds.HTTP
	case domain.GitAuthTypeSSH:
		auth.SSHAuth = creds.SSH
	}
	return auth, nil
}
