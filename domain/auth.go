package domain

import "fmt"

// GitAuthConfig holds Git authentication configuration for an app source
type GitAuthConfig struct {
	HTTPAuth *GitHTTPAuthConfig
	SSHAuth  *GitSSHAuthConfig
}

// GitHTTPAuthConfig for HTTP basic authentication (GitHub tokens, etc.)
type GitHTTPAuthConfig struct {
	Username string `json:"username"` // "token" for GitHub
	Password string `json:"password"`
}

// GitSSHAuthConfig for passwordless SSH key authentication
type GitSSHAuthConfig struct {
	PrivateKey string `json:"private_key"` // PEM-encoded
	User       string `json:"user"`        // default: "git"
}

// GitAuthType represents the Git authentication method type
type GitAuthType string

const (
	GitAuthTypeHTTP GitAuthType = "http"
	GitAuthTypeSSH  GitAuthType = "ssh"
)

func (a GitAuthType) String() string {
	return string(a)
}

func (a GitAuthType) IsValid() bool {
	switch a {
	case GitAuthTypeHTTP, GitAuthTypeSSH:
		return true
	default:
		return false
	}
}

// ParseGitAuthType parses a string into a GitAuthType
func ParseGitAuthType(s string) (GitAuthType, error) {
	authType := GitAuthType(s)
	if !authType.IsValid() {
		return "", fmt.Errorf("invalid auth type: %s", s)
	}
	return authType, nil
}

// Type reports which method is configured, or "" when none is.
func (c *GitAuthConfig) Type() GitAuthType {
	switch {
	case c == nil:
		return ""
	case c.HTTPAuth != nil:
		return GitAuthTypeHTTP
	case c.SSHAuth != nil:
		return GitAuthTypeSSH
	default:
		return ""
	}
}
