package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wasmhost/wasm/validators"
	"gorm.io/gorm"
)

func TestFormatErrorForUser(t *testing.T) {
	_, verr := validators.ValidateDomain("http://example.com")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation passes through", err: fmt.Errorf("plan: %w", verr), want: verr.Error()},
		{name: "duplicate domain", err: errors.New("UNIQUE constraint failed: apps.domain"), want: "an app with this domain already exists"},
		{name: "duplicate name", err: errors.New("UNIQUE constraint failed: apps.name"), want: "an app with this name already exists"},
		{name: "not found", err: fmt.Errorf("app %q: %w", "x", gorm.ErrRecordNotFound), want: "app not found"},
		{name: "git auth", err: errors.New("failed to clone repository: authentication required"), want: "git authentication failed, check --token or --ssh-key"},
		{name: "git missing repo", err: errors.New("repository not found"), want: "git repository not found"},
		{name: "permission", err: errors.New("mkdir /var/www/apps: permission denied"), want: "permission denied, try running with sudo"},
		{name: "timeout", err: errors.New("context deadline exceeded"), want: "operation timed out"},
		{name: "other", err: errors.New("domain example.com is already registered to app example-com"), want: "domain example.com is already registered to app example-com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatErrorForUser(tt.err))
		})
	}
}
