package services

import (
	"errors"
	"strings"

	"github.com/wasmhost/wasm/validators"
	"gorm.io/gorm"
)

// FormatErrorForUser converts technical errors to user-friendly messages
// This should only be called at the command level
func FormatErrorForUser(err error) string {
	if err == nil {
		return ""
	}

	if verr, ok := validators.IsValidationError(err); ok {
		return verr.Error()
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "unique constraint") && strings.Contains(errStr, "domain"):
		return "an app with this domain already exists"
	case strings.Contains(errStr, "unique constraint") && strings.Contains(errStr, "name"):
		return "an app with this name already exists"
	case strings.Contains(errStr, "unique constraint"):
		return "this entry already exists"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "app not found"
	case strings.Contains(errStr, "authentication required"),
		strings.Contains(errStr, "authorization failed"),
		strings.Contains(errStr, "unable to authenticate"):
		return "git authentication failed, check --token or --ssh-key"
	case strings.Contains(errStr, "repository not found"):
		return "git repository not found"
	case strings.Contains(errStr, "reference not found"):
		return "git branch not found"
	case strings.Contains(errStr, "permission denied"):
		return "permission denied, try running with sudo"
	case strings.Contains(errStr, "deadline exceeded"), strings.Contains(errStr, "timeout"):
		return "operation timed out"
	case strings.Contains(errStr, "database is locked"):
		return "the app registry is busy, try again"
	default:
		return err.Error()
	}
}

// IsNotFound reports whether err means a lookup matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
