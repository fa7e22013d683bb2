// Package repository provides the data access layer for registered apps.
package repository

import (
	"fmt"
	"log/slog"

	"github.com/wasmhost/wasm/db"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/encryption"
	"github.com/wasmhost/wasm/validators"
)

type AppMapper struct {
	encryption *encryption.EncryptionService
}

// NewAppMapper returns a mapper. Without an encryption service git
// credentials are neither stored nor loaded.
func NewAppMapper(encryptionSvc *encryption.EncryptionService) *AppMapper {
	return &AppMapper{encryption: encryptionSvc}
}

func (m *AppMapper) ToDomain(a *db.AppModel) *domain.App {
	status, err := domain.ParseAppStatus(a.Status)
	if err != nil {
		status = domain.AppStatusUnknown
	}

	// Unknown types survive a load so the app can still be listed and removed.
	appType := domain.AppType(a.AppType)

	source := validators.SourceDescriptor{
		Kind: validators.SourceKind(a.SourceKind),
		URL:  deref(a.SourceURL),
		Path: deref(a.SourcePath),
	}

	var gitAuth *domain.GitAuthConfig
	if a.GitAuthType != nil && a.GitAuthCredentials != nil && m.encryption != nil {
		gitAuth, err = m.encryption.DecryptGitAuthConfig(*a.GitAuthType, *a.GitAuthCredentials)
		if err != nil {
			// The app stays usable for public sources; a changed key is the usual cause.
			slog.Error("Failed to decrypt Git authentication",
				"layer", "repository",
				"app_id", a.ID,
				"app_name", a.Name,
				"auth_type", *a.GitAuthType,
				"error", err)
			gitAuth = nil
		}
	}

	return &domain.App{
		ID:         a.ID,
		Name:       a.Name,
		Domain:     a.Domain,
		Port:       a.Port,
		Type:       appType,
		Source:     source,
		GitBranch:  deref(a.GitBranch),
		GitAuth:    gitAuth,
		Dir:        a.Dir,
		Status:     status,
		LastError:  deref(a.LastError),
		LastCommit: deref(a.LastCommit),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (m *AppMapper) ToModel(a *domain.App) (*db.AppModel, error) {
	model := &db.AppModel{
		BaseModel: db.BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		Name:       a.Name,
		Domain:     a.Domain,
		Port:       a.Port,
		AppType:    a.Type.String(),
		SourceKind: a.Source.Kind.String(),
		SourceURL:  optional(a.Source.URL),
		SourcePath: optional(a.Source.Path),
		GitBranch:  optional(a.GitBranch),
		Dir:        a.Dir,
		Status:     a.Status.String(),
		LastError:  optional(a.LastError),
		LastCommit: optional(a.LastCommit),
	}

	if a.GitAuth.Type() == "" {
		return model, nil
	}
	if m.encryption == nil {
		return nil, fmt.Errorf("cannot store git credentials for %s: no encryption key configured", a.Name)
	}

	authType, credentials, err := m.encryption.EncryptGitAuthConfig(a.GitAuth)
	if err != nil {
		return nil, err
	}
	model.GitAuthType = &authType
	model.GitAuthCredentials = &credentials

	return model, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
