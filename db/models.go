// Package db provides database models and utilities for the app registry.
package db

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppModel is a registered web application.
type AppModel struct {
	BaseModel
	Name               string  `gorm:"not null;unique;check:name <> ''"`
	Domain             string  `gorm:"not null;unique;check:domain <> ''"`
	Port               int     `gorm:"not null;index"`
	AppType            string  `gorm:"not null;check:app_type <> ''"`
	SourceKind         string  `gorm:"not null;check:source_kind <> ''"` // git, local
	SourceURL          *string // set for git sources
	SourcePath         *string // set for local sources
	GitBranch          *string
	GitAuthType        *string `gorm:"type:varchar(20)"` // "http", "ssh"
	GitAuthCredentials *string `gorm:"type:text"`        // Encrypted JSON blob containing all auth data
	Dir                string  `gorm:"not null;check:dir <> ''"`
	Status             string  `gorm:"not null;check:status <> ''"` // pending, fetched, failed
	LastError          *string `gorm:"type:text"`
	LastCommit         *string
}

func (AppModel) TableName() string {
	return "apps"
}

type MigrationModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;unique"`
	AppliedAt time.Time
}

func (MigrationModel) TableName() string {
	return "migrations"
}
