package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDatabase(DBConfig{Path: MemoryPath, LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

func TestAutoMigrateAll_Idempotent(t *testing.T) {
	db := newMemoryDB(t)

	require.NoError(t, AutoMigrateAll(db))
	require.NoError(t, AutoMigrateAll(db))

	var count int64
	require.NoError(t, db.Model(&MigrationModel{}).Count(&count).Error)
	assert.Equal(t, int64(len(allMigrations)), count)
}

func TestMigration0001NormalizeAppDomains(t *testing.T) {
	db := newMemoryDB(t)

	mixed := AppModel{
		BaseModel:  BaseModel{ID: uuid.New()},
		Name:       "legacy",
		Domain:     " Legacy.Example.COM ",
		Port:       3000,
		AppType:    "nodejs",
		SourceKind: "local",
		Dir:        "/var/www/apps/legacy",
		Status:     "fetched",
	}
	require.NoError(t, db.Create(&mixed).Error)

	require.NoError(t, RunMigrations(db, 1))

	var got AppModel
	require.NoError(t, db.First(&got, "id = ?", mixed.ID).Error)
	assert.Equal(t, "legacy.example.com", got.Domain)

	applied, err := migrationApplied(db, "0001_normalize_app_domains")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestAppModel_Constraints(t *testing.T) {
	db := newMemoryDB(t)

	base := func(name, domain string) *AppModel {
		return &AppModel{
			BaseModel:  BaseModel{ID: uuid.New()},
			Name:       name,
			Domain:     domain,
			Port:       3000,
			AppType:    "nodejs",
			SourceKind: "git",
			Dir:        "/var/www/apps/" + name,
			Status:     "pending",
		}
	}

	require.NoError(t, db.Create(base("one", "one.example.com")).Error)
	assert.Error(t, db.Create(base("one", "other.example.com")).Error, "duplicate name")
	assert.Error(t, db.Create(base("two", "one.example.com")).Error, "duplicate domain")
	assert.Error(t, db.Create(base("", "three.example.com")).Error, "empty name")
}
