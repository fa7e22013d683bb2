package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Migration is a data fix applied once, in ID order, before AutoMigrate.
type Migration struct {
	ID   int
	Name string
	Up   func(*gorm.DB) error
}

var allMigrations = []Migration{
	{
		ID:   1,
		Name: "0001_normalize_app_domains",
		Up:   migration0001NormalizeAppDomains,
	},
}

// AllModels returns all the models that need to be migrated
func AllModels() []any {
	return []any{
		&MigrationModel{},
		&AppModel{},
	}
}

// AutoMigrateAll brings the schema up to date.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return RunMigrations(db, len(allMigrations))
}

// RunMigrations runs all migrations up to and including targetID.
// A targetID of 0 or less runs everything.
func RunMigrations(db *gorm.DB, targetID int) error {
	if targetID <= 0 {
		targetID = len(allMigrations)
	}

	for _, migration := range allMigrations {
		if migration.ID > targetID {
			break
		}

		applied, err := migrationApplied(db, migration.Name)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration.Name, err)
		}
		if applied {
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return recordMigration(tx, migration.Name)
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
	}

	return nil
}

func migrationApplied(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&MigrationModel{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordMigration(db *gorm.DB, name string) error {
	return db.Create(&MigrationModel{Name: name, AppliedAt: time.Now()}).Error
}

// migration0001NormalizeAppDomains lowercases and trims domains written before
// the registry normalized them on insert.
func migration0001NormalizeAppDomains(db *gorm.DB) error {
	return db.Exec("UPDATE apps SET domain = LOWER(TRIM(domain)) WHERE domain <> LOWER(TRIM(domain))").Error
}
