package repository

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/wasmhost/wasm/db"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/encryption"
	"gorm.io/gorm"
)

// AppRepository persists apps. Lookups that match nothing return
// gorm.ErrRecordNotFound.
type AppRepository interface {
	FindByID(id uuid.UUID) (*domain.App, error)
	FindByName(name string) (*domain.App, error)
	FindByDomain(domainName string) (*domain.App, error)
	List() ([]*domain.App, error)
	UsedPorts() ([]int, error)
	Create(app *domain.App) (*domain.App, error)
	Update(app *domain.App) error
	Delete(id uuid.UUID) error
}

type appRepository struct {
	db     *gorm.DB
	mapper *AppMapper
}

func NewAppRepository(db *gorm.DB, encryptionSvc *encryption.EncryptionService) AppRepository {
	return &appRepository{
		db:     db,
		mapper: NewAppMapper(encryptionSvc),
	}
}

func (r *appRepository) FindByID(id uuid.UUID) (*domain.App, error) {
	var m db.AppModel
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *appRepository) FindByName(name string) (*domain.App, error) {
	var m db.AppModel
	if err := r.db.Where("name = ?", name).First(&m).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *appRepository) FindByDomain(domainName string) (*domain.App, error) {
	var m db.AppModel
	if err := r.db.Where("domain = ?", domainName).First(&m).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *appRepository) List() ([]*domain.App, error) {
	var models []db.AppModel
	if err := r.db.Order("name").Find(&models).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "list_apps",
			"error", err)
		return nil, err
	}

	apps := make([]*domain.App, len(models))
	for i := range models {
		apps[i] = r.mapper.ToDomain(&models[i])
	}
	return apps, nil
}

// UsedPorts returns the distinct ports claimed by apps that own a listener.
func (r *appRepository) UsedPorts() ([]int, error) {
	var ports []int
	err := r.db.Model(&db.AppModel{}).
		Where("app_type <> ?", domain.AppTypeStatic.String()).
		Distinct().
		Order("port").
		Pluck("port", &ports).Error
	if err != nil {
		return nil, err
	}
	return ports, nil
}

func (r *appRepository) Create(app *domain.App) (*domain.App, error) {
	m, err := r.mapper.ToModel(app)
	if err != nil {
		return nil, err
	}

	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_app",
			"app_id", app.ID,
			"app_name", app.Name,
			"error", err)
		return nil, err
	}

	created := r.mapper.ToDomain(m)
	// Keep credentials even when the mapper has no key to read them back.
	created.GitAuth = app.GitAuth
	return created, nil
}

func (r *appRepository) Update(app *domain.App) error {
	m, err := r.mapper.ToModel(app)
	if err != nil {
		return err
	}

	// Select("*") writes zero values too, so cleared fields actually clear.
	return r.db.Model(&db.AppModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Omit("created_at").
		Updates(m).
		Error
}

func (r *appRepository) Delete(id uuid.UUID) error {
	err := r.db.Delete(&db.AppModel{}, "id = ?", id).Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "delete_app",
			"app_id", id,
			"error", err)
	}
	return err
}
