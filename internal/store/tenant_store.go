package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"note-service/internal/model"
)

// TenantStore provides access to tenants
type TenantStore struct {
	db *gorm.DB
}

// NewTenantStore creates a tenant store backed by the given database
func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

// FindByID returns the tenant with the given id
func (s *TenantStore) FindByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindBySlug returns the tenant with the given slug
func (s *TenantStore) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// Upgrade sets the tenant's plan to pro and returns the updated tenant.
// Upgrading an already-pro tenant is a no-op success.
func (s *TenantStore) Upgrade(ctx context.Context, id uint) (*model.Tenant, error) {
	tenant, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.Plan == model.PlanPro {
		return tenant, nil
	}

	tenant.Plan = model.PlanPro
	if err := s.db.WithContext(ctx).Model(tenant).Update("plan", model.PlanPro).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// Create inserts a new tenant
func (s *TenantStore) Create(ctx context.Context, tenant *model.Tenant) error {
	return s.db.WithContext(ctx).Create(tenant).Error
}
