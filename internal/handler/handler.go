package handler

import (
	"context"

	"github.com/go-playground/validator/v10"

	"note-service/internal/model"
)

// UserFinder is the slice of the user store the handlers consume
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// TenantDirectory is the slice of the tenant store the handlers consume
type TenantDirectory interface {
	FindBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	Upgrade(ctx context.Context, id uint) (*model.Tenant, error)
}

// NoteRepository is the tenant-scoped note storage the handlers consume
type NoteRepository interface {
	ListByTenant(ctx context.Context, tenantID uint) ([]model.Note, error)
	Create(ctx context.Context, tenantID, userID uint, title, details string) (*model.Note, error)
	GetByID(ctx context.Context, tenantID, noteID uint) (*model.Note, error)
	Update(ctx context.Context, tenantID, noteID uint, title, details string) (*model.Note, error)
	Delete(ctx context.Context, tenantID, noteID uint) error
}

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator
func NewValidator() *Validator {
	return &Validator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}
