package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"note-service/internal/model"
	"note-service/internal/quota"
)

// NoteStore provides tenant-scoped access to notes. Every query carries
// the tenant predicate; an id that exists under another tenant behaves
// exactly like a missing id.
type NoteStore struct {
	db *gorm.DB
}

// NewNoteStore creates a note store backed by the given database
func NewNoteStore(db *gorm.DB) *NoteStore {
	return &NoteStore{db: db}
}

// ListByTenant returns the tenant's notes, newest-created first
func (s *NoteStore) ListByTenant(ctx context.Context, tenantID uint) ([]model.Note, error) {
	notes := make([]model.Note, 0)
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// Create inserts a note for the tenant, enforcing the free-plan quota.
// The tenant row is locked for the duration of the transaction, so two
// concurrent creations against the same free tenant serialize and
// cannot both pass the count check.
func (s *NoteStore) Create(ctx context.Context, tenantID, userID uint, title, details string) (*model.Note, error) {
	note := &model.Note{
		Title:    title,
		Details:  details,
		TenantID: tenantID,
		UserID:   userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant model.Tenant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if tenant.Plan != model.PlanPro {
			var count int64
			if err := tx.Model(&model.Note{}).
				Where("tenant_id = ?", tenantID).
				Count(&count).Error; err != nil {
				return err
			}
			if !quota.CanCreate(tenant.Plan, count) {
				return ErrQuotaExceeded
			}
		}

		return tx.Create(note).Error
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// GetByID returns the note only if it belongs to the tenant
func (s *NoteStore) GetByID(ctx context.Context, tenantID, noteID uint) (*model.Note, error) {
	var note model.Note
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", noteID, tenantID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Update rewrites the note's title and details under the same
// tenant-filtered lookup as GetByID
func (s *NoteStore) Update(ctx context.Context, tenantID, noteID uint, title, details string) (*model.Note, error) {
	var note model.Note
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", noteID, tenantID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	note.Title = title
	note.Details = details
	if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes the note if it belongs to the tenant
func (s *NoteStore) Delete(ctx context.Context, tenantID, noteID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", noteID, tenantID).
		Delete(&model.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
