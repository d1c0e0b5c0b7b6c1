package store

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"note-service/internal/model"
)

// SeedDemoData provisions two demo tenants with one admin and one
// member each, all with password "password". It is a no-op when a
// demo tenant already exists, so restarts do not duplicate data.
func SeedDemoData(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Tenant{}).
		Where("slug IN ?", []string{"acme", "globex"}).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acme := model.Tenant{Name: "Acme Inc", Slug: "acme", Plan: model.PlanFree}
		globex := model.Tenant{Name: "Globex Corp", Slug: "globex", Plan: model.PlanPro}
		if err := tx.Create(&acme).Error; err != nil {
			return err
		}
		if err := tx.Create(&globex).Error; err != nil {
			return err
		}

		users := []model.User{
			{Email: "admin@acme.test", Password: string(hash), Role: model.RoleAdmin, TenantID: acme.ID},
			{Email: "member@acme.test", Password: string(hash), Role: model.RoleMember, TenantID: acme.ID},
			{Email: "admin@globex.test", Password: string(hash), Role: model.RoleAdmin, TenantID: globex.ID},
		}
		return tx.Create(&users).Error
	})
}
