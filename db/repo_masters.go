package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"gin_sqlite_equip_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category / Location master data. Assets reference masters two ways at
// once: a denormalized name column and a resolved id column. Rename cascades
// over the name column, the delete guard counts it, and get-or-create keeps
// the id column populated.

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := r.DB.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&cs).Error
	return cs, err
}

func (r *Repo) ListLocations(ctx context.Context) ([]models.Location, error) {
	var ls []models.Location
	err := r.DB.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&ls).Error
	return ls, err
}

func (r *Repo) CreateCategory(ctx context.Context, name string, sortOrder int) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	var out *models.Category
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Category{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrNameTaken
		}
		now := time.Now().UTC()
		c := &models.Category{ID: uuid.NewString(), Name: name, SortOrder: sortOrder, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateLocation(ctx context.Context, name string, sortOrder int) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	var out *models.Location
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Location{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrNameTaken
		}
		now := time.Now().UTC()
		l := &models.Location{ID: uuid.NewString(), Name: name, SortOrder: sortOrder, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenameCategory renames the master and, with cascade, rewrites the
// denormalized name on every asset that carried the old one. Rename and
// cascade share one transaction.
func (r *Repo) RenameCategory(ctx context.Context, categoryID, newName string, cascadeAssets bool) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrBlankName
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var dup int64
		if err := tx.Model(&models.Category{}).
			Where("name = ? AND id <> ?", newName, categoryID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrNameTaken
		}

		oldName := c.Name
		now := time.Now().UTC()
		if err := tx.Model(&models.Category{}).
			Where("id = ?", categoryID).
			Updates(map[string]any{"name": newName, "updated_at": now}).Error; err != nil {
			return err
		}

		if cascadeAssets && oldName != newName {
			if err := tx.Model(&models.Asset{}).
				Where("category = ?", oldName).
				Updates(map[string]any{"category": newName, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) RenameLocation(ctx context.Context, locationID, newName string, cascadeAssets bool) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrBlankName
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Location
		if err := tx.First(&l, "id = ?", locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var dup int64
		if err := tx.Model(&models.Location{}).
			Where("name = ? AND id <> ?", newName, locationID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrNameTaken
		}

		oldName := l.Name
		now := time.Now().UTC()
		if err := tx.Model(&models.Location{}).
			Where("id = ?", locationID).
			Updates(map[string]any{"name": newName, "updated_at": now}).Error; err != nil {
			return err
		}

		if cascadeAssets && oldName != newName {
			if err := tx.Model(&models.Asset{}).
				Where("location = ?", oldName).
				Updates(map[string]any{"location": newName, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCategory refuses while any asset still carries the name. The asset
// column has no FK, so the guard is the only referential protection.
func (r *Repo) DeleteCategory(ctx context.Context, categoryID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var used int64
		if err := tx.Model(&models.Asset{}).Where("category = ?", c.Name).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return ErrInUse
		}
		return tx.Delete(&models.Category{}, "id = ?", categoryID).Error
	})
}

func (r *Repo) DeleteLocation(ctx context.Context, locationID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Location
		if err := tx.First(&l, "id = ?", locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var used int64
		if err := tx.Model(&models.Asset{}).Where("location = ?", l.Name).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return ErrInUse
		}
		return tx.Delete(&models.Location{}, "id = ?", locationID).Error
	})
}

// GetOrCreateCategoryID runs on the caller's transaction and never commits;
// asset create/update and bulk import own the transaction boundary.
func GetOrCreateCategoryID(tx *gorm.DB, name *string) (*string, error) {
	trimmed := trimPtr(name)
	if trimmed == nil {
		return nil, nil
	}
	var c models.Category
	err := tx.Where("name = ?", *trimmed).First(&c).Error
	if err == nil {
		return &c.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	c = models.Category{ID: uuid.NewString(), Name: *trimmed, CreatedAt: now, UpdatedAt: now}
	if err := tx.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c.ID, nil
}

func GetOrCreateLocationID(tx *gorm.DB, name *string) (*string, error) {
	trimmed := trimPtr(name)
	if trimmed == nil {
		return nil, nil
	}
	var l models.Location
	err := tx.Where("name = ?", *trimmed).First(&l).Error
	if err == nil {
		return &l.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	l = models.Location{ID: uuid.NewString(), Name: *trimmed, CreatedAt: now, UpdatedAt: now}
	if err := tx.Create(&l).Error; err != nil {
		return nil, err
	}
	return &l.ID, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
