package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gin_sqlite_equip_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetInput struct {
	Name     string
	AssetTag string
	Category *string
	Location *string
	Note     *string
}

// AssetUpdate is a partial update: nil fields are left untouched.
type AssetUpdate struct {
	Name     *string
	AssetTag *string
	Category *string
	Location *string
	Note     *string
	Status   *string
}

type AssetQuery struct {
	Q          string // substring over name/asset_tag/note
	Status     string
	CategoryID string
	LocationID string
	Sort       string
	Order      string
	Limit      int
	Offset     int
}

type AssetsMeta struct {
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalPages int   `json:"total_pages"`
}

func (r *Repo) TagExists(ctx context.Context, assetTag, excludeAssetID string) (bool, error) {
	return tagExistsTx(r.DB.WithContext(ctx), assetTag, excludeAssetID)
}

func tagExistsTx(tx *gorm.DB, assetTag, excludeAssetID string) (bool, error) {
	q := tx.Model(&models.Asset{}).Where("asset_tag = ?", assetTag)
	if excludeAssetID != "" {
		q = q.Where("id <> ?", excludeAssetID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var a models.Asset
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) CreateAsset(ctx context.Context, in AssetInput) (*models.Asset, error) {
	var out *models.Asset
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := r.CreateAssetTx(tx, in)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAssetTx runs on the caller's transaction and never commits, so bulk
// import can batch many creates into one transaction.
func (r *Repo) CreateAssetTx(tx *gorm.DB, in AssetInput) (*models.Asset, error) {
	exists, err := tagExistsTx(tx, in.AssetTag, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTag
	}

	categoryID, err := GetOrCreateCategoryID(tx, in.Category)
	if err != nil {
		return nil, err
	}
	locationID, err := GetOrCreateLocationID(tx, in.Location)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &models.Asset{
		ID:         uuid.NewString(),
		Name:       in.Name,
		AssetTag:   in.AssetTag,
		Category:   in.Category,
		Location:   in.Location,
		CategoryID: categoryID,
		LocationID: locationID,
		Note:       in.Note,
		Status:     models.StatusAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) UpdateAsset(ctx context.Context, id string, upd AssetUpdate) (*models.Asset, error) {
	var out *models.Asset
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Asset
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if upd.Name != nil {
			a.Name = *upd.Name
		}
		if upd.AssetTag != nil {
			a.AssetTag = *upd.AssetTag
		}
		if upd.Category != nil {
			a.Category = upd.Category
		}
		if upd.Location != nil {
			a.Location = upd.Location
		}
		if upd.Note != nil {
			a.Note = upd.Note
		}
		if upd.Status != nil {
			a.Status = *upd.Status
		}

		// Reference ids are recomputed from the update payload only: an update
		// without a category/location clears the id while the denormalized
		// name is kept. Matches the behavior the UI was built against.
		var err error
		if upd.Category != nil && *upd.Category != "" {
			a.CategoryID, err = GetOrCreateCategoryID(tx, upd.Category)
		} else {
			a.CategoryID = nil
		}
		if err != nil {
			return err
		}
		if upd.Location != nil && *upd.Location != "" {
			a.LocationID, err = GetOrCreateLocationID(tx, upd.Location)
		} else {
			a.LocationID = nil
		}
		if err != nil {
			return err
		}

		a.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) DeleteAsset(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Asset{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveCategoryID looks a master up by name without creating it. A name
// with no matching row resolves to "", which drops the filter entirely.
func (r *Repo) ResolveCategoryID(ctx context.Context, name string) (string, error) {
	return resolveMasterID(r.DB.WithContext(ctx), &models.Category{}, name)
}

func (r *Repo) ResolveLocationID(ctx context.Context, name string) (string, error) {
	return resolveMasterID(r.DB.WithContext(ctx), &models.Location{}, name)
}

func resolveMasterID(tx *gorm.DB, model any, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	var id string
	err := tx.Model(model).Select("id").Where("name = ?", name).Limit(1).Scan(&id).Error
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) buildAssetFilter(tx *gorm.DB, q AssetQuery) *gorm.DB {
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(asset_tag) LIKE ? OR LOWER(note) LIKE ?", like, like, like)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.CategoryID != "" {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}
	if q.LocationID != "" {
		tx = tx.Where("location_id = ?", q.LocationID)
	}
	return tx
}

func (r *Repo) CountAssets(ctx context.Context, q AssetQuery) (int64, error) {
	var total int64
	tx := r.buildAssetFilter(r.DB.WithContext(ctx).Model(&models.Asset{}), q)
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repo) ListAssets(ctx context.Context, q AssetQuery) ([]models.Asset, error) {
	sort := NormalizeSort(q.Sort)
	order := NormalizeOrder(q.Order)
	// The [1,500] clamp is applied where query params come in; the export
	// path passes a larger bound on purpose.
	limit := q.Limit
	if limit < MinLimit {
		limit = MinLimit
	}
	offset := ClampOffset(q.Offset)

	tx := r.buildAssetFilter(r.DB.WithContext(ctx).Model(&models.Asset{}), q)

	var assets []models.Asset
	err := tx.
		Order(fmt.Sprintf("%s %s", sort, order)).
		Offset(offset).
		Limit(limit).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *Repo) AssetsMeta(ctx context.Context, q AssetQuery) (*AssetsMeta, error) {
	limit := ClampLimit(q.Limit)
	offset := ClampOffset(q.Offset)

	total, err := r.CountAssets(ctx, q)
	if err != nil {
		return nil, err
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	if totalPages < 1 {
		totalPages = 1
	}

	return &AssetsMeta{
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		TotalPages: int(totalPages),
	}, nil
}
