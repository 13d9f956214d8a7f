package db

import (
	"context"
	"errors"
	"time"

	"gin_sqlite_equip_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanAsset は原子操作：資産の状態チェック → Loan 作成 → status を loaned に
func (r *Repo) LoanAsset(ctx context.Context, assetID, borrower string, dueAt *time.Time, note *string) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Asset
		if err := tx.First(&a, "id = ?", assetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if a.Status != models.StatusAvailable {
			return ErrNotAvailable
		}

		now := time.Now().UTC()
		l := &models.Loan{
			ID:       uuid.NewString(),
			AssetID:  a.ID,
			Borrower: borrower,
			LoanedAt: now,
			DueAt:    dueAt,
			Note:     note,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Asset{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"status":     models.StatusLoaned,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnAsset closes the newest active loan if one exists and always flips
// the asset back to available. Idempotent on the asset side.
func (r *Repo) ReturnAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	var out *models.Asset
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Asset
		if err := tx.First(&a, "id = ?", assetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()

		var l models.Loan
		err := tx.
			Where("asset_id = ? AND returned_at IS NULL", assetID).
			Order("loaned_at DESC").
			First(&l).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Loan{}).
				Where("id = ?", l.ID).
				Update("returned_at", now).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 貸出が無くても status は available に戻す
		default:
			return err
		}

		if err := tx.Model(&models.Asset{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"status":     models.StatusAvailable,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		a.Status = models.StatusAvailable
		a.UpdatedAt = now
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveLoan returns nil when the asset has no open loan.
func (r *Repo) ActiveLoan(ctx context.Context, assetID string) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).
		Where("asset_id = ? AND returned_at IS NULL", assetID).
		Order("loaned_at DESC").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) ListLoans(ctx context.Context, assetID, status string) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("loaned_at DESC")
	if assetID != "" {
		q = q.Where("asset_id = ?", assetID)
	}
	switch status {
	case "open":
		q = q.Where("returned_at IS NULL")
	case "returned":
		q = q.Where("returned_at IS NOT NULL")
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}
