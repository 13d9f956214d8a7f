package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// BulkImportAssets creates one asset per row inside a single transaction.
// Rows missing name/asset_tag produce an error line, rows whose tag already
// exists (in the database or earlier in the same batch) are skipped. An
// unexpected database error rolls back the whole batch.
func (r *Repo) BulkImportAssets(ctx context.Context, rows []map[string]string) (*ImportResult, error) {
	res := &ImportResult{Errors: []string{}}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, row := range rows {
			name := strings.TrimSpace(row["name"])
			assetTag := strings.TrimSpace(row["asset_tag"])

			if name == "" || assetTag == "" {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: name/asset_tag is empty", idx+1))
				continue
			}

			exists, err := tagExistsTx(tx, assetTag, "")
			if err != nil {
				return err
			}
			if exists {
				res.Skipped++
				continue
			}

			in := AssetInput{
				Name:     name,
				AssetTag: assetTag,
				Category: optField(row["category"]),
				Location: optField(row["location"]),
				Note:     optField(row["note"]),
			}
			if _, err := r.CreateAssetTx(tx, in); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func optField(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
