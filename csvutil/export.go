package csvutil

import (
	"encoding/csv"
	"io"
	"time"

	"gin_sqlite_equip_tool/models"
)

// ExportColumns is the contractual column order of the asset export.
var ExportColumns = []string{"id", "name", "asset_tag", "category", "location", "status", "updated_at", "note"}

// WriteAssets streams assets as CSV, one flush per row.
func WriteAssets(w io.Writer, assets []models.Asset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	cw.Flush()

	for _, a := range assets {
		record := []string{
			a.ID,
			a.Name,
			a.AssetTag,
			deref(a.Category),
			deref(a.Location),
			a.Status,
			a.UpdatedAt.UTC().Format(time.RFC3339),
			deref(a.Note),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
