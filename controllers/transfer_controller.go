// controllers/transfer_controller.go
package controllers

import (
	"io"
	"net/http"

	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/csvutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Export reads the whole filtered set in one page; matches the old tool's
// hard cap.
const exportLimit = 20000

type TransferController struct{ *Srv }

func NewTransferController(s *Srv) *TransferController { return &TransferController{Srv: s} }

// CSV 一括取込（multipart "file"）
func (tc *TransferController) ImportCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	rows, err := csvutil.BytesToRows(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	res, err := tc.Repo.BulkImportAssets(c.Request.Context(), rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	tc.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusOK, res)
}

// CSV 出力（一覧と同じフィルタ）
func (tc *TransferController) ExportCSV(c *gin.Context) {
	q := tc.parseAssetQuery(c)
	q.Limit = exportLimit
	q.Offset = 0

	assets, err := tc.Repo.ListAssets(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="assets_export.csv"`)
	c.Status(http.StatusOK)

	if err := csvutil.WriteAssets(c.Writer, assets); err != nil {
		tc.Log.Warn("csv export aborted", zap.Error(err))
	}
}
