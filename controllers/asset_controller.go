// controllers/asset_controller.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/db"

	"github.com/gin-gonic/gin"
)

type AssetController struct{ *Srv }

func NewAssetController(s *Srv) *AssetController { return &AssetController{Srv: s} }

// 一覧（フィルタ＋ソート＋ページング）
func (ac *AssetController) ListAssets(c *gin.Context) {
	q := ac.parseAssetQuery(c)
	assets, err := ac.Repo.ListAssets(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assets)
}

// ページングメタ（total / limit / offset / total_pages）
func (ac *AssetController) AssetsMeta(c *gin.Context) {
	q := ac.parseAssetQuery(c)
	meta, err := ac.Repo.AssetsMeta(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (ac *AssetController) CreateAsset(c *gin.Context) {
	var in struct {
		Name     string  `json:"name" binding:"required"`
		AssetTag string  `json:"asset_tag" binding:"required"`
		Category *string `json:"category"`
		Location *string `json:"location"`
		Note     *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	a, err := ac.Repo.CreateAsset(c.Request.Context(), db.AssetInput{
		Name:     in.Name,
		AssetTag: in.AssetTag,
		Category: in.Category,
		Location: in.Location,
		Note:     in.Note,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicateTag) {
			c.JSON(http.StatusConflict, app.H{"error": "asset_tag already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	ac.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusCreated, a)
}

func (ac *AssetController) GetAsset(c *gin.Context) {
	a, err := ac.Repo.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AssetController) UpdateAsset(c *gin.Context) {
	assetID := c.Param("id")

	var in struct {
		Name     *string `json:"name"`
		AssetTag *string `json:"asset_tag"`
		Category *string `json:"category"`
		Location *string `json:"location"`
		Note     *string `json:"note"`
		Status   *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Status != nil && !db.ValidStatus(*in.Status) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid status"})
		return
	}

	if in.AssetTag != nil && *in.AssetTag != "" {
		exists, err := ac.Repo.TagExists(c.Request.Context(), *in.AssetTag, assetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, app.H{"error": "asset_tag already exists"})
			return
		}
	}

	a, err := ac.Repo.UpdateAsset(c.Request.Context(), assetID, db.AssetUpdate{
		Name:     in.Name,
		AssetTag: in.AssetTag,
		Category: in.Category,
		Location: in.Location,
		Note:     in.Note,
		Status:   in.Status,
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	ac.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusOK, a)
}

func (ac *AssetController) DeleteAsset(c *gin.Context) {
	err := ac.Repo.DeleteAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// 貸出
func (ac *AssetController) LoanAsset(c *gin.Context) {
	var in struct {
		Borrower string     `json:"borrower" binding:"required"`
		DueAt    *time.Time `json:"due_at"`
		Note     *string    `json:"note"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loan, err := ac.Repo.LoanAsset(c.Request.Context(), c.Param("id"), in.Borrower, in.DueAt, in.Note)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": "asset not found"})
		case errors.Is(err, db.ErrNotAvailable):
			c.JSON(http.StatusConflict, app.H{"error": "asset is not available"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// 返却（資産側は冪等）
func (ac *AssetController) ReturnAsset(c *gin.Context) {
	a, err := ac.Repo.ReturnAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// 貸出履歴
func (ac *AssetController) ListAssetLoans(c *gin.Context) {
	ls, err := ac.Repo.ListLoans(c.Request.Context(), c.Param("id"), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}
