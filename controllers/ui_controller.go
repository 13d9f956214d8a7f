// controllers/ui_controller.go
//
// HTML の画面まわり。フォームの失敗（重複タグ等）はエラー表示せず一覧へ
// 303 リダイレクトで戻す。昔からの挙動なのでそのまま維持する。
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/csvutil"
	"gin_sqlite_equip_tool/db"
	"gin_sqlite_equip_tool/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const uiPageSize = 50

type UIController struct{ *Srv }

func NewUIController(s *Srv) *UIController { return &UIController{Srv: s} }

// 一覧ページ
func (uc *UIController) AssetsPage(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	q := db.AssetQuery{
		Q:          c.Query("q"),
		Status:     db.NormalizeStatus(c.Query("status")),
		CategoryID: c.Query("category_id"),
		LocationID: c.Query("location_id"),
		Sort:       db.NormalizeSort(c.DefaultQuery("sort", db.DefaultSort)),
		Order:      db.NormalizeOrder(c.DefaultQuery("order", db.DefaultOrder)),
		Limit:      uiPageSize,
	}

	meta, err := uc.Repo.AssetsMeta(ctx, q)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	if page > meta.TotalPages {
		page = meta.TotalPages
	}
	q.Offset = (page - 1) * uiPageSize

	assets, err := uc.Repo.ListAssets(ctx, q)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	activeLoans := map[string]*models.Loan{}
	for _, a := range assets {
		loan, err := uc.Repo.ActiveLoan(ctx, a.ID)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		if loan != nil {
			activeLoans[a.ID] = loan
		}
	}

	categories, _ := uc.Categories(ctx)
	locations, _ := uc.Locations(ctx)

	c.HTML(http.StatusOK, "assets.html", app.H{
		"assets":      assets,
		"activeLoans": activeLoans,

		"q":          c.Query("q"),
		"status":     q.Status,
		"categoryID": q.CategoryID,
		"locationID": q.LocationID,
		"sort":       q.Sort,
		"order":      q.Order,

		"page":       page,
		"totalPages": meta.TotalPages,
		"total":      meta.Total,
		"pageSize":   uiPageSize,

		"categories": categories,
		"locations":  locations,
	})
}

// フォームからの新規作成。タグ重複は黙ってリダイレクト。
func (uc *UIController) CreateAssetForm(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.PostForm("name")
	assetTag := c.PostForm("asset_tag")
	if name == "" || assetTag == "" {
		c.Redirect(http.StatusSeeOther, "/ui/assets")
		return
	}

	if exists, _ := uc.Repo.TagExists(ctx, assetTag, ""); exists {
		c.Redirect(http.StatusSeeOther, "/ui/assets")
		return
	}

	_, err := uc.Repo.CreateAsset(ctx, db.AssetInput{
		Name:     name,
		AssetTag: assetTag,
		Category: formPtr(c, "category"),
		Location: formPtr(c, "location"),
		Note:     formPtr(c, "note"),
	})
	if err != nil {
		uc.Log.Warn("ui create asset failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/assets")
}

func (uc *UIController) EditAssetPage(c *gin.Context) {
	ctx := c.Request.Context()

	a, err := uc.Repo.GetAsset(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.String(http.StatusNotFound, "asset not found")
			return
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	categories, _ := uc.Categories(ctx)
	locations, _ := uc.Locations(ctx)

	c.HTML(http.StatusOK, "asset_edit.html", app.H{
		"asset":      a,
		"categories": categories,
		"locations":  locations,
	})
}

func (uc *UIController) UpdateAssetForm(c *gin.Context) {
	ctx := c.Request.Context()
	assetID := c.Param("id")

	assetTag := c.PostForm("asset_tag")
	if assetTag != "" {
		if exists, _ := uc.Repo.TagExists(ctx, assetTag, assetID); exists {
			c.Redirect(http.StatusSeeOther, "/ui/assets/"+assetID+"/edit")
			return
		}
	}

	status := c.DefaultPostForm("status", models.StatusAvailable)
	if !db.ValidStatus(status) {
		status = models.StatusAvailable
	}

	name := c.PostForm("name")
	_, err := uc.Repo.UpdateAsset(ctx, assetID, db.AssetUpdate{
		Name:     &name,
		AssetTag: &assetTag,
		Category: formPtr(c, "category"),
		Location: formPtr(c, "location"),
		Note:     formPtr(c, "note"),
		Status:   &status,
	})
	if err != nil {
		uc.Log.Warn("ui update asset failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/assets")
}

func (uc *UIController) DeleteAssetForm(c *gin.Context) {
	if err := uc.Repo.DeleteAsset(c.Request.Context(), c.Param("id")); err != nil && !errors.Is(err, db.ErrNotFound) {
		uc.Log.Warn("ui delete asset failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/ui/assets")
}

// 貸出フォーム（due_date は YYYY-MM-DD）
func (uc *UIController) LoanAssetForm(c *gin.Context) {
	ctx := c.Request.Context()

	borrower := c.PostForm("borrower")
	if borrower == "" {
		c.Redirect(http.StatusSeeOther, "/ui/assets")
		return
	}

	var dueAt *time.Time
	if s := c.PostForm("due_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			dueAt = &t
		}
	}

	if _, err := uc.Repo.LoanAsset(ctx, c.Param("id"), borrower, dueAt, formPtr(c, "note")); err != nil {
		uc.Log.Warn("ui loan failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/ui/assets")
}

func (uc *UIController) ReturnAssetForm(c *gin.Context) {
	if _, err := uc.Repo.ReturnAsset(c.Request.Context(), c.Param("id")); err != nil {
		uc.Log.Warn("ui return failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/ui/assets")
}

// ---- マスタ管理 ----

func (uc *UIController) CategoriesPage(c *gin.Context) {
	categories, err := uc.Categories(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.HTML(http.StatusOK, "categories.html", app.H{"categories": categories})
}

func (uc *UIController) CreateCategoryForm(c *gin.Context) {
	ctx := c.Request.Context()
	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sort_order", "0"))
	if _, err := uc.Repo.CreateCategory(ctx, c.PostForm("name"), sortOrder); err != nil {
		uc.Log.Warn("ui create category failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/categories")
}

func (uc *UIController) RenameCategoryForm(c *gin.Context) {
	ctx := c.Request.Context()
	cascade := c.DefaultPostForm("cascade_assets", "on") == "on"
	if err := uc.Repo.RenameCategory(ctx, c.Param("id"), c.PostForm("new_name"), cascade); err != nil {
		uc.Log.Warn("ui rename category failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/categories")
}

func (uc *UIController) DeleteCategoryForm(c *gin.Context) {
	ctx := c.Request.Context()
	if err := uc.Repo.DeleteCategory(ctx, c.Param("id")); err != nil {
		uc.Log.Warn("ui delete category failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/categories")
}

func (uc *UIController) LocationsPage(c *gin.Context) {
	locations, err := uc.Locations(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.HTML(http.StatusOK, "locations.html", app.H{"locations": locations})
}

func (uc *UIController) CreateLocationForm(c *gin.Context) {
	ctx := c.Request.Context()
	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sort_order", "0"))
	if _, err := uc.Repo.CreateLocation(ctx, c.PostForm("name"), sortOrder); err != nil {
		uc.Log.Warn("ui create location failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/locations")
}

func (uc *UIController) RenameLocationForm(c *gin.Context) {
	ctx := c.Request.Context()
	cascade := c.DefaultPostForm("cascade_assets", "on") == "on"
	if err := uc.Repo.RenameLocation(ctx, c.Param("id"), c.PostForm("new_name"), cascade); err != nil {
		uc.Log.Warn("ui rename location failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/locations")
}

func (uc *UIController) DeleteLocationForm(c *gin.Context) {
	ctx := c.Request.Context()
	if err := uc.Repo.DeleteLocation(ctx, c.Param("id")); err != nil {
		uc.Log.Warn("ui delete location failed", zap.Error(err))
	}
	uc.invalidateMeta(ctx)
	c.Redirect(http.StatusSeeOther, "/ui/locations")
}

// ---- 取込 ----

func (uc *UIController) ImportPage(c *gin.Context) {
	c.HTML(http.StatusOK, "import.html", app.H{"result": nil, "importError": ""})
}

func (uc *UIController) ImportForm(c *gin.Context) {
	ctx := c.Request.Context()

	fh, err := c.FormFile("file")
	if err != nil {
		c.HTML(http.StatusOK, "import.html", app.H{"result": nil, "importError": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.HTML(http.StatusOK, "import.html", app.H{"result": nil, "importError": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.HTML(http.StatusOK, "import.html", app.H{"result": nil, "importError": err.Error()})
		return
	}

	rows, err := csvutil.BytesToRows(data)
	if err != nil {
		c.HTML(http.StatusOK, "import.html", app.H{"result": nil, "importError": err.Error()})
		return
	}

	res, err := uc.Repo.BulkImportAssets(ctx, rows)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	uc.invalidateMeta(ctx)
	c.HTML(http.StatusOK, "import.html", app.H{"result": res, "importError": ""})
}

// フォーム値は常に送られてくるので空文字も「指定あり」として扱う
func formPtr(c *gin.Context, key string) *string {
	v := c.PostForm(key)
	return &v
}
