// controllers/master_controller.go
package controllers

import (
	"errors"
	"net/http"

	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/db"

	"github.com/gin-gonic/gin"
)

type MasterController struct{ *Srv }

func NewMasterController(s *Srv) *MasterController { return &MasterController{Srv: s} }

func (mc *MasterController) masterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrBlankName):
		c.JSON(http.StatusBadRequest, app.H{"error": "name is blank"})
	case errors.Is(err, db.ErrNameTaken):
		c.JSON(http.StatusConflict, app.H{"error": "name already exists"})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, db.ErrInUse):
		c.JSON(http.StatusConflict, app.H{"error": "referenced by assets"})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// ---- Categories ----

func (mc *MasterController) ListCategories(c *gin.Context) {
	cs, err := mc.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": cs})
}

func (mc *MasterController) CreateCategory(c *gin.Context) {
	var in struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cat, err := mc.Repo.CreateCategory(c.Request.Context(), in.Name, in.SortOrder)
	if err != nil {
		mc.masterError(c, err)
		return
	}
	mc.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusCreated, cat)
}

func (mc *MasterController) RenameCategory(c *gin.Context) {
	var in struct {
		NewName       string `json:"new_name" binding:"required"`
		CascadeAssets *bool  `json:"cascade_assets"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cascade := in.CascadeAssets == nil || *in.CascadeAssets

	if err := mc.Repo.RenameCategory(c.Request.Context(), c.Param("id"), in.NewName, cascade); err != nil {
		mc.masterError(c, err)
		return
	}
	mc.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (mc *MasterController) DeleteCategory(c *gin.Context) {
	if err := mc.Repo.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		mc.masterError(c, err)
		return
	}
	mc.invalidateMeta(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// ---- Locations ----

func (mc *MasterController) ListLocations(c *gin.Context) {
	ls, err := mc.Locations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

func (mc *MasterController) CreateLocation(c *gin.Context) {
	var in struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loc, err := mc.Repo.CreateLocation(c.Request.Context(), in.Name, in.SortOrder)
	if err != nil {
		mc.masterError(c, err)
		return
	}
	mc.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusCreated, loc)
}

func (mc *MasterController) RenameLocation(c *gin.Context) {
	var in struct {
		NewName       string `json:"new_name" binding:"required"`
		CascadeAssets *bool  `json:"cascade_assets"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cascade := in.CascadeAssets == nil || *in.CascadeAssets

	if err := mc.Repo.RenameLocation(c.Request.Context(), c.Param("id"), in.NewName, cascade); err != nil {
		mc.masterError(c, err)
		return
	}
	mc.invalidateMeta(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (mc *MasterController) DeleteLocation(c *gin.Context) {
	if err := mc.Repo.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		mc.masterError(c, err)
		return
	}
	mc.invalidateMeta(c.Request.Context())
	c.Status(http.StatusNoContent)
}
