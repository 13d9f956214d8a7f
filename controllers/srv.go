// controllers/srv.go
package controllers

import (
	"context"
	"strconv"

	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/cache"
	"gin_sqlite_equip_tool/config"
	"gin_sqlite_equip_tool/db"
	"gin_sqlite_equip_tool/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Srv struct {
	Repo *db.Repo
	Meta *cache.MetaCache
	Log  *zap.Logger
	Cfg  config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo: db.NewRepo(a.DB),
		Meta: a.Meta,
		Log:  a.Log,
		Cfg:  a.Config,
	}
}

// --- helpers ---

// Categories serves the dropdown list through the meta cache when Redis is
// configured, straight from SQLite otherwise.
func (s *Srv) Categories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	if s.Meta.Get(ctx, cache.CategoriesKey, &cs) {
		return cs, nil
	}
	cs, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.Meta.Set(ctx, cache.CategoriesKey, cs)
	return cs, nil
}

func (s *Srv) Locations(ctx context.Context) ([]models.Location, error) {
	var ls []models.Location
	if s.Meta.Get(ctx, cache.LocationsKey, &ls) {
		return ls, nil
	}
	ls, err := s.Repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	s.Meta.Set(ctx, cache.LocationsKey, ls)
	return ls, nil
}

// invalidateMeta runs after any write that may touch master data.
func (s *Srv) invalidateMeta(ctx context.Context) {
	s.Meta.Invalidate(ctx)
}

// parseAssetQuery normalizes list/export filters. Category and location
// arrive as names and are resolved to ids; a name that matches no master row
// resolves to "" and the filter is dropped.
func (s *Srv) parseAssetQuery(c *gin.Context) db.AssetQuery {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	q := db.AssetQuery{
		Q:      c.Query("q"),
		Status: db.NormalizeStatus(c.Query("status")),
		Sort:   db.NormalizeSort(c.DefaultQuery("sort", db.DefaultSort)),
		Order:  db.NormalizeOrder(c.DefaultQuery("order", db.DefaultOrder)),
		Limit:  db.ClampLimit(limit),
		Offset: db.ClampOffset(offset),
	}

	if name := c.Query("category"); name != "" {
		id, err := s.Repo.ResolveCategoryID(ctx, name)
		if err != nil {
			s.Log.Warn("resolve category failed", zap.Error(err))
		}
		q.CategoryID = id
	}
	if name := c.Query("location"); name != "" {
		id, err := s.Repo.ResolveLocationID(ctx, name)
		if err != nil {
			s.Log.Warn("resolve location failed", zap.Error(err))
		}
		q.LocationID = id
	}
	return q
}
