package routes

import (
	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	assetCtl := controllers.NewAssetController(s)
	masterCtl := controllers.NewMasterController(s)
	transferCtl := controllers.NewTransferController(s)
	uiCtl := controllers.NewUIController(s)

	// ------------------------------
	// JSON API
	// ------------------------------
	assets := r.Group("/assets")
	{
		assets.GET("", assetCtl.ListAssets)
		assets.POST("", assetCtl.CreateAsset)
		assets.GET("/meta", assetCtl.AssetsMeta)
		assets.POST("/import", transferCtl.ImportCSV)
		assets.GET("/export", transferCtl.ExportCSV)

		assets.GET("/:id", assetCtl.GetAsset)
		assets.PATCH("/:id", assetCtl.UpdateAsset)
		assets.DELETE("/:id", assetCtl.DeleteAsset)

		assets.POST("/:id/loan", assetCtl.LoanAsset)
		assets.POST("/:id/return", assetCtl.ReturnAsset)
		assets.GET("/:id/loans", assetCtl.ListAssetLoans)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", masterCtl.ListCategories)
		categories.POST("", masterCtl.CreateCategory)
		categories.POST("/:id/rename", masterCtl.RenameCategory)
		categories.DELETE("/:id", masterCtl.DeleteCategory)
	}

	locations := r.Group("/locations")
	{
		locations.GET("", masterCtl.ListLocations)
		locations.POST("", masterCtl.CreateLocation)
		locations.POST("/:id/rename", masterCtl.RenameLocation)
		locations.DELETE("/:id", masterCtl.DeleteLocation)
	}

	// ------------------------------
	// HTML UI（303 リダイレクト運用）
	// ------------------------------
	ui := r.Group("/ui")
	{
		ui.GET("/assets", uiCtl.AssetsPage)
		ui.POST("/assets", uiCtl.CreateAssetForm)
		ui.GET("/assets/export", transferCtl.ExportCSV)
		ui.GET("/assets/:id/edit", uiCtl.EditAssetPage)
		ui.POST("/assets/:id/edit", uiCtl.UpdateAssetForm)
		ui.POST("/assets/:id/delete", uiCtl.DeleteAssetForm)
		ui.POST("/assets/:id/loan", uiCtl.LoanAssetForm)
		ui.POST("/assets/:id/return", uiCtl.ReturnAssetForm)

		ui.GET("/categories", uiCtl.CategoriesPage)
		ui.POST("/categories", uiCtl.CreateCategoryForm)
		ui.POST("/categories/:id/rename", uiCtl.RenameCategoryForm)
		ui.POST("/categories/:id/delete", uiCtl.DeleteCategoryForm)

		ui.GET("/locations", uiCtl.LocationsPage)
		ui.POST("/locations", uiCtl.CreateLocationForm)
		ui.POST("/locations/:id/rename", uiCtl.RenameLocationForm)
		ui.POST("/locations/:id/delete", uiCtl.DeleteLocationForm)

		ui.GET("/import", uiCtl.ImportPage)
		ui.POST("/import", uiCtl.ImportForm)
	}
}
