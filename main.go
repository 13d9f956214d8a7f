package main

import (
	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/config"
	"gin_sqlite_equip_tool/routes"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	r.GET("/", func(c *app.Ctx) {
		c.JSON(200, app.H{"message": "備品管理API", "ui": "/ui/assets"})
	})

	routes.RegisterRoutes(r, application)

	port := application.Config.Port
	application.Log.Info("listening", zap.String("port", port))
	_ = r.Run(":" + port)
}
