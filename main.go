package main

import (
	"context"
	"log"

	"library-management-api/app"
	"library-management-api/config"
	"library-management-api/db"
	"library-management-api/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	if application.Config.SeedDB {
		app.Seed(context.Background(), db.NewRepo(application.DB))
	}

	log.Printf("listening on :%s", application.Config.Port)
	_ = r.Run(":" + application.Config.Port)
}
