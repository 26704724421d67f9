// @title CyberQuest Backend API
// @version 1.0
// @description Answer evaluation and progress engine for the CyberQuest security learning platform.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"github.com/HrushithaL/CyberQuest-sub001/internal/app"
	"github.com/HrushithaL/CyberQuest-sub001/internal/config"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "force database migrations on startup")
	seedFile := flag.String("seed", "", "seed mission documents from a JSON file and exit")
	reseed := flag.Bool("reseed", false, "replace existing missions when seeding")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	if *seedFile != "" {
		count, err := application.SeedMissions(*seedFile, *reseed)
		if err != nil {
			log.Fatalf("Failed to seed missions: %v", err)
		}
		log.Printf("Seeded %d missions, exiting", count)
		return
	}

	application.Run()
}
