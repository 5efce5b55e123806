package main

import (
	"log"

	"github.com/joho/godotenv"

	"maudash/adapters/excel"
	"maudash/domain/metrics"
	"maudash/internal/config"
	"maudash/internal/region"
	"maudash/internal/session"
	"maudash/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loader := func(path string) (map[metrics.DatasetKey]metrics.RawTable, error) {
		return excel.NewWorkbookReader(path).ReadTables()
	}

	storage := session.NewLocalFileStorage(appConfig.Uploads.Dir)
	store := session.NewStore(storage, loader, region.NewResolver())

	server := ui.NewServer(appConfig, store)
	log.Printf("[main] MAU metrics dashboard starting on port %s", appConfig.Server.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
