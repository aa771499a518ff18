package main

import (
	"flag"
	"log"

	"github.com/dayloop-io/dayloop/internal/api"
	"github.com/dayloop-io/dayloop/internal/auth"
	"github.com/dayloop-io/dayloop/internal/cache"
	"github.com/dayloop-io/dayloop/internal/config"
	"github.com/dayloop-io/dayloop/internal/database"
	"github.com/dayloop-io/dayloop/internal/goals"
	"github.com/dayloop-io/dayloop/internal/storage"
	"github.com/dayloop-io/dayloop/internal/store"
)

const version = "0.1.0"

func initializeAPI(configPath string) (*api.Api, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	st := store.New(db, cfg.Database.Type)
	authSvc := auth.NewService(st, cfg.Auth.SessionDuration, cfg.Auth.RenewalFraction)
	goalSvc := goals.NewService(st, cache.New())

	var uploader api.Uploader
	if cfg.ExportEnabled() {
		s3Client, err := storage.NewS3Client(
			cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.Bucket,
			cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey,
		)
		if err != nil {
			return nil, err
		}
		uploader = s3Client
	} else {
		log.Println("S3 not configured, account export disabled")
	}

	return api.NewApi(cfg, st, authSvc, goalSvc, uploader)
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting dayloop API v%s with config: %s", version, *configPath)

	apiServer, err := initializeAPI(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	log.Fatal(apiServer.Serve())
}
