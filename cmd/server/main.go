package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bnbprice/server/config"
	"bnbprice/server/internal/api"
	"bnbprice/server/internal/database"
	"bnbprice/server/internal/dataset"
	"bnbprice/server/internal/prediction"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Infof("Using database at: %s", cfg.DBPath)

	db, err := database.New(cfg.DBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	fetcher := dataset.NewFetcher(cfg.DatasetURL, time.Duration(cfg.FetchTimeout)*time.Second, logger)
	service := prediction.NewService(fetcher, db, logger)
	handler := api.NewHandler(service, db, logger)

	router := gin.Default()
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
