package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Port the HTTP server listens on
	Port string `env:"PORT" envDefault:"5250"`

	// DatasetURL points at a gzip-compressed CSV of listings
	DatasetURL string `env:"DATASET_URL" envDefault:"https://data.insideairbnb.com/united-states/ma/boston/2024-06-22/data/listings.csv.gz"`

	// DBPath is the SQLite database file location
	DBPath string `env:"DB_PATH" envDefault:"database/listings.db"`

	// FetchTimeout is the dataset download timeout in seconds
	FetchTimeout int `env:"FETCH_TIMEOUT" envDefault:"60"`
}

func Load() (*Config, error) {
	// A .env file is optional; real environment variables win either way
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
