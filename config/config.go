package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int    `env:"PORT" envDefault:"8080"`
	Dsn  string `env:"DSN" envDefault:"postgres://localhost:5432/citywatch"`

	// Vote transactions retry on serialization conflicts up to
	// VoteTxMaxRetries times before surfacing a conflict error.
	VoteTxMaxRetries   int           `env:"VOTE_TX_MAX_RETRIES" envDefault:"5"`
	VoteTxRetryBackoff time.Duration `env:"VOTE_TX_RETRY_BACKOFF" envDefault:"25ms"`

	CascadeWorkers   int `env:"CASCADE_WORKERS" envDefault:"4"`
	CascadeQueueSize int `env:"CASCADE_QUEUE_SIZE" envDefault:"256"`
}

func New() *Config {
	if loadErr := godotenv.Load(".env"); loadErr != nil {
		log.Printf("[Env]: unable to load .env file %v", loadErr)
	}

	var cfg Config

	if parseErr := env.Parse(&cfg); parseErr != nil {
		log.Printf("[Env]: failed to parse environment variables: %v", parseErr)
	}

	return &cfg
}
