/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	MongoURI      string
	MongoDatabase string

	// RetentionCron schedules the superseded-report sweep; empty disables it.
	RetentionCron string

	HTTPTimeout time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		MongoURI:      getenv("MONGODB_URI", ""),
		MongoDatabase: getenv("MONGODB_DATABASE", ""),

		RetentionCron: getenv("RETENTION_CRON", ""),

		HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
	}

	// set global timezone if available
	if loc, err := time.LoadLocation(cfg.TZ); err == nil {
		time.Local = loc
	} else {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
	}

	return cfg
}
