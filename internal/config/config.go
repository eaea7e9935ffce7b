package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN                string
	HTTPAddr             string
	Environment          string
	MigrationsPath       string
	ExceptionRetentionWk int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	cfg.ExceptionRetentionWk = 12
	if raw := os.Getenv("EXCEPTION_RETENTION_WEEKS"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil || weeks < 1 {
			return nil, fmt.Errorf("EXCEPTION_RETENTION_WEEKS must be a positive integer, got %q", raw)
		}
		cfg.ExceptionRetentionWk = weeks
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}
