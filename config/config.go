package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	ServerPort string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
)

func Init() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("no .env file loaded, relying on environment")
	}

	ServerPort = getEnv("SERVER_PORT", ":8080")

	DBHost = mustGetEnv("DB_HOST")
	DBPort = getEnv("DB_PORT", "5432")
	DBName = mustGetEnv("DB_NAME")
	DBUser = mustGetEnv("DB_USER")
	DBPassword = mustGetEnv("DB_PASSWORD")
	DBSSLMode = getEnv("DB_SSL_MODE", "disable")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		logrus.Fatalf("%s not set", key)
	}
	return v
}
