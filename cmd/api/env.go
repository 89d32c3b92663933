package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const defaultAddr = ":8080"

// loadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// listenAddr returns HTTP_ADDR, or :8080 when it is unset.
func listenAddr() string {
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}
