package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/lamkw/datapipe/internal/cli"
	_ "github.com/lamkw/datapipe/internal/core/entities" // register all entities
)

func main() {
	// Load .env if present (Overload overwrites existing env vars).
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cli.Execute()
}
