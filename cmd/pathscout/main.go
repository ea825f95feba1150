// Command pathscout ranks pathway hypotheses for a set of seed genes.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pathscout/internal/adapters/driving/cli"
	"github.com/custodia-labs/pathscout/internal/logger"
)

var version = "dev"

func main() {
	// Secrets may live in .env next to the working directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
