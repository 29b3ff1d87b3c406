// Command seed wipes the vault directory and loads a fixture into it.
// The fixture is chosen with -f / VAULT_SEED_FIXTURE (a local path or
// s3://bucket/key); without one the built-in demo directory is used.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/divvault/internal/server"
	"github.com/dmitrijs2005/divvault/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Seed(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
