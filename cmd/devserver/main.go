package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/nutrisync/internal/server"
	"github.com/dmitrijs2005/nutrisync/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := server.NewApp(cfg)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
