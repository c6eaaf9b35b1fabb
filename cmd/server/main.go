package main

import (
	"context"
	"log"

	"github.com/echosphere/echosphere/internal/server"
	"github.com/echosphere/echosphere/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
