package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/storefront/internal/gateway"
	"github.com/dmitrijs2005/storefront/internal/gateway/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app, err := gateway.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	app.Run(ctx)

}
