package main

import (
	"context"
	"log"

	"github.com/gateflow/gateflow/internal/client"
	"github.com/gateflow/gateflow/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := client.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
