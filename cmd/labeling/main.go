package main

import (
	"context"

	"aerolabel/pkg/app"
	"aerolabel/pkg/config"
)

const ServiceName = "labeling"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.UsesMongo() {
		cfg.SetMongo()
		defer cfg.GracefulShutdown()
	}

	cfg.Log.Info("Starting labeling service")
	serverApp, err := app.NewLabelingApplication(context.Background(), cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize labeling service", "error", err)
	}
	serverApp.Run()
}
