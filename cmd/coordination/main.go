package main

import (
	"pressroom/internal/coordination"
	"pressroom/pkg/config"
)

const ServiceName = "coordination"

// @title Pressroom Coordination API
// @version 1.0
// @description Editorial locking, presence, notifications, scheduling and audit endpoints.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Coordination service")
	services := coordination.NewServices(cfg)

	serverApp := coordination.NewApplication(cfg, services)
	serverApp.Run()
}
