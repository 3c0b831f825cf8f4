package main

import (
	"log"
	"sparkos/internal/app"
)

// @title SparkOS Habits API
// @version 1.0
// @description Habit tracking with streaks, XP and levels.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Create and initialize the application
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
