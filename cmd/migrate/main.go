package main

import (
	"flag"
	"log"

	"daily-spark/internal/config"
	"daily-spark/internal/database"
)

func main() {
	source := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.RunMigrations(*source, cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied")
}
