// Command migrate applies the database schema.  It is safe to run
// repeatedly.
package main

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-club/internal/config"
	"github.com/iliyamo/movie-club/internal/database"
)

func main() {
	cfg := config.LoadDatabase()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal(err)
	}
	log.Infof("applied %d schema statements to %s", len(database.Statements()), cfg.DBName)
}
