//cmd/seeder/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/unclebandit/wabulk-backend/internal/config"
	"github.com/unclebandit/wabulk-backend/internal/db"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	migrateOnly := flag.Bool("migrate-only", false, "apply the schema without sample data")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	files := []string{"migrations/001_init.sql"}
	if !*migrateOnly {
		files = append(files,
			"seed/contacts.sql",
			"seed/templates.sql",
			"seed/campaigns.sql",
		)
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("failed to read %s: %v", file, err)
		}

		if _, err := conn.Exec(string(content)); err != nil {
			log.Fatalf("failed to execute %s: %v", file, err)
		}
		fmt.Printf("Applied: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
