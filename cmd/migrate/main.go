// Command migrate applies the embedded SQL migrations.
//
// Usage: migrate [up|down]  (defaults to up; reads DATABASE_URL)
package main

import (
	"fmt"
	"os"

	"github.com/gharkaam/authcore/config"
	pgstore "github.com/gharkaam/authcore/storage/postgres"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	if err := pgstore.Migrate(cfg.DatabaseURL, direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Println("migrations", direction, "complete")
}
