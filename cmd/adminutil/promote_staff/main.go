package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/sudo-init-do/coderr/internal/config"
	"github.com/sudo-init-do/coderr/internal/db"
	"github.com/sudo-init-do/coderr/internal/logging"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/repository/postgres"
)

func main() {
	username := flag.String("username", "", "Username of the account to promote to staff")
	revoke := flag.Bool("revoke", false, "Remove staff rights instead of granting them")
	flag.Parse()

	if *username == "" {
		log.Fatalf("usage: go run ./cmd/adminutil/promote_staff -username alice [-revoke]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// older databases may lack is_staff
	if err := db.EnsureSchema(ctx, pool, logger); err != nil {
		log.Fatalf("schema: %v", err)
	}

	store := postgres.NewStore(pool)
	err = store.Users.SetStaff(ctx, *username, !*revoke)
	if errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("no user found with username: %s", *username)
	}
	if err != nil {
		log.Fatalf("failed to update staff flag: %v", err)
	}

	if *revoke {
		fmt.Printf("User %s is no longer staff.\n", *username)
		return
	}
	fmt.Printf("User %s promoted to staff.\n", *username)
}
