// Command manage runs administrative tasks against the reservation
// database.
//
//	manage migrate
//	manage create-admin <username> <email> <password>
//	manage seed [-reservations N] [-days D]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/config"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/database"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: manage migrate | create-admin <username> <email> <password> | seed [-reservations N] [-days D]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	switch os.Args[1] {
	case "migrate":
		log.Printf("migrations applied")
	case "create-admin":
		args := os.Args[2:]
		if len(args) != 3 {
			usage()
		}
		id, err := users.Create(ctx, args[0], args[1], args[2], true, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("create-admin: %v", err)
		}
		log.Printf("admin %q created with id %d", args[0], id)
	case "seed":
		booking := config.LoadBookingConfig()
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		n := fs.Int("reservations", booking.SeedReservations, "number of reservations to attempt")
		days := fs.Int("days", booking.SeedDaysBack, "spread reservations over this many past days")
		_ = fs.Parse(os.Args[2:])

		rooms := repository.NewRoomRepo(db)
		if err := seedRooms(ctx, rooms); err != nil {
			log.Fatalf("seed rooms: %v", err)
		}
		admin, err := seedAdmin(ctx, users, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		all, err := rooms.ListActive(ctx)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		s := seeder{
			Store: repository.NewStore(db),
			Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
			Now:   time.Now().UTC(),
		}
		created, err := s.Reservations(ctx, all, []model.User{admin}, *n, *days)
		if err != nil {
			log.Fatalf("seed reservations: %v", err)
		}
		log.Printf("seeded %d reservations (%d skipped as overlapping)", created, *n-created)
	default:
		usage()
	}
}

// seedAdmin returns the demo admin, creating it on first run.
func seedAdmin(ctx context.Context, users *repository.UserRepo, cost int) (model.User, error) {
	u, err := users.GetByEmail(ctx, seedAdminEmail)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, err
	}
	if _, err := users.Create(ctx, seedAdminName, seedAdminEmail, seedAdminPassword, true, cost); err != nil {
		return model.User{}, err
	}
	return users.GetByEmail(ctx, seedAdminEmail)
}
