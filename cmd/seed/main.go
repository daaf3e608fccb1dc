// Command seed fills the database with demo profiles and likes.
//
// Profiles alternate between male and female. It goes through the same
// services as the HTTP API, so an email that already exists is left as it
// is and reported as "exists".
//
//	go run ./cmd/seed -n 20 -likes 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sakif/matchboard/internal/config"
	"github.com/sakif/matchboard/internal/imagestore"
	"github.com/sakif/matchboard/internal/logger"
	"github.com/sakif/matchboard/internal/model"
	"github.com/sakif/matchboard/internal/repository/sqlstore"
	"github.com/sakif/matchboard/internal/service"
)

var firstNames = []string{"Alex", "Sam", "Jordan", "Robin", "Casey", "Morgan", "Taylor", "Jamie", "Riley", "Avery"}

func main() {
	n := flag.Int("n", 10, "number of profiles")
	likes := flag.Int("likes", 20, "number of random likes")
	domain := flag.String("domain", "example.com", "email domain for generated profiles")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(logger.FromConfig(cfg))

	if err := run(cfg, log, *n, *likes, *domain); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, n, likes int, domain string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.DB.Driver == config.DriverSQLite {
		if err := sqlstore.EnsureDir(cfg.DataSourceName()); err != nil {
			return err
		}
	}
	store, err := sqlstore.Open(cfg.DB.Driver, cfg.DataSourceName(), cfg.DB.PoolSize)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// Seeded profiles carry no image, so the store is only a formality.
	images, err := imagestore.NewLocal(cfg.Images.UploadDir)
	if err != nil {
		return err
	}

	profiles := service.NewProfileService(store, images, cfg.ListMode, log)
	likeSvc := service.NewLikeService(store, nil, log)

	emails := make([]string, 0, n)
	for i := 0; i < n; i++ {
		gender := model.GenderMale
		if i%2 == 1 {
			gender = model.GenderFemale
		}
		email := fmt.Sprintf("user%d@%s", i+1, domain)

		res, err := profiles.Upload(ctx, service.UploadInput{
			Name:   firstNames[i%len(firstNames)],
			Email:  email,
			Bio:    fmt.Sprintf("Seeded profile #%d", i+1),
			Gender: gender,
		})
		if err != nil {
			return fmt.Errorf("seeding %s: %w", email, err)
		}

		status := "exists"
		if res.Created {
			status = "created"
		}
		fmt.Printf("%-8s %s (%s)\n", status, email, gender)
		emails = append(emails, email)
	}

	if len(emails) < 2 {
		return nil
	}
	for i := 0; i < likes; i++ {
		liker := emails[rand.Intn(len(emails))]
		liked := emails[rand.Intn(len(emails))]
		if liker == liked {
			continue
		}
		if _, err := likeSvc.Like(ctx, liker, liked); err != nil {
			return fmt.Errorf("seeding like: %w", err)
		}
	}
	fmt.Printf("seeded %d profiles and up to %d likes\n", len(emails), likes)
	return nil
}
