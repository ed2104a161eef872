package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/config"
	"github.com/bookmycut/booking-server-go/internal/database"
	"github.com/bookmycut/booking-server-go/internal/model"
)

var catalog = []model.CreateServiceParams{
	{
		Category:        "HAIR",
		ServiceID:       "haircut_men",
		Title:           "Mens Haircut",
		Description:     "Professional haircut for men",
		DurationMinutes: 30,
		Price:           300,
		LoyaltyPoints:   30,
	},
	{
		Category:        "HAIR",
		ServiceID:       "haircut_women",
		Title:           "Ladies Haircut",
		Description:     "Professional haircut for women",
		DurationMinutes: 45,
		Price:           500,
		LoyaltyPoints:   50,
	},
	{
		Category:        "HAIR",
		ServiceID:       "hair_color",
		Title:           "Hair Color",
		Description:     "Professional hair coloring service",
		DurationMinutes: 90,
		Price:           1500,
		LoyaltyPoints:   150,
	},
	{
		Category:        "SKIN",
		ServiceID:       "facial",
		Title:           "Facial",
		Description:     "Relaxing facial treatment",
		DurationMinutes: 60,
		Price:           800,
		LoyaltyPoints:   80,
	},
	{
		Category:        "NAILS",
		ServiceID:       "manicure",
		Title:           "Manicure",
		Description:     "Professional nail care for hands",
		DurationMinutes: 45,
		Price:           400,
		LoyaltyPoints:   40,
	},
}

const upsertQuery = `
	INSERT INTO services (service_id, category, title, description, duration_minutes, price, loyalty_points, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
	ON CONFLICT (service_id) DO UPDATE SET
		category = EXCLUDED.category,
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		duration_minutes = EXCLUDED.duration_minutes,
		price = EXCLUDED.price,
		loyalty_points = EXCLUDED.loyalty_points,
		is_active = TRUE,
		updated_at = now()`

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	for _, svc := range catalog {
		_, err := db.DB.ExecContext(ctx, upsertQuery,
			svc.ServiceID, svc.Category, svc.Title, svc.Description,
			svc.DurationMinutes, svc.Price, svc.LoyaltyPoints,
		)
		if err != nil {
			log.Fatal().Err(err).Str("serviceId", svc.ServiceID).Msg("failed to seed service")
		}
		log.Info().Str("serviceId", svc.ServiceID).Msg("service seeded")
	}

	log.Info().Int("count", len(catalog)).Msg("service catalog seeded")
}
