package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/rugbytransfers/go/internal/dbconfig"
	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
)

func main() {
	ctx := context.Background()

	// 1) Load the JSON snapshot
	path := "go/internal/assets/rugby_profiles.json"
	if p := os.Getenv("PROFILES_PATH"); p != "" {
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var profiles []lifecycle.CreateProfileRequest
	if err := json.Unmarshal(data, &profiles); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Make sure the schema exists, then connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	cfg.Driver = dbconfig.DriverPostgres
	s, err := store.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare schema: %v\n", err)
		os.Exit(1)
	}
	_ = s.Close()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert and count
	var (
		total    = len(profiles)
		inserted int
		skipped  int
		errs     int
	)

	for _, req := range profiles {
		if err := lifecycle.ValidateProfile(req); err != nil {
			fmt.Fprintf(os.Stderr, "invalid profile %q: %v\n", req.Name, err)
			errs++
			continue
		}
		created, err := seedProfile(ctx, pool, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting profile %q: %v\n", req.Name, err)
			errs++
			continue
		}
		if created {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Profiles seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}

// seedProfile inserts one profile and its PlayerProfileCreated outbox event.
// A player with the same name at the same team is skipped.
func seedProfile(ctx context.Context, pool *pgxpool.Pool, req lifecycle.CreateProfileRequest) (bool, error) {
	created := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS (
              SELECT 1 FROM player_profiles
              WHERE current_team = $1 AND data->>'name' = $2
            )
        `, req.CurrentTeam, req.Name).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}

		var id int64
		if err := tx.QueryRow(ctx, `SELECT nextval('record_id_seq')`).Scan(&id); err != nil {
			return err
		}

		now := time.Now().UTC()
		profile := models.PlayerProfile{
			ID:             uint64(id),
			Name:           req.Name,
			Position:       req.Position,
			CurrentTeam:    req.CurrentTeam,
			MarketValue:    req.MarketValue,
			TransferStatus: models.TransferStatusAvailable,
			ContractUntil:  req.ContractUntil,
			Age:            req.Age,
			Nationality:    req.Nationality,
			CreatedAt:      uint64(now.UnixNano()),
		}
		doc, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO player_profiles (id, current_team, data)
            VALUES ($1, $2, $3)
        `, id, profile.CurrentTeam, string(doc)); err != nil {
			return err
		}

		payload, err := json.Marshal(events.PlayerProfileCreatedPayload{
			PlayerID:    profile.ID,
			Name:        profile.Name,
			Position:    profile.Position,
			CurrentTeam: profile.CurrentTeam,
			MarketValue: profile.MarketValue,
		})
		if err != nil {
			return err
		}
		eventID := uuid.New().String()
		if _, err := tx.Exec(ctx, `
            INSERT INTO transfer_outbox (id, player_id, event_type, payload, created_at)
            VALUES ($1, $2, $3, $4, $5)
        `, eventID, id, events.EventTypePlayerProfileCreated, string(payload), now.UnixNano()); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, store.NotifyChannel, eventID); err != nil {
			return err
		}

		created = true
		return nil
	})
	return created, err
}
