package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/davidmmovement/agent-finder-api/internal/config"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
}

func NewApp(cfg *config.Config) (*App, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		if err == nil {
			utils.Logger.Infof("agent-finder-api connected to DB on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	app := &App{
		Config: cfg,
		DB:     dbPool,
	}

	if err := app.ensureSchema(context.Background()); err != nil {
		app.Close()
		return nil, fmt.Errorf("schema bootstrap failed: %w", err)
	}
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("agent-finder-api DB connection closed.")
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}

// ensureSchema creates the tables on first boot. IF NOT EXISTS keeps it
// idempotent; migrations proper are out of scope for a single-service DB.
func (a *App) ensureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS agents (
            id           UUID PRIMARY KEY,
            name         TEXT NOT NULL,
            email        TEXT NOT NULL DEFAULT '',
            phone_number TEXT NOT NULL DEFAULT '',
            street       TEXT NOT NULL DEFAULT '',
            city         TEXT NOT NULL DEFAULT '',
            state        TEXT NOT NULL DEFAULT '',
            zip_code     TEXT NOT NULL DEFAULT '',
            timezone     TEXT NOT NULL DEFAULT '',
            latitude     DOUBLE PRECISION NOT NULL,
            longitude    DOUBLE PRECISION NOT NULL,
            is_active    BOOLEAN NOT NULL DEFAULT TRUE,
            created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE INDEX IF NOT EXISTS idx_agents_active_lat_lng
            ON agents (is_active, latitude, longitude);

        CREATE TABLE IF NOT EXISTS agent_time_slots (
            id         UUID PRIMARY KEY,
            agent_id   UUID NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
            day        TEXT NOT NULL,
            start_time TEXT NOT NULL,
            end_time   TEXT NOT NULL,
            available  BOOLEAN NOT NULL DEFAULT TRUE
        );

        CREATE INDEX IF NOT EXISTS idx_agent_time_slots_agent
            ON agent_time_slots (agent_id);
    `
	_, err := a.DB.Exec(ctx, ddl)
	return err
}
