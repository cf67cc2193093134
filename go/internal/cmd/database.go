package main

import (
	"context"

	"github.com/mcdev12/gaffer/go/internal/dbconfig"
	"github.com/mcdev12/gaffer/go/internal/store/postgres"
	"github.com/rs/zerolog/log"
)

// connectStore opens the Postgres pool from DB_* env config.
func connectStore(ctx context.Context) (*postgres.Store, error) {
	dbCfg := dbconfig.NewConfigFromEnv()

	store, err := postgres.Connect(ctx, dbCfg.DSN())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", dbCfg.Host).
		Str("database", dbCfg.Database).
		Msg("connected to database")
	return store, nil
}
