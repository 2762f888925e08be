package main

import (
	"context"
	"fmt"

	"lucky-draw-backend/internal/common/config"
	"lucky-draw-backend/internal/features/ledger/repository"
	"lucky-draw-backend/internal/features/ledger/repository/memory"
	pgrepo "lucky-draw-backend/internal/features/ledger/repository/postgres"
	redisrepo "lucky-draw-backend/internal/features/ledger/repository/redis"
	sqliterepo "lucky-draw-backend/internal/features/ledger/repository/sqlite"
	"lucky-draw-backend/internal/features/proof"
	"lucky-draw-backend/internal/platform/postgres"
	platformredis "lucky-draw-backend/internal/platform/redis"
	platformsqlite "lucky-draw-backend/internal/platform/sqlite"
)

func openRepository(ctx context.Context, cfg *config.Config) (repository.EntryRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return memory.NewMemoryRepository(), nil

	case config.StoreDriverSQLite:
		db, err := platformsqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo, err := sqliterepo.NewSQLiteRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return repo, nil

	case config.StoreDriverPostgres:
		client, err := postgres.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		repo, err := pgrepo.NewPostgresRepository(ctx, client.DB())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return repo, nil

	case config.StoreDriverRedis:
		client, err := platformredis.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return redisrepo.NewRedisRepository(client, cfg.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openProofStore(ctx context.Context, cfg *config.Config) (proof.Store, error) {
	switch cfg.Proof.Driver {
	case config.ProofDriverInline:
		return proof.NewInlineStore(), nil
	case config.ProofDriverS3:
		client, err := proof.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return proof.NewS3Store(client, cfg.Proof.Bucket, cfg.Proof.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown proof driver %q", cfg.Proof.Driver)
	}
}
