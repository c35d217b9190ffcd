package app

import (
	"context"

	"auth-service/internal/config"
	"auth-service/internal/logger"
	"auth-service/internal/mongo"
	"auth-service/internal/redis"
)

type Infra struct {
	Mongo *mongo.Client
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	mongoClient, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	logger.Info("mongodb ready", "database", cfg.MongoDatabase)

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", "addr", cfg.RedisAddr)

	return &Infra{
		Mongo: mongoClient,
		Redis: redisClient,
	}, nil
}
