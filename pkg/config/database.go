package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB holds the database connections. Postgres and Redis are optional and
// Mongo is absent when DB_DRIVER=memory.
type DB struct {
	Mongo    *mongo.Client
	Postgres *gorm.DB
	Redis    *redis.Client
	log      *zap.Logger
}

// InitDB initializes and returns the configured database connections
func InitDB(cfg *Config, log *zap.Logger) (*DB, error) {
	db := &DB{log: log}

	if cfg.DBDriver == "mongo" {
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		client, err := initMongo(cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = client
		log.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))
	}

	if cfg.PostgresURL != "" {
		pg, err := initPostgres(cfg.PostgresURL)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		db.Postgres = pg
		log.Info("connected to PostgreSQL")
	}

	if cfg.RedisAddr != "" {
		rdb, err := initRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		db.Redis = rdb
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	}
	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func initRedis(addr, password string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.Error("error getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error("error closing PostgreSQL connection", zap.Error(err))
		} else {
			db.log.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error("error closing MongoDB connection", zap.Error(err))
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			db.log.Error("error closing Redis connection", zap.Error(err))
		}
	}
}
