package database

import (
	"context"
	"fmt"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/repository"
	"rps-backend/config"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Database struct {
	Postgres *gorm.DB
	Mongo    *mongo.Database // nil jika MONGO_URI kosong
	Redis    *redis.Client   // nil jika REDIS_ADDR kosong
}

// Models adalah daftar tabel yang di-AutoMigrate.
var Models = []interface{}{
	&model.Institution{},
	&model.Faculty{},
	&model.Program{},
	&model.User{},
	&model.UserRole{},
	&model.CustomRole{},
	&model.Course{},
	&model.CurriculumOutcome{},
	&model.TeachingAssignment{},
	&model.Syllabus{},
}

// InitDB membuka PostgreSQL (wajib), MongoDB dan Redis (opsional).
func InitDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	// 1. Setup PostgreSQL
	pgDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("gagal koneksi ke postgres: %w", err)
	}

	logger.Info("menjalankan migrasi database PostgreSQL")
	if err := pgDB.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("gagal migrasi database: %w", err)
	}

	db := &Database{Postgres: pgDB}

	// 2. Setup MongoDB
	if cfg.MongoURI != "" {
		mongoDB, err := connectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureNotificationIndexes(ctx, mongoDB); err != nil {
			return nil, fmt.Errorf("gagal membuat index notifikasi: %w", err)
		}
		db.Mongo = mongoDB
		logger.Info("terhubung ke MongoDB", zap.String("database", cfg.MongoDBName))
	}

	// 3. Setup Redis
	if cfg.RedisAddr != "" {
		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db.Redis = client
		logger.Info("terhubung ke Redis", zap.String("addr", cfg.RedisAddr))
	}

	return db, nil
}

func connectMongo(ctx context.Context, uri, name string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("gagal koneksi ke mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("gagal ping mongo: %w", err)
	}
	return client.Database(name), nil
}

// ConnectRedis membuka client Redis dan memastikan server bisa dihubungi.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("gagal ping redis: %w", err)
	}
	return client, nil
}

// Close menutup semua koneksi yang terbuka.
func (d *Database) Close(ctx context.Context) {
	if d.Postgres != nil {
		if sqlDB, err := d.Postgres.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if d.Mongo != nil {
		_ = d.Mongo.Client().Disconnect(ctx)
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}
