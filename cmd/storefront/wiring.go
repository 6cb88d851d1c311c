package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/config"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/publisher"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/repository"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
)

func openCustomerStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.CustomerRepository, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		repo, err := repository.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(filepath.Join(cfg.MigrationsPath, "sqlite")); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil

	case config.StorePostgres:
		repo, err := repository.NewPostgresRepository(&repository.Credentials{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(filepath.Join(cfg.MigrationsPath, "postgres")); err != nil {
			repo.Close()
			return nil, err
		}
		return repository.NewBreakerRepository(repo, repository.BreakerSettings{Name: "postgres"}, log), nil

	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		db, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoRepository(db)
		if err := repo.CreateIndexes(connectCtx); err != nil {
			repo.Close()
			return nil, err
		}
		return repository.NewBreakerRepository(repo, repository.BreakerSettings{Name: "mongo"}, log), nil

	default:
		log.Warn("customer records are kept in memory and lost on restart")
		return repository.NewMemoryRepository(), nil
	}
}

type sessionBackend struct {
	store session.Store
	locks *session.RedisLocker
	ping  func(ctx context.Context) error
	sweep func(ctx context.Context)
	close func() error
}

func openSessionStore(ctx context.Context, cfg *config.Config) (*sessionBackend, error) {
	if cfg.SessionBackend == config.SessionRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		store := session.NewRedisStore(client, cfg.SessionTTL)
		return &sessionBackend{
			store: store,
			locks: session.NewRedisLocker(client, cfg.RequestTimeout+cfg.StoreTimeout),
			ping:  store.Ping,
			close: client.Close,
		}, nil
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	return &sessionBackend{
		store: store,
		sweep: func(ctx context.Context) {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					store.Sweep()
				}
			}
		},
		close: func() error { return nil },
	}, nil
}

func newAuthProvider(cfg *config.Config, log *slog.Logger) (auth.Provider, error) {
	if cfg.AuthProvider == config.AuthGoTrue {
		return auth.NewGoTrueProvider(cfg.GoTrueURL, cfg.GoTrueAnonKey, cfg.StoreTimeout), nil
	}

	hash := cfg.AdminPasswordHash
	if hash == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("%w: ADMIN_PASSWORD_HASH is required in production", config.ErrInvalidConfig)
		}
		var err error
		if hash, err = auth.HashPassword(auth.DemoAdminPassword); err != nil {
			return nil, err
		}
		log.Warn("using demo admin credentials", "email", cfg.AdminEmail)
	}
	return auth.NewLocalProvider(cfg.AdminEmail, hash)
}

func newPublisher(cfg *config.Config, log *slog.Logger) publisher.Publisher {
	if cfg.Publisher == config.PublisherKafka {
		log.Info("publishing order events to kafka", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
		return publisher.NewKafkaPublisher(publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...))
	}
	return publisher.NewLogPublisher(log)
}
