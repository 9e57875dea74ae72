package app

import (
	"context"
	"fmt"

	"github.com/riskibarqy/awap-platform/internal/config"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/domain/match"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/rating"
	"github.com/riskibarqy/awap-platform/internal/domain/submission"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/objectstore"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/dynamo"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/awap-platform/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/awap-platform/internal/platform/logging"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

type repositories struct {
	users        user.Repository
	teams        team.Repository
	matches      match.Repository
	reservations match.ReservationRepository
	dispatches   dispatch.Repository
	permissions  permission.Repository
	ratings      rating.Repository
	submissions  submission.Repository
	close        func() error
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var (
		repos repositories
		err   error
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		repos, err = postgresRepositories(ctx, cfg, logger)
	case config.StoreDynamoDB:
		repos, err = dynamoRepositories(ctx, cfg)
	case config.StoreMemory, "":
		repos = memoryRepositories()
	default:
		return repositories{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if err != nil {
		return repositories{}, err
	}

	if cfg.CacheEnabled {
		repos.permissions = cache.NewPermissionRepository(repos.permissions, cfg.CacheTTL)
		repos.ratings = cache.NewRatingRepository(repos.ratings, cfg.CacheTTL)
	}

	logger.Info("repositories ready", "driver", cfg.StoreDriver, "cache_enabled", cfg.CacheEnabled)
	return repos, nil
}

func memoryRepositories() repositories {
	return repositories{
		users:        memory.NewUserRepository(nil),
		teams:        memory.NewTeamRepository(memory.SeedTeams()),
		matches:      memory.NewMatchRepository(memory.SeedMatches()),
		reservations: memory.NewReservationRepository(),
		dispatches:   memory.NewDispatchRepository(),
		permissions:  memory.NewPermissionRepository(),
		ratings:      memory.NewRatingRepository(memory.SeedRatings()),
		submissions:  memory.NewSubmissionRepository(nil),
	}
}

func postgresRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}

	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("postgres bootstrap seed applied", "db_name", dbNameFromURL(cfg.DBURL))
	}

	return repositories{
		users:        postgres.NewUserRepository(db),
		teams:        postgres.NewTeamRepository(db),
		matches:      postgres.NewMatchRepository(db),
		reservations: postgres.NewReservationRepository(db),
		dispatches:   postgres.NewMatchDispatchRepository(db),
		permissions:  postgres.NewPermissionRepository(db),
		ratings:      postgres.NewRatingRepository(db),
		submissions:  postgres.NewSubmissionRepository(db),
		close:        db.Close,
	}, nil
}

func dynamoRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}

	table, err := dynamo.NewTable(newDynamoClient(awsCfg, cfg), dynamo.TableConfig{
		Name:         cfg.DynamoDBTable,
		RecordIndex:  cfg.DynamoDBRecordIndex,
		ScanSegments: cfg.DynamoDBScanSegments,
	})
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		users:        dynamo.NewUserRepository(table),
		teams:        dynamo.NewTeamRepository(table),
		matches:      dynamo.NewMatchRepository(table),
		reservations: dynamo.NewReservationRepository(table),
		dispatches:   dynamo.NewDispatchRepository(table),
		permissions:  dynamo.NewPermissionRepository(table),
		ratings:      dynamo.NewRatingRepository(table),
		submissions:  dynamo.NewSubmissionRepository(table),
	}, nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (usecase.ObjectStore, error) {
	if cfg.ObjectStoreDriver != config.ObjectStoreS3 {
		return objectstore.NewStaticStore(objectstore.StaticConfig{
			UploadBucket:      cfg.S3UploadBucket,
			ReplayBucket:      cfg.S3ReplayBucket,
			URLTemplate:       cfg.S3URLTemplate,
			ReplayURLTemplate: cfg.ReplayURLTemplate,
		}), nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return objectstore.NewS3Store(newS3Client(awsCfg, cfg), objectstore.S3Config{
		UploadBucket: cfg.S3UploadBucket,
		ReplayBucket: cfg.S3ReplayBucket,
		PresignTTL:   cfg.S3PresignTTL,
	})
}
