// Package main runs the analysis API server.
package main

import (
	"context"
	"time"

	httpapi "material-lca/api"
	"material-lca/db/clickhouse"
	"material-lca/internal/artifacts"
	"material-lca/internal/engine"
	"material-lca/internal/feedback"
	"material-lca/internal/predict"
	"material-lca/pkg/platform"
)

func main() {
	env := platform.GetEnv("ENV", "production")
	log := platform.InitLogger(env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adapter, err := loadArtifacts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load predictor artifacts")
	}
	log.Info().Strs("predictors", adapter.Names()).Msg("predictor registry loaded")

	var store engine.RecordStore
	if platform.GetEnvBool("CLICKHOUSE_ENABLED", false) {
		ch, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     platform.GetEnv("CLICKHOUSE_HOST", "localhost"),
			Port:     platform.GetEnvInt("CLICKHOUSE_PORT", 9000),
			Database: platform.GetEnv("CLICKHOUSE_DATABASE", "lca"),
			Username: platform.GetEnv("CLICKHOUSE_USERNAME", "default"),
			Password: platform.GetEnv("CLICKHOUSE_PASSWORD", ""),
			Debug:    platform.GetEnvBool("CLICKHOUSE_DEBUG", false),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to ClickHouse")
		}
		defer ch.Close()
		if err := ch.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate ClickHouse schema")
		}
		store = ch
		log.Info().Msg("record store enabled")
	}

	eng := engine.New(adapter, feedback.NewTracker(), engine.Options{
		ConfidenceFloor: platform.GetEnvFloat("CONFIDENCE_FLOOR", 0),
		Store:           store,
		Logger:          log,
	})

	server := httpapi.NewServer(eng, &httpapi.Config{
		Port:           platform.GetEnv("PORT", "8080"),
		RequestTimeout: 60 * time.Second,
		MaxRequestSize: 1 << 20,
		PoliciesDir:    platform.GetEnv("POLICIES_DIR", "policies"),
	}, log)

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// loadArtifacts picks the artifact source: an S3 bucket when configured,
// otherwise a local directory.
func loadArtifacts(ctx context.Context) (*predict.Adapter, error) {
	bucket := platform.GetEnv("ARTIFACTS_BUCKET", "")
	if bucket != "" {
		s3store, err := artifacts.NewS3Store(ctx,
			platform.GetEnv("AWS_REGION", "us-east-1"),
			bucket,
			platform.GetEnv("ARTIFACTS_PREFIX", "models/"),
		)
		if err != nil {
			return nil, err
		}
		return predict.LoadAll(ctx, s3store)
	}
	return predict.LoadAll(ctx, artifacts.NewLocalStore(platform.GetEnv("ARTIFACTS_DIR", "models")))
}
