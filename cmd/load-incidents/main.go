// load-incidents bulk-loads exported features into the incidents table via
// the binary copy protocol. Input is either a JSON export produced by
// arcgis-export or a live feature-server URL.
package main

import (
	"context"
	"encoding/json"
	"os"

	"crimewatch-mcp/internal/arcgis"
	"crimewatch-mcp/internal/config"
	"crimewatch-mcp/internal/db"
	"crimewatch-mcp/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	var (
		dsn      string
		inPath   string
		layerURL string
		pageSize int
		parallel int
		layerID  int
		truncate bool
		logLevel string
	)
	pflag.StringVar(&dsn, "dsn", "", "Crime database DSN (postgres://...)")
	pflag.StringVar(&inPath, "in", "", "JSON feature export to load")
	pflag.StringVar(&layerURL, "url", "", "Feature-server layer URL to fetch instead of --in")
	pflag.IntVar(&pageSize, "page-size", 1000, "Features per request when fetching")
	pflag.IntVar(&parallel, "parallel", 4, "Concurrent page requests when fetching")
	pflag.IntVar(&layerID, "layer-id", 0, "Layer id recorded on each row")
	pflag.BoolVar(&truncate, "truncate", false, "Truncate incidents before loading")
	pflag.StringVar(&logLevel, "log-level", "info", "Log level")
	pflag.Parse()

	logger, err := logging.NewLogger(logLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to init logger", zap.Error(err))
	}
	defer logger.Sync()

	if dsn == "" {
		dsn = os.Getenv("CRIMEWATCH_MCP_DATABASE_DSN")
	}
	if dsn == "" {
		logger.Fatal("--dsn or CRIMEWATCH_MCP_DATABASE_DSN is required")
	}
	if (inPath == "") == (layerURL == "") {
		logger.Fatal("exactly one of --in or --url is required")
	}

	ctx := context.Background()
	features, err := loadFeatures(ctx, inPath, layerURL, pageSize, parallel, logger)
	if err != nil {
		logger.Fatal("load features", zap.Error(err))
	}
	logger.Info("features ready", zap.Int("count", len(features)))

	cfg := config.Config{
		DatabaseDSN:           dsn,
		ConnectTimeoutSeconds: 5,
		StatementTimeoutMs:    300000,
		AppName:               "crimewatch-load-incidents",
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("connect", zap.Error(err), logging.FieldDSN("dsn", dsn))
	}
	defer pool.Close()

	if truncate {
		if _, err := pool.Exec(ctx, "TRUNCATE incidents"); err != nil {
			logger.Fatal("truncate incidents", zap.Error(err))
		}
		logger.Info("truncated incidents")
	}

	rows := arcgis.IncidentRows(features, layerID)
	copied, err := pool.CopyFrom(ctx, pgx.Identifier{"incidents"}, arcgis.IncidentColumns, pgx.CopyFromRows(rows))
	if err != nil {
		logger.Fatal("copy incidents", zap.Error(err))
	}
	logger.Info("load complete", zap.Int64("rows", copied))
}

func loadFeatures(ctx context.Context, inPath, layerURL string, pageSize, parallel int, logger *zap.Logger) ([]arcgis.Feature, error) {
	if inPath != "" {
		b, err := os.ReadFile(inPath)
		if err != nil {
			return nil, err
		}
		var features []arcgis.Feature
		if err := json.Unmarshal(b, &features); err != nil {
			return nil, err
		}
		return features, nil
	}
	return arcgis.New(layerURL, logger).FetchAll(ctx, pageSize, parallel)
}
