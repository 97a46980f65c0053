// arcgis-export pulls every feature from a municipal feature-server layer
// and writes it out as JSON or as batched INSERT statements.
package main

import (
	"context"
	"encoding/json"
	"os"

	"crimewatch-mcp/internal/arcgis"
	"crimewatch-mcp/internal/logging"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	var (
		layerURL string
		outPath  string
		format   string
		pageSize int
		parallel int
		layerID  int
		logLevel string
	)
	pflag.StringVar(&layerURL, "url", "", "Feature-server layer URL (…/MapServer/<layer>)")
	pflag.StringVar(&outPath, "out", "", "Output file (default stdout)")
	pflag.StringVar(&format, "format", "json", "Output format: json|sql")
	pflag.IntVar(&pageSize, "page-size", 1000, "Features per request")
	pflag.IntVar(&parallel, "parallel", 4, "Concurrent page requests")
	pflag.IntVar(&layerID, "layer-id", 0, "Layer id recorded on each row")
	pflag.StringVar(&logLevel, "log-level", "info", "Log level")
	pflag.Parse()

	logger, err := logging.NewLogger(logLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to init logger", zap.Error(err))
	}
	defer logger.Sync()

	if layerURL == "" {
		logger.Fatal("--url is required")
	}
	if format != "json" && format != "sql" {
		logger.Fatal("--format must be json or sql", zap.String("format", format))
	}

	ctx := context.Background()
	client := arcgis.New(layerURL, logger)
	features, err := client.FetchAll(ctx, pageSize, parallel)
	if err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}
	logger.Info("export complete", zap.Int("features", len(features)))

	var payload []byte
	switch format {
	case "json":
		payload, err = json.MarshalIndent(features, "", "  ")
		if err != nil {
			logger.Fatal("encode features", zap.Error(err))
		}
	case "sql":
		payload = []byte(arcgis.GenerateInsertSQL(features, layerID))
	}

	if outPath == "" {
		os.Stdout.Write(payload)
		return
	}
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		logger.Fatal("write output", zap.Error(err), zap.String("path", outPath))
	}
	logger.Info("wrote output", zap.String("path", outPath), zap.Int("bytes", len(payload)))
}
