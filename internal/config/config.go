package config

import (
	"os"
	"path/filepath"
	"strconv"

	"chainsight/internal/engine"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Engine   engine.Config
	DataPath string
	LogDir   string
}

// Load loads the configuration from .env files and environment variables.
// Engine tunables default to the standard pipeline parameters.
func Load() (*AppConfig, error) {
	// 1. Try the executable's directory first (the binary is often launched
	// by an MCP host with an arbitrary working directory).
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to the current working directory (development/go run).
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	def := engine.DefaultConfig()
	cfg := &AppConfig{
		Engine: engine.Config{
			Seed:                 getEnvInt64("CHAINSIGHT_SEED", def.Seed),
			MetricSampleCap:      getEnvInt("CHAINSIGHT_METRIC_SAMPLE_CAP", def.MetricSampleCap),
			AnomalyTrees:         getEnvInt("CHAINSIGHT_ANOMALY_TREES", def.AnomalyTrees),
			AnomalyContamination: getEnvFloat("CHAINSIGHT_ANOMALY_CONTAMINATION", def.AnomalyContamination),
			AnomalyFitCap:        getEnvInt("CHAINSIGHT_ANOMALY_FIT_CAP", def.AnomalyFitCap),
		},
		DataPath: dataPath,
		LogDir:   logDir,
	}

	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
