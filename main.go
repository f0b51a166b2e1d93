package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"econsim/db"
	"econsim/econ"
	qhttp "econsim/http"
	"econsim/logging"
	"econsim/ml"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		Path  string `yaml:"path"`
	} `yaml:"log"`
	Model struct {
		Type         string `yaml:"type"`
		Path         string `yaml:"path"`
		EncoderPath  string `yaml:"encoder_path"`
		FeaturesPath string `yaml:"features_path"`
	} `yaml:"model"`
	Baseline struct {
		Window int `yaml:"window"`
	} `yaml:"baseline"`
}

func main() {
	// Optional .env for local development and deploy-time overrides
	_ = godotenv.Load()

	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Http.Port = p
		}
	}

	// 2. Initialize logging
	if err := logging.Init(config.Log.Level, config.Log.Path); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer zap.L().Sync()

	// 3. Load all artifacts; any failure here must keep the process
	// from ever serving a request.
	services, err := buildServices(config)
	if err != nil {
		zap.L().Fatal("startup load failed", zap.Error(err))
	}
	defer db.Close()

	// 4. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = config.Http.Port
	server := qhttp.NewServer(serverConfig, services)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	if err := server.Stop(); err != nil {
		zap.L().Error("server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// buildServices loads the observation table and the trained artifacts
// and assembles the immutable context every request handler shares.
func buildServices(config *Config) (*qhttp.Services, error) {
	if err := db.InitDB(config.Database.Path); err != nil {
		return nil, &econ.StartupLoadError{Artifact: "observation store", Err: err}
	}

	observations, err := db.QueryObservations()
	if err != nil {
		return nil, &econ.StartupLoadError{Artifact: "observation table", Err: err}
	}
	index := econ.NewHistoryIndex(observations)

	encoder, err := ml.LoadCountryEncoder(config.Model.EncoderPath)
	if err != nil {
		return nil, &econ.StartupLoadError{Artifact: "country encoder", Err: err}
	}

	featureInfo, err := ml.LoadFeatureInfo(config.Model.FeaturesPath)
	if err != nil {
		return nil, &econ.StartupLoadError{Artifact: "feature info", Err: err}
	}
	if err := featureInfo.Verify(); err != nil {
		return nil, &econ.StartupLoadError{Artifact: "feature info", Err: err}
	}

	model, err := ml.LoadModel(config.Model.Type, config.Model.Path)
	if err != nil {
		return nil, &econ.StartupLoadError{Artifact: "scenario model", Err: err}
	}

	predictor, err := ml.NewScenarioPredictor(encoder, model)
	if err != nil {
		return nil, &econ.StartupLoadError{Artifact: "scenario model", Err: err}
	}

	estimator := econ.NewBaselineEstimator(index, config.Baseline.Window)

	minYear, maxYear := index.YearRange()
	zap.L().Info("artifacts loaded",
		zap.Int("observations", index.Size()),
		zap.Int("countries", len(index.Countries())),
		zap.Int("min_year", minYear),
		zap.Int("max_year", maxYear),
		zap.Int("encoder_classes", len(encoder.Classes())))

	return qhttp.NewServices(index, estimator, predictor), nil
}
