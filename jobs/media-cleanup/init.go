package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/civic-lens/civic-backend/pkg/blobstore"
	"github.com/civic-lens/civic-backend/pkg/db"
	"github.com/civic-lens/civic-backend/pkg/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	civicDB "github.com/civic-lens/civic-backend/pkg/db/civic"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"
	ENV_DOTENV_FILE_PATH = "DOTENV_FILE_PATH"
)

const defaultGracePeriod = 24 * time.Hour

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		CivicDB db.DBConfigYaml `json:"civic_db" yaml:"civic_db"`
	} `json:"db_configs" yaml:"db_configs"`

	BlobStore blobstore.Config `json:"blob_store" yaml:"blob_store"`

	CleanUpConfig struct {
		// blobs younger than this are never removed
		GracePeriod string `json:"grace_period" yaml:"grace_period"`
		DryRun      bool   `json:"dry_run" yaml:"dry_run"`
	} `json:"clean_up_config" yaml:"clean_up_config"`
}

type secretsFromEnv struct {
	DBUsername  string `env:"DB_USERNAME"`
	DBPassword  string `env:"DB_PASSWORD"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

var conf config

var (
	civicDBService *civicDB.CivicDBService
	blobStore      blobstore.Store
	gracePeriod    time.Duration
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	gracePeriod, err = utils.ParseOptionalDuration(conf.CleanUpConfig.GracePeriod, defaultGracePeriod)
	if err != nil {
		panic(err)
	}

	initDBs()
	initBlobStore()
}

func secretsOverride() {
	if path := os.Getenv(ENV_DOTENV_FILE_PATH); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	}

	secrets := secretsFromEnv{}
	if err := env.Parse(&secrets); err != nil {
		panic(err)
	}

	if secrets.DBUsername != "" {
		conf.DBConfigs.CivicDB.Username = secrets.DBUsername
	}
	if secrets.DBPassword != "" {
		conf.DBConfigs.CivicDB.Password = secrets.DBPassword
	}
	if secrets.S3AccessKey != "" {
		conf.BlobStore.S3.AccessKey = secrets.S3AccessKey
	}
	if secrets.S3SecretKey != "" {
		conf.BlobStore.S3.SecretKey = secrets.S3SecretKey
	}
}

func initDBs() {
	var err error
	civicDBService, err = civicDB.NewCivicDBService(db.DBConfigFromYamlObj(conf.DBConfigs.CivicDB))
	if err != nil {
		slog.Error("Error connecting to Civic DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initBlobStore() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	blobStore, err = blobstore.New(ctx, conf.BlobStore)
	if err != nil {
		slog.Error("Error initializing blob store", slog.String("error", err.Error()))
		panic(err)
	}
}
