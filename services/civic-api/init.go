package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/blobstore"
	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/civic-lens/civic-backend/pkg/db"
	"github.com/civic-lens/civic-backend/pkg/spamcheck"
	"github.com/civic-lens/civic-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	civicDB "github.com/civic-lens/civic-backend/pkg/db/civic"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"
	ENV_DOTENV_FILE_PATH = "DOTENV_FILE_PATH"
)

const (
	defaultUploadSizeLimit = 10 << 20 // 10 MB
	defaultSpamCacheTTL    = 24 * time.Hour
)

type CivicApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`

		MetricsAPIKeys []string `json:"metrics_api_keys" yaml:"metrics_api_keys"`
	} `json:"gin_config" yaml:"gin_config"`

	IdentityJWTConfig struct {
		SignKey string `json:"sign_key" yaml:"sign_key"`
	} `json:"identity_jwt_config" yaml:"identity_jwt_config"`

	// DB configs
	DBConfigs struct {
		CivicDB db.DBConfigYaml `json:"civic_db" yaml:"civic_db"`
	} `json:"db_configs" yaml:"db_configs"`

	BlobStore blobstore.Config `json:"blob_store" yaml:"blob_store"`

	SpamCheck struct {
		URL     string                       `json:"url" yaml:"url"`
		APIKey  string                       `json:"api_key" yaml:"api_key"`
		Timeout string                       `json:"timeout" yaml:"timeout"`
		MTLS    *apihelpers.CertificatePaths `json:"mtls" yaml:"mtls"`
		Cache   struct {
			RedisURL string `json:"redis_url" yaml:"redis_url"`
			TTL      string `json:"ttl" yaml:"ttl"`
		} `json:"cache" yaml:"cache"`
	} `json:"spam_check" yaml:"spam_check"`

	Upload struct {
		SizeLimit int64  `json:"size_limit" yaml:"size_limit"`
		TempDir   string `json:"temp_dir" yaml:"temp_dir"`
	} `json:"upload" yaml:"upload"`
}

// secretsFromEnv lists the values that may be supplied through the environment instead of the
// config file.
type secretsFromEnv struct {
	DBUsername     string   `env:"DB_USERNAME"`
	DBPassword     string   `env:"DB_PASSWORD"`
	JWTSignKey     string   `env:"IDENTITY_JWT_SIGN_KEY"`
	S3AccessKey    string   `env:"S3_ACCESS_KEY"`
	S3SecretKey    string   `env:"S3_SECRET_KEY"`
	SpamAPIKey     string   `env:"SPAM_API_KEY"`
	RedisURL       string   `env:"REDIS_URL"`
	MetricsAPIKeys []string `env:"METRICS_API_KEYS" envSeparator:","`
}

var (
	conf CivicApiConfig

	civicDBService *civicDB.CivicDBService
	blobStore      blobstore.Store
	spamGate       *spamcheck.Gate
	verdictCache   *spamcheck.RedisVerdictCache
	civicService   *civic.Service
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

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if conf.IdentityJWTConfig.SignKey == "" {
		slog.Error("identity token sign key not set")
		panic("identity token sign key not set")
	}

	if conf.Upload.SizeLimit <= 0 {
		conf.Upload.SizeLimit = defaultUploadSizeLimit
	}
	if conf.Upload.TempDir == "" {
		conf.Upload.TempDir = os.TempDir()
	}

	initDBs()
	initBlobStore()
	initSpamGate()

	civicService = civic.NewService(civicDBService, civicDBService, civicDBService, blobStore, spamGate)
}

func secretsOverride() {
	if path := os.Getenv(ENV_DOTENV_FILE_PATH); path != "" {
		if err := godotenv.Load(path); err != nil {
			slog.Error("failed to load dotenv file", slog.String("path", path), slog.String("error", err.Error()))
			panic(err)
		}
	} else if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file from working directory")
	}

	secrets := secretsFromEnv{}
	if err := env.Parse(&secrets); err != nil {
		slog.Error("failed to parse environment", slog.String("error", err.Error()))
		panic(err)
	}

	if secrets.DBUsername != "" {
		conf.DBConfigs.CivicDB.Username = secrets.DBUsername
	}
	if secrets.DBPassword != "" {
		conf.DBConfigs.CivicDB.Password = secrets.DBPassword
	}
	if secrets.JWTSignKey != "" {
		conf.IdentityJWTConfig.SignKey = secrets.JWTSignKey
	}
	if secrets.S3AccessKey != "" {
		conf.BlobStore.S3.AccessKey = secrets.S3AccessKey
	}
	if secrets.S3SecretKey != "" {
		conf.BlobStore.S3.SecretKey = secrets.S3SecretKey
	}
	if secrets.SpamAPIKey != "" {
		conf.SpamCheck.APIKey = secrets.SpamAPIKey
	}
	if secrets.RedisURL != "" {
		conf.SpamCheck.Cache.RedisURL = secrets.RedisURL
	}
	if len(secrets.MetricsAPIKeys) > 0 {
		conf.GinConfig.MetricsAPIKeys = secrets.MetricsAPIKeys
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
		slog.Error("Error initializing blob store", slog.String("backend", conf.BlobStore.Backend), slog.String("error", err.Error()))
		panic(err)
	}
}

func initSpamGate() {
	timeout, err := utils.ParseOptionalDuration(conf.SpamCheck.Timeout, 0)
	if err != nil {
		panic(err)
	}

	var cache spamcheck.VerdictCache
	if conf.SpamCheck.Cache.RedisURL != "" {
		ttl, err := utils.ParseOptionalDuration(conf.SpamCheck.Cache.TTL, defaultSpamCacheTTL)
		if err != nil {
			panic(err)
		}
		verdictCache, err = spamcheck.NewRedisVerdictCache(conf.SpamCheck.Cache.RedisURL, ttl)
		if err != nil {
			// the cache is an optimisation, run without it
			slog.Error("spam verdict cache unavailable", slog.String("error", err.Error()))
		} else {
			cache = verdictCache
		}
	}

	spamGate, err = spamcheck.NewGate(spamcheck.Config{
		URL:     conf.SpamCheck.URL,
		APIKey:  conf.SpamCheck.APIKey,
		Timeout: timeout,
		MTLS:    conf.SpamCheck.MTLS,
	}, cache)
	if err != nil {
		slog.Error("Error initializing spam gate", slog.String("error", err.Error()))
		panic(err)
	}
}
