package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
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

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		CivicDB db.DBConfigYaml `json:"civic_db" yaml:"civic_db"`
	} `json:"db_configs" yaml:"db_configs"`

	TaskConfigs struct {
		DropIndexes    DropIndexesMode      `json:"drop_indexes" yaml:"drop_indexes"`
		CreateIndexes  bool                 `json:"create_indexes" yaml:"create_indexes"`
		GetIndexes     bool                 `json:"get_indexes" yaml:"get_indexes"`
		MigrationTasks MigrationTasksConfig `json:"migration_tasks" yaml:"migration_tasks"`
	} `json:"task_configs" yaml:"task_configs"`
}

type MigrationTasksConfig struct {
	NormalizeReportArrays bool `json:"normalize_report_arrays" yaml:"normalize_report_arrays"`
}

type DropIndexesMode string

const (
	DropIndexesModeAll      DropIndexesMode = "all"
	DropIndexesModeDefaults DropIndexesMode = "defaults"
	DropIndexesModeNone     DropIndexesMode = "none"
)

func (mode DropIndexesMode) IsValid() bool {
	switch mode {
	case DropIndexesModeAll, DropIndexesModeDefaults, DropIndexesModeNone:
		return true
	default:
		return false
	}
}

type secretsFromEnv struct {
	DBUsername string `env:"DB_USERNAME"`
	DBPassword string `env:"DB_PASSWORD"`
}

var conf config

var civicDBService *civicDB.CivicDBService

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

	if err := validateConfig(); err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	if !hasTasks() {
		slog.Warn("no tasks configured, nothing to do")
		return
	}

	initDBs()
}

func validateConfig() error {
	// an empty value means the field was omitted
	if conf.TaskConfigs.DropIndexes == "" {
		conf.TaskConfigs.DropIndexes = DropIndexesModeNone
	}
	if !conf.TaskConfigs.DropIndexes.IsValid() {
		return fmt.Errorf("invalid drop indexes mode for task_configs.drop_indexes: %q. Use one of: %v",
			conf.TaskConfigs.DropIndexes,
			[]DropIndexesMode{DropIndexesModeAll, DropIndexesModeDefaults, DropIndexesModeNone},
		)
	}
	return nil
}

func hasTasks() bool {
	tasks := conf.TaskConfigs
	return tasks.DropIndexes != DropIndexesModeNone ||
		tasks.CreateIndexes ||
		tasks.GetIndexes ||
		tasks.MigrationTasks.NormalizeReportArrays
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
}

func initDBs() {
	// index creation is an explicit task here, never a side effect of connecting
	dbConf := db.DBConfigFromYamlObj(conf.DBConfigs.CivicDB)
	dbConf.RunIndexCreation = false

	var err error
	civicDBService, err = civicDB.NewCivicDBService(dbConf)
	if err != nil {
		slog.Error("Error connecting to Civic DB", slog.String("error", err.Error()))
		panic(err)
	}
}
