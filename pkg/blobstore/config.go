package blobstore

import (
	"context"
	"errors"
	"fmt"
)

const (
	BACKEND_LOCAL = "local"
	BACKEND_S3    = "s3"

	DEFAULT_MEDIA_SUBPATH = "media"
)

type Config struct {
	Backend string `json:"backend" yaml:"backend"` // local or s3
	Local   struct {
		RootPath string `json:"root_path" yaml:"root_path"`
		Subpath  string `json:"subpath" yaml:"subpath"`
	} `json:"local" yaml:"local"`
	S3 S3Config `json:"s3" yaml:"s3"`
}

// New creates the store selected by cfg.Backend. An empty backend means local.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BACKEND_LOCAL:
		if cfg.Local.RootPath == "" {
			return nil, storageErr("init", "", errors.New("local root path not set"))
		}
		subpath := cfg.Local.Subpath
		if subpath == "" {
			subpath = DEFAULT_MEDIA_SUBPATH
		}
		store, err := NewLocalStore(cfg.Local.RootPath, subpath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BACKEND_S3:
		store, err := NewS3Store(ctx, cfg.S3, DEFAULT_MEDIA_SUBPATH)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, storageErr("init", "", fmt.Errorf("unknown blob store backend %q", cfg.Backend))
	}
}
