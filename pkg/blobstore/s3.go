package blobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Region    string `json:"region" yaml:"region"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
	// PublicURL is the base of the references handed out, defaults to the endpoint URL.
	PublicURL string `json:"public_url" yaml:"public_url"`
}

// S3Store keeps blobs in an S3 compatible bucket under <prefix>/<name>. References are URLs.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
	base   string
}

func NewS3Store(ctx context.Context, cfg S3Config, prefix string) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, storageErr("init", "", errors.New("endpoint and bucket are required"))
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, storageErr("init", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, storageErr("init", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, storageErr("init", cfg.Bucket, err)
		}
		slog.Info("created media bucket", slog.String("bucket", cfg.Bucket))
	}

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(prefix, "/"),
		base:   publicBase(cfg),
	}, nil
}

func publicBase(cfg S3Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, strings.TrimRight(cfg.Endpoint, "/"))
}

func (s *S3Store) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Store) Reference(name string) string {
	return s.base + "/" + s.bucket + "/" + s.objectKey(name)
}

// keyForReference maps a reference back to its object key and rejects foreign URLs.
func (s *S3Store) keyForReference(ref string) (string, error) {
	root := s.base + "/" + s.bucket + "/"
	if !strings.HasPrefix(ref, root) {
		return "", fmt.Errorf("reference %q does not belong to bucket %s", ref, s.bucket)
	}
	key := strings.TrimPrefix(ref, root)
	name := key
	if s.prefix != "" {
		if !strings.HasPrefix(key, s.prefix+"/") {
			return "", fmt.Errorf("reference %q is outside prefix %s", ref, s.prefix)
		}
		name = strings.TrimPrefix(key, s.prefix+"/")
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	return key, nil
}

func (s *S3Store) Put(ctx context.Context, srcPath string, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", storageErr("put", name, err)
	}

	key := s.objectKey(name)
	_, err := s.client.FPutObject(ctx, s.bucket, key, srcPath, minio.PutObjectOptions{
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
	})
	if err != nil {
		return "", storageErr("put", key, err)
	}

	if err := os.Remove(srcPath); err != nil {
		slog.Warn("could not remove staged file after upload", slog.String("path", srcPath), slog.String("error", err.Error()))
	}
	return s.Reference(name), nil
}

func (s *S3Store) Remove(ctx context.Context, ref string) error {
	key, err := s.keyForReference(ref)
	if err != nil {
		return storageErr("remove", ref, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return storageErr("remove", ref, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context) ([]BlobInfo, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if s.prefix != "" {
		opts.Prefix = s.prefix + "/"
	}

	// stops the listing goroutine when returning early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	blobs := []BlobInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, storageErr("list", s.bucket, obj.Err)
		}
		name := path.Base(obj.Key)
		blobs = append(blobs, BlobInfo{
			Ref:     s.base + "/" + s.bucket + "/" + obj.Key,
			Name:    name,
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}
	return blobs, nil
}
