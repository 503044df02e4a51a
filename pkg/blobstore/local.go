package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs in <rootPath>/<subpath>. References are file paths.
type LocalStore struct {
	dir string
}

func NewLocalStore(rootPath string, subpath string) (*LocalStore, error) {
	if rootPath == "" {
		return nil, storageErr("init", "", errors.New("root path is empty"))
	}
	// references are persisted in reports and must not depend on the working directory
	if !filepath.IsAbs(rootPath) {
		return nil, storageErr("init", rootPath, errors.New("root path must be absolute"))
	}
	dir, err := filepath.Abs(filepath.Join(rootPath, subpath))
	if err != nil {
		return nil, storageErr("init", "", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("init", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Reference(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *LocalStore) Put(ctx context.Context, srcPath string, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", storageErr("put", name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", storageErr("put", name, err)
	}

	target := s.Reference(name)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", storageErr("put", target, err)
	}

	if err := os.Rename(srcPath, target); err != nil {
		// rename fails across devices (temp dir on another mount), fall back to copy
		var linkErr *os.LinkError
		if !errors.As(err, &linkErr) {
			return "", storageErr("put", target, err)
		}
		if err := copyFile(srcPath, target); err != nil {
			return "", storageErr("put", target, err)
		}
		if err := os.Remove(srcPath); err != nil {
			slog.Warn("could not remove staged file after copy", slog.String("path", srcPath), slog.String("error", err.Error()))
		}
	}
	return target, nil
}

func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	path, err := s.pathForReference(ref)
	if err != nil {
		return storageErr("remove", ref, err)
	}
	if err := ctx.Err(); err != nil {
		return storageErr("remove", ref, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return storageErr("remove", ref, err)
	}
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storageErr("list", s.dir, err)
	}

	blobs := make([]BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, storageErr("list", s.dir, err)
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed while listing
			continue
		}
		blobs = append(blobs, BlobInfo{
			Ref:     s.Reference(entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return blobs, nil
}

// pathForReference only accepts references that point directly into the store directory.
func (s *LocalStore) pathForReference(ref string) (string, error) {
	if ref == "" {
		return "", errors.New("empty reference")
	}
	path := filepath.Clean(ref)
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return "", err
	}
	if rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("reference %q is outside the store", ref)
	}
	return path, nil
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
