package blobstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Store keeps media bytes under opaque references (local path or URL). Implementations
// hold no per-call mutable state and can be used concurrently for distinct names.
type Store interface {
	// Reference returns the reference a blob stored under name will have.
	Reference(name string) string
	// Put moves the staged file at srcPath into durable storage under name.
	Put(ctx context.Context, srcPath string, name string) (string, error)
	// Remove deletes the blob behind ref. Removing a missing blob is not an error.
	Remove(ctx context.Context, ref string) error
	// List returns every stored blob.
	List(ctx context.Context) ([]BlobInfo, error)
}

type BlobInfo struct {
	Ref     string
	Name    string
	Size    int64
	ModTime time.Time
}

// StorageError is the only error kind returned by a Store.
type StorageError struct {
	Op  string
	Ref string
	Err error
}

func (e *StorageError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("blob storage %s %s: %v", e.Op, e.Ref, e.Err)
	}
	return fmt.Sprintf("blob storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, ref string, err error) error {
	return &StorageError{Op: op, Ref: ref, Err: err}
}

// checkName rejects names that would escape the store directory or prefix.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid blob name %q", name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("blob name %q must not contain path separators", name)
	}
	return nil
}
