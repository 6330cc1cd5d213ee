// Package jsonfs persists values as pretty printed JSON files on the local filesystem
package jsonfs

import (
	"context"
	"os"
	"path/filepath"

	perr "repotraffic/internal/platform/errors"
	"repotraffic/internal/platform/logger"

	json "github.com/goccy/go-json"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// Sink writes JSON documents below the working directory or absolute paths
type Sink struct {
	log *logger.Logger
}

// New returns a Sink logging under the "jsonfs" component
func New() *Sink { return &Sink{log: logger.Named("jsonfs")} }

// WriteJSON encodes v with two space indentation and replaces path atomically.
// Parent directories are created as needed; an existing file is overwritten
func (s *Sink) WriteJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodePersistence, "write cancelled")
	}
	if path == "" {
		return perr.Persistencef("empty output path")
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "encode %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "create directory for %s", path)
	}
	if err := writeAtomic(path, b); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "write %s", path)
	}
	s.log.Debug().Str("path", path).Int("bytes", len(b)).Msg("wrote json file")
	return nil
}

// writeAtomic stages b in a .part sibling, syncs it and renames it over path.
// The .part file never outlives a failed call
func writeAtomic(path string, b []byte) error {
	tmp := path + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
