// Package persistence writes and reads table snapshots: a length-prefixed
// binary dump of one table's entries. Snapshots back the dump/load
// operations and the optional restart restore; the engine itself stays
// in-memory. The filesystem is abstracted with afero so tests run against
// an in-memory fs.
package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/BibekPathak/shark-db/internal/store"
	"github.com/BibekPathak/shark-db/pkg/log"
)

var (
	ErrCorruptSnapshot  = errors.New("persistence: corrupt snapshot")
	ErrSnapshotNotFound = errors.New("persistence: snapshot not found")
)

// Snapshot file layout: magic, version byte, then repeated
// (keyLen uint32, key, valLen uint32, val), little-endian.
const (
	magic   = "SHRKSNP"
	version = 1
)

type Snapshotter struct {
	fs     afero.Fs
	dir    string
	logger zerolog.Logger
}

func NewSnapshotter(fs afero.Fs, dir string) *Snapshotter {
	return &Snapshotter{fs: fs, dir: dir, logger: log.Persist}
}

// Path returns the snapshot path for a table. A non-empty file overrides the
// default name; it is reduced to its base name so callers cannot escape the
// snapshot directory.
func (s *Snapshotter) Path(table, file string) string {
	if file == "" {
		file = table + ".snap"
	}
	return filepath.Join(s.dir, filepath.Base(file))
}

// Dump writes entries to the table's snapshot file. The write goes to a
// temporary file first and is renamed into place, so a crash mid-dump leaves
// the previous snapshot intact.
func (s *Snapshotter) Dump(table, file string, entries []store.Entry) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("persistence: mkdir %s: %w", s.dir, err)
	}
	path := s.Path(table, file)
	tmp := path + ".tmp"

	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("persistence: create %s: %w", tmp, err)
	}
	if err := writeSnapshot(f, entries); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("persistence: close %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("persistence: rename %s: %w", path, err)
	}
	s.logger.Info().Str("table", table).Str("path", path).Int("entries", len(entries)).Msg("snapshot written")
	return nil
}

// Load reads a table's snapshot file back into entries.
func (s *Snapshotter) Load(table, file string) ([]store.Entry, error) {
	path := s.Path(table, file)
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, ErrSnapshotNotFound
	}
	defer f.Close()

	entries, err := readSnapshot(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("table", table).Str("path", path).Int("entries", len(entries)).Msg("snapshot loaded")
	return entries, nil
}

// Remove deletes a table's default snapshot, if any.
func (s *Snapshotter) Remove(table string) error {
	path := s.Path(table, "")
	if _, err := s.fs.Stat(path); err != nil {
		return nil
	}
	return s.fs.Remove(path)
}

// Tables lists table names that have a default snapshot on disk.
func (s *Snapshotter) Tables() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, nil
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if ext := filepath.Ext(name); ext == ".snap" {
			names = append(names, name[:len(name)-len(ext)])
		}
	}
	return names, nil
}

func writeSnapshot(w io.Writer, entries []store.Entry) error {
	hdr := append([]byte(magic), version)
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("persistence: write header: %w", err)
	}
	var lenBuf [4]byte
	for _, e := range entries {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(e.Key)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("persistence: write: %w", err)
		}
		if _, err := w.Write(e.Key); err != nil {
			return fmt.Errorf("persistence: write: %w", err)
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(e.Value)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("persistence: write: %w", err)
		}
		if _, err := w.Write(e.Value); err != nil {
			return fmt.Errorf("persistence: write: %w", err)
		}
	}
	return nil
}

func readSnapshot(r io.Reader) ([]store.Entry, error) {
	hdr := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, ErrCorruptSnapshot
	}
	if string(hdr[:len(magic)]) != magic || hdr[len(magic)] != version {
		return nil, ErrCorruptSnapshot
	}
	var entries []store.Entry
	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				return entries, nil
			}
			return nil, ErrCorruptSnapshot
		}
		key := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, ErrCorruptSnapshot
		}
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, ErrCorruptSnapshot
		}
		val := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, val); err != nil {
			return nil, ErrCorruptSnapshot
		}
		entries = append(entries, store.Entry{Key: key, Value: val})
	}
}
