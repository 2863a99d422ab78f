// Package filestore keeps session values in a JSON file, so that a session outlives the process.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/SaurabhAlex/school-management-web/core"
)

const fileMode = 0o600

type Storage struct {
	mutex sync.Mutex
	path  string
	log   core.Logger
}

type Option func(*Storage)

func WithLogger(log core.Logger) Option {
	return func(s *Storage) {
		if log != nil {
			s.log = log
		}
	}
}

// New stores values in dir/name, creating dir when needed.
func New(dir, name string, opts ...Option) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	s := &Storage{path: filepath.Join(dir, name), log: core.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Storage) Path() string { return s.path }

func (s *Storage) Get(key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	table, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := table[key]
	return v, ok, nil
}

func (s *Storage) Set(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	table, err := s.load()
	if err != nil {
		return err
	}
	table[key] = value
	return s.save(table)
}

func (s *Storage) Remove(keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	table, err := s.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(table, key)
	}
	if len(table) == 0 {
		if err = os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", s.path)
		}
		return nil
	}
	return s.save(table)
}

func (s *Storage) load() (map[string]string, error) {
	table := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	if err = json.Unmarshal(data, &table); err != nil {
		// an unreadable session is no session; the next save overwrites it
		s.log.Warn("discarding malformed session file", errors.Wrapf(err, "decoding %s", s.path))
		return make(map[string]string), nil
	}
	return table, nil
}

// save replaces the file atomically.
func (s *Storage) save(table map[string]string) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing session")
	}
	if err = tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing session")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing session")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "saving session")
}
