package memstore

import "sync"

// Storage keeps session values in process memory.
type Storage struct {
	mutex sync.RWMutex
	table map[string]string
}

func New() *Storage {
	return &Storage{table: make(map[string]string)}
}

func (s *Storage) Get(key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.table[key]
	return v, ok, nil
}

func (s *Storage) Set(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = value
	return nil
}

func (s *Storage) Remove(keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, key := range keys {
		delete(s.table, key)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *Storage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
