package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	value   string
	expires time.Time // нулевое время — без срока
}

// MemoryStore хранит данные и кэш в памяти процесса.
//
// Данные можно загрузить из JSON-файла (LoadSeed). Операции защищены
// RWMutex: чтения идут параллельно, записи — по одной.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	cache map[string]cacheEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]string),
		cache: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// Set записывает постоянное значение.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) CacheGet(ctx context.Context, key string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.cache[key]
	if !ok || (!e.expires.IsZero() && !s.now().Before(e.expires)) {
		return "", false
	}
	return e.value, true
}

func (s *MemoryStore) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.cache[key] = e
}

func (s *MemoryStore) Close() error { return nil }

// LoadSeed загружает постоянные данные из JSON-файла вида
// {"i:1": ["cars", "pets"], "key": "value"}.
//
// Строки сохраняются как есть, остальные значения — компактным JSON.
// Отсутствующий или пустой файл — не ошибка (первый запуск).
func (s *MemoryStore) LoadSeed(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var seed map[string]json.RawMessage
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed %s: %w", filename, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, raw := range seed {
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			s.data[key] = str
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("seed key %q: %w", key, err)
		}
		s.data[key] = buf.String()
	}
	return nil
}
