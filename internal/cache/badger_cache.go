package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheNil  = errors.New("cache is nil")
)

// BadgerCache implements Cache on top of an embedded Badger store, used
// to memoize readiness reports for ReadinessCacheTTL.
type BadgerCache struct {
	db  *badger.DB
	log zerolog.Logger
}

// NewBadgerCache opens (or creates) a Badger store at path.
func NewBadgerCache(path string, log zerolog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	c := &BadgerCache{db: db, log: log}
	go c.runGC()
	return c, nil
}

func (c *BadgerCache) runGC() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if err := c.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
			c.log.Warn().Err(err).Msg("cache garbage collection failed")
		}
	}
}

func (c *BadgerCache) Get(ctx context.Context, key string, value any) error {
	if c == nil || c.db == nil {
		return ErrCacheNil
	}

	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		if item.IsDeletedOrExpired() {
			return badger.ErrKeyNotFound
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("cache deserialize: %w", err)
	}
	return nil
}

func (c *BadgerCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.db == nil {
		return ErrCacheNil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache serialize: %w", err)
	}

	const maxTTL = time.Hour
	effectiveTTL := ttl
	if ttl <= 0 || ttl > maxTTL {
		effectiveTTL = maxTTL
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(effectiveTTL)
		return txn.SetEntry(entry)
	})
}

func (c *BadgerCache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.db == nil {
		return ErrCacheNil
	}
	return c.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}

// DeletePattern removes every key with the given prefix, where pattern is
// written as "prefix*" (the only wildcard form this cache supports).
func (c *BadgerCache) DeletePattern(ctx context.Context, pattern string) error {
	if c == nil || c.db == nil {
		return ErrCacheNil
	}
	prefix := []byte(strings.TrimSuffix(pattern, "*"))

	return c.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *BadgerCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// NoOpCache discards everything, used when CachePath cannot be opened and
// the process chooses to degrade to uncached readiness reports rather
// than fail to start.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache { return &NoOpCache{} }

func (NoOpCache) Get(ctx context.Context, key string, value any) error { return ErrCacheMiss }
func (NoOpCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
func (NoOpCache) Delete(ctx context.Context, keys ...string) error        { return nil }
func (NoOpCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (NoOpCache) Close() error                                            { return nil }
