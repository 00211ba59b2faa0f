package internal

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleKV stores pairs in a Pebble LSM directory
type PebbleKV struct {
	db *pebble.DB
}

// OpenPebbleKV opens (or creates) a Pebble database at dir
func OpenPebbleKV(dir string) (*PebbleKV, error) {
	LogDebug("opening pebble store at %s", dir)
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store: %w", err)
	}
	return &PebbleKV{db: db}, nil
}

func (p *PebbleKV) Get(key string) ([]byte, bool, error) {
	value, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Key: key, Op: "get", Err: err}
	}
	out := append([]byte(nil), value...)
	if err := closer.Close(); err != nil {
		return nil, false, &StorageError{Key: key, Op: "get", Err: err}
	}
	return out, true, nil
}

func (p *PebbleKV) Set(key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

func (p *PebbleKV) Remove(key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return &StorageError{Key: key, Op: "remove", Err: err}
	}
	return nil
}

func (p *PebbleKV) Scan(prefix string) ([]KeyValuePair, error) {
	opts := &pebble.IterOptions{LowerBound: []byte(prefix)}
	if upper := prefixUpperBound([]byte(prefix)); upper != nil {
		opts.UpperBound = upper
	}

	iter, err := p.db.NewIter(opts)
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "scan", Err: err}
	}
	defer iter.Close()

	pairs := make([]KeyValuePair, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		pairs = append(pairs, KeyValuePair{
			Key:   string(iter.Key()),
			Value: append([]byte(nil), iter.Value()...),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, &StorageError{Key: prefix, Op: "scan", Err: err}
	}
	return pairs, nil
}

func (p *PebbleKV) Close() error {
	return p.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
