package progress

import (
	"context"
	"encoding/json"
	"fmt"
)

// StorageKey is the fixed key the record is kept under.
const StorageKey = "python-learning-progress"

type Store interface {
	// LoadRecord returns nil and no error when nothing has been saved yet.
	LoadRecord(ctx context.Context) (*Record, error)
	SaveRecord(ctx context.Context, rec Record) error
}

type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// KVStore keeps the record as a JSON document in a key/value backend.
type KVStore struct {
	kv  KeyValue
	key string
}

func NewKVStore(kv KeyValue) *KVStore {
	return &KVStore{kv: kv, key: StorageKey}
}

func (s *KVStore) LoadRecord(ctx context.Context) (*Record, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &rec, nil
}

func (s *KVStore) SaveRecord(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
