package conditionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

// ValkeyStore caches conditions in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "conditions"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (wellbeing.Conditions, bool, error) {
	cmd := s.client.B().Get().Key(s.entryKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return wellbeing.Conditions{}, false, nil
		}
		return wellbeing.Conditions{}, false, err
	}
	var c wellbeing.Conditions
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return wellbeing.Conditions{}, false, err
	}
	return c, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, key string, c wellbeing.Conditions, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload)).Ex(ttl).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

var _ wellbeing.ConditionStore = (*ValkeyStore)(nil)
