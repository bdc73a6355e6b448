// Package localstore is the client's durable key/value state: the pseudonym,
// the logged-in user id and the offline copies of threads and suggestions.
//
// Values are strings. Structured values are JSON encoded with SetJSON and
// read back with GetJSON.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sakif/samewave/internal/apperror"
)

const (
	KeyUsername    = "samewave_username"
	KeyUserID      = "samewave_user_id"
	KeyThreads     = "samewave_threads"
	KeySuggestions = "samewave_suggestions"
)

// Store is implemented by FileStore and RedisStore.
type Store interface {
	// Get reports ok=false for a missing key.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON decodes the value under key into v. A value that does not decode
// is reported as apperror.ErrMalformed; the caller decides whether to drop it.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, apperror.Malformed(key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localstore: encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
