package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// GetBool reads a flag stored as "true"/"false".
func GetBool(ctx context.Context, kv KV, key string) (value bool, found bool, err error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return false, found, err
	}
	return raw == "true", true, nil
}

func SetBool(ctx context.Context, kv KV, key string, value bool) error {
	return kv.Set(ctx, key, strconv.FormatBool(value))
}

// GetInt reads an integer value. A value that does not parse is reported as an error.
func GetInt(ctx context.Context, kv KV, key string) (value int, found bool, err error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return 0, found, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, true, nil
}

func SetInt(ctx context.Context, kv KV, key string, value int) error {
	return kv.Set(ctx, key, fmt.Sprintf("%d", value))
}

// GetJSON decodes a JSON value into v and reports whether the key exists.
func GetJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
