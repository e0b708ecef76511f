// Package hashing computes content-addressed hashes over Time Table
// material. The serialization is stable: object keys are sorted
// recursively and arrays keep their order, so logically identical
// content always hashes identically regardless of map insertion order
// in the underlying store.
package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// StableMarshal serializes v to canonical JSON: the value is first
// round-tripped through encoding/json to reduce it to maps, slices and
// primitives, then re-encoded with all object keys sorted.
func StableMarshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("reparse value: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("marshal key %q: %w", k, err)
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		// Primitives (string, float64, bool, nil) have one encoding.
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("marshal primitive: %w", err)
		}
		buf.Write(raw)
		return nil
	}
}

// Hash returns the hex sha256 of the stable serialization of v.
func Hash(v any) (string, error) {
	canonical, err := StableMarshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// HashSpecAndRows hashes the pair a Time Table is addressed by. The
// hash always covers the full materialized row set, independent of how
// many rows a caller previews.
func HashSpecAndRows(spec any, rows any) (string, error) {
	return Hash(map[string]any{
		"spec": spec,
		"rows": rows,
	})
}
