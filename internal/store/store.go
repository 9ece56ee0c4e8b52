/*
Package store provides the durable client-state layer shared by the session,
chain, and conversation stores.

Each state store persists an explicit allow-listed view of its fields as a
JSON value under a well-known key; nothing else survives a restart. Storage is
the only resource shared across runs, so implementations must be safe for
concurrent use by independent stores.
*/
package store

import "encoding/json"

// Persisted state keys. One key per store.
const (
	KeySession      = "roboveda.session"
	KeyTransactions = "roboveda.chain.transactions"
)

// Storage is a key/value bucket of JSON documents.
type Storage interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// SaveJSON marshals v and stores it under key.
func SaveJSON(s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, raw)
}

// LoadJSON reads key into dst. It returns false when the key is absent.
func LoadJSON(s Storage, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}
