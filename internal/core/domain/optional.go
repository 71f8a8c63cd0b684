package domain

import (
	"bytes"
	"encoding/json"
)

// Field is an optional request value. It tells apart a key that was absent,
// one sent as null, one holding the wrong JSON type, and a usable value.
type Field[T any] struct {
	Value   T
	Set     bool
	Null    bool
	Invalid bool
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// NullField returns a field explicitly sent as null.
func NullField[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present reports whether the field carries a non-null value (valid or not).
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

// UnmarshalJSON never fails: a type mismatch is recorded in Invalid so the
// validation layer can report it in field order.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		f.Invalid = true
		return nil
	}
	f.Value = v
	return nil
}

// MarshalJSON renders the value, or null when absent.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() || f.Invalid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
