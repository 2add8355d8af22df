package tradebook

import (
	"bytes"
	"encoding/json"
)

// Opt is an optional value. The zero value is unset, which is how an unknown
// stop-loss or an unavailable account value travels through the engine.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some returns a set optional.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

// None returns an unset optional.
func None[T any]() Opt[T] { return Opt[T]{} }

// Get returns the value and whether it is set.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

func (o Opt[T]) IsSet() bool { return o.ok }

// Or returns the value, or def when unset.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
