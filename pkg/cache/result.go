package cache

import (
	"encoding/json"
	"fmt"
)

// Status tags the outcome of a lookup.
type Status int

const (
	// NotFound means no record exists for the key.
	NotFound Status = iota
	// Found means a record exists. It holds either a payload or a recorded
	// failure.
	Found
	// Corrupt means a record exists but could not be decoded.
	Corrupt
)

func (s Status) String() string {
	switch s {
	case NotFound:
		return "not-found"
	case Found:
		return "found"
	case Corrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of [Namespace.Get].
type Result struct {
	Status Status
	// Err is set for Corrupt results.
	Err error

	namespace string
	key       string
	rec       record
}

// Failed reports whether the record is a recorded failure.
func (r Result) Failed() bool {
	return r.Status == Found && r.rec.Failed
}

// Decode unmarshals the payload into v. It returns a [*RecordedError] for
// recorded failures and a [*CorruptError] when the payload does not fit v.
func (r Result) Decode(v any) error {
	switch r.Status {
	case NotFound:
		return ErrCacheMiss
	case Corrupt:
		return r.Err
	}
	if r.rec.Failed {
		return &RecordedError{Namespace: r.namespace, Key: r.key, Msg: r.rec.Msg}
	}
	if err := json.Unmarshal(r.rec.Value, v); err != nil {
		return &CorruptError{Namespace: r.namespace, Key: r.key, Err: err}
	}
	return nil
}

// record is the stored form of a cache entry. Exactly one of Value and
// Failed is set.
type record struct {
	Value  json.RawMessage `json:"value,omitempty"`
	Failed bool            `json:"failed,omitempty"`
	Msg    string          `json:"msg,omitempty"`
}

func decodeRecord(raw json.RawMessage) (record, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, err
	}
	if !rec.Failed && len(rec.Value) == 0 {
		return record{}, errEmptyRecord
	}
	return rec, nil
}
