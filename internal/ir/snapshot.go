package ir

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotSchema is bumped whenever the encoded layout changes.
const SnapshotSchema uint16 = 2

type envelope struct {
	Schema   uint16   `msgpack:"schema"`
	Snapshot Snapshot `msgpack:"snapshot"`
}

// EncodeSnapshot writes s as msgpack. Equal snapshots encode to equal bytes.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(&envelope{Schema: SnapshotSchema, Snapshot: *s}); err != nil {
		return fmt.Errorf("encode ir snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode ir snapshot: %w", err)
	}
	if env.Schema != SnapshotSchema {
		return nil, fmt.Errorf("decode ir snapshot: schema %d, want %d", env.Schema, SnapshotSchema)
	}
	return &env.Snapshot, nil
}

// MarshalSnapshot is EncodeSnapshot into a byte slice.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
