// Package input defines the opaque payload contract consumed by the
// corpus layer.
//
// The corpus never inspects payload structure. It only needs to turn a
// payload into raw bytes for persistence and to rebuild a payload from
// raw bytes on load. Anything satisfying Input can live in a corpus;
// Bytes is the canonical raw-bytes payload used by seed import and by
// on-disk loading.
package input

// Input is a single fuzzing payload.
//
// Serialize must produce the exact byte content to persist; a payload
// deserialized from those bytes must serialize back to them. The
// corpus relies on this round-trip for write-through persistence.
type Input interface {
	// Serialize returns the raw byte content of the payload.
	Serialize() ([]byte, error)

	// Clone returns a deep copy. Mutation engines take a clone before
	// editing so corpus entries stay immutable while referenced.
	Clone() Input

	// Len reports the serialized size in bytes without serializing.
	Len() int
}

// Bytes is a raw byte-slice payload. On-disk corpora always
// materialize loaded entries as Bytes, since a persisted input is
// nothing more than its raw byte content.
type Bytes struct {
	data []byte
}

// NewBytes wraps data without copying. The caller must not alias data
// afterwards; use Clone when ownership is unclear.
func NewBytes(data []byte) *Bytes {
	return &Bytes{data: data}
}

// Deserialize rebuilds a Bytes payload from persisted content.
// The slice is copied so the payload owns its storage.
func Deserialize(data []byte) *Bytes {
	return &Bytes{data: append([]byte(nil), data...)}
}

// Serialize returns the underlying bytes. Never fails for Bytes; the
// error return exists for payload types with real encoding steps.
func (b *Bytes) Serialize() ([]byte, error) {
	return b.data, nil
}

// Clone returns an independent copy of the payload.
func (b *Bytes) Clone() Input {
	return &Bytes{data: append([]byte(nil), b.data...)}
}

// Len returns the payload size in bytes.
func (b *Bytes) Len() int {
	return len(b.data)
}

// Data exposes the raw slice for executors. Callers must treat the
// result as read-only.
func (b *Bytes) Data() []byte {
	return b.data
}
