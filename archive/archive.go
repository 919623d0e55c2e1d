// Package archive reads and writes the base64 binary property-list archives
// embedded in documents (the "_archive" field of KeyValueArchive entities).
//
// An archive is decoded once, on first access, and its "$objects" array is
// cached. Writes re-encode the whole property list and store the new blob in
// the owning entity before the cache is updated, so the blob and the cache
// agree whenever a call returns.
package archive

import (
	"encoding/base64"
	"errors"
	"maps"
	"slices"
	"strconv"

	"howett.net/plist"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/marshal"
)

// BlobField is the entity field holding the encoded archive.
const BlobField = "_archive"

// Null is the keyed-archive placeholder stored for nil slot values.
const Null = "$null"

// State is the decode state of an archive.
type State int

const (
	Unloaded State = iota
	Decoded
)

func (s State) String() string {
	if s == Decoded {
		return "decoded"
	}
	return "unloaded"
}

// KeyValueArchive is the codec bound to one archive field. It is not safe for
// concurrent use.
type KeyValueArchive struct {
	owner *marshal.Entity
	state State
	root  map[string]any
	slots []any
}

// Open binds a codec to an entity declaring the "_archive" field. Nothing is
// decoded until the first read or write.
func Open(e *marshal.Entity) (*KeyValueArchive, error) {
	if e == nil {
		return nil, sketchfmt.IssueAt("", sketchfmt.CodeShapeMismatch, map[string]any{"type": "KeyValueArchive"})
	}
	if _, ok := e.Lookup(BlobField); !ok {
		return nil, sketchfmt.IssueAt("", sketchfmt.CodeFieldNotFound, map[string]any{"type": e.Type(), "field": BlobField})
	}
	return &KeyValueArchive{owner: e}, nil
}

// State reports whether the archive has been decoded.
func (a *KeyValueArchive) State() State { return a.state }

// Blob returns the encoded archive currently stored in the owning entity.
func (a *KeyValueArchive) Blob() string {
	s, _ := a.owner.GetString(BlobField)
	return s
}

// Len returns the number of slots.
func (a *KeyValueArchive) Len() (int, error) {
	if err := a.load(); err != nil {
		return 0, err
	}
	return len(a.slots), nil
}

// ReadSlot returns the value at index i of "$objects". Values are returned as
// decoded by the property-list reader: strings, uint64/int64, float64/float32,
// bool, []byte, plist.UID, arrays and dictionaries.
func (a *KeyValueArchive) ReadSlot(i int) (any, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(a.slots) {
		return nil, outOfRange(i)
	}
	return a.slots[i], nil
}

// WriteSlot stores v at index i and re-encodes the archive.
func (a *KeyValueArchive) WriteSlot(i int, v any) error {
	return a.WriteSlots(map[int]any{i: v})
}

// WriteSlots stores several slot values with a single re-encode. Either every
// update is applied or none is.
func (a *KeyValueArchive) WriteSlots(updates map[int]any) error {
	if err := a.load(); err != nil {
		return err
	}
	slots := slices.Clone(a.slots)
	for i, v := range updates {
		if i < 0 || i >= len(slots) {
			return outOfRange(i)
		}
		if v == nil {
			v = Null
		}
		slots[i] = v
	}
	root := maps.Clone(a.root)
	root["$objects"] = slots
	blob, err := encode(root)
	if err != nil {
		return err
	}
	if err := a.owner.Set(BlobField, blob); err != nil {
		return err
	}
	a.root, a.slots = root, slots
	return nil
}

func (a *KeyValueArchive) load() error {
	if a.state == Decoded {
		return nil
	}
	root, slots, err := decode(a.Blob())
	if err != nil {
		return err
	}
	a.root, a.slots, a.state = root, slots, Decoded
	return nil
}

func decode(blob string) (map[string]any, []any, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, nil, decodeError(err, "invalid base64")
	}
	if len(raw) == 0 {
		return nil, nil, decodeError(nil, "empty archive")
	}
	var root map[string]any
	if _, err := plist.Unmarshal(raw, &root); err != nil {
		return nil, nil, decodeError(err, "invalid property list")
	}
	slots, ok := root["$objects"].([]any)
	if !ok {
		return nil, nil, decodeError(nil, "missing $objects array")
	}
	return root, slots, nil
}

func encode(root map[string]any) (string, error) {
	raw, err := plist.Marshal(root, plist.BinaryFormat)
	if err != nil {
		return "", decodeError(err, "property list encode failed")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// New builds an encoded keyed archive whose "$objects" are the given slots.
func New(objects []any) (string, error) {
	slots := make([]any, len(objects))
	for i, v := range objects {
		if v == nil {
			v = Null
		}
		slots[i] = v
	}
	return encode(map[string]any{
		"$archiver": "NSKeyedArchiver",
		"$version":  uint64(100000),
		"$top":      map[string]any{"root": plist.UID(1)},
		"$objects":  slots,
	})
}

func decodeError(cause error, hint string) error {
	it := sketchfmt.IssueAt("", sketchfmt.CodeArchiveDecode, nil)
	it.Hint = hint
	it.Cause = cause
	return it
}

func outOfRange(i int) error {
	return sketchfmt.IssueAt("", sketchfmt.CodeSlotOutOfRange, map[string]any{"slot": strconv.Itoa(i)})
}

// IsDecodeError reports whether err came from a malformed archive.
func IsDecodeError(err error) bool { return errors.Is(err, sketchfmt.ErrArchiveDecode) }
