package sketch

import (
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/goccy/go-json"
)

// Encode writes a typed or untyped value as compact JSON. Entity fields are
// written in schema order.
func Encode(v any) ([]byte, error) { return json.Marshal(v) }

// EncodeIndent is Encode with two-space indentation.
func EncodeIndent(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

// EncodeCanonical writes v in RFC 8785 canonical form: sorted keys, no
// insignificant whitespace, normalized numbers. Equal values always produce
// equal bytes.
func EncodeCanonical(v any) ([]byte, error) {
	b, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(b)
}
