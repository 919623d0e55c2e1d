package sketchfmt

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownType      = "unknown_type"
	CodeUnknownEnumValue = "unknown_enum_value"
	CodeNoUnionMember    = "no_union_member"
	CodeArchiveDecode    = "archive_decode"
	CodeShapeMismatch    = "shape_mismatch"
	CodeFieldNotFound    = "field_not_found"
	CodeTypeSyntax       = "type_syntax"
	CodeSlotOutOfRange   = "slot_out_of_range"
	// JSON input layer
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// Sentinel errors. Issues unwrap to the sentinel matching each issue code, so
// callers can use errors.Is on anything returned by this module.
var (
	ErrUnknownType          = errors.New("sketchfmt: unknown type")
	ErrUnknownEnumValue     = errors.New("sketchfmt: unknown enum value")
	ErrNoUnionMemberMatched = errors.New("sketchfmt: no union member matched")
	ErrArchiveDecode        = errors.New("sketchfmt: archive decode error")
	ErrShapeMismatch        = errors.New("sketchfmt: shape mismatch")
	ErrFieldNotFound        = errors.New("sketchfmt: field not found")
	ErrTypeSyntax           = errors.New("sketchfmt: type expression syntax error")
	ErrSlotOutOfRange       = errors.New("sketchfmt: archive slot out of range")
	ErrParse                = errors.New("sketchfmt: parse error")
)

var sentinels = map[string]error{
	CodeUnknownType:      ErrUnknownType,
	CodeUnknownEnumValue: ErrUnknownEnumValue,
	CodeNoUnionMember:    ErrNoUnionMemberMatched,
	CodeArchiveDecode:    ErrArchiveDecode,
	CodeShapeMismatch:    ErrShapeMismatch,
	CodeFieldNotFound:    ErrFieldNotFound,
	CodeTypeSyntax:       ErrTypeSyntax,
	CodeSlotOutOfRange:   ErrSlotOutOfRange,
	CodeParseError:       ErrParse,
	CodeDuplicateKey:     ErrParse,
	CodeTruncated:        ErrParse,
}

// Issue represents a single coercion or decoding problem.
type Issue struct {
	Path    string // Dotted path, e.g. doc.json.layers[2].style.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type, offending value, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"type":"SJColor"}) for i18n
	// and logging.
	Params map[string]any
}

func (it Issue) Error() string {
	if it.Path == "" {
		return fmt.Sprintf("%s: %s", it.Code, it.Message)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Unwrap returns the sentinel for the issue code, or the cause.
func (it Issue) Unwrap() []error {
	var errs []error
	if s, ok := sentinels[it.Code]; ok {
		errs = append(errs, s)
	}
	if it.Cause != nil {
		errs = append(errs, it.Cause)
	}
	return errs
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. shape_mismatch at doc.json.pages
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes every issue so errors.Is matches any of their sentinels.
func (iss Issues) Unwrap() []error {
	errs := make([]error, 0, len(iss))
	for _, it := range iss {
		errs = append(errs, it)
	}
	return errs
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ToIssues converts any error into Issues. Errors that are not Issues become a
// single issue whose code is derived from the wrapped sentinel.
func ToIssues(path string, err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	var it Issue
	if errors.As(err, &it) {
		return Issues{it}
	}
	return Issues{{Path: path, Code: CodeOf(err), Message: err.Error(), Cause: err}}
}

// CodeOf maps an error to the issue code of the first matching sentinel, or
// CodeParseError when nothing matches.
func CodeOf(err error) string {
	var it Issue
	if errors.As(err, &it) {
		return it.Code
	}
	for _, code := range []string{
		CodeUnknownType, CodeUnknownEnumValue, CodeNoUnionMember, CodeArchiveDecode,
		CodeShapeMismatch, CodeFieldNotFound, CodeTypeSyntax, CodeSlotOutOfRange,
	} {
		if errors.Is(err, sentinels[code]) {
			return code
		}
	}
	return CodeParseError
}
