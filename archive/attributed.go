package archive

import (
	"strconv"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/internal/jsonval"
	"github.com/reoring/sketchfmt/marshal"
)

// Fixed "$objects" indices of an archived attributed string.
const (
	SlotText       = 2
	SlotFontSize   = 16
	SlotFontFamily = 17
	SlotColorRed   = 25
	SlotColorAlpha = 26
	SlotColorBlue  = 27
	SlotColorGreen = 28
)

// AttributedString is a fixed-slot view over the archive of an
// MSAttributedString entity.
type AttributedString struct {
	*KeyValueArchive
	owner *marshal.Entity
}

// OpenAttributedString binds a view to an MSAttributedString entity (its
// "archivedAttributedString" field) or directly to a KeyValueArchive entity.
func OpenAttributedString(e *marshal.Entity) (*AttributedString, error) {
	target := e
	if e != nil {
		if inner, ok := e.GetEntity("archivedAttributedString"); ok {
			target = inner
		}
	}
	a, err := Open(target)
	if err != nil {
		return nil, err
	}
	return &AttributedString{KeyValueArchive: a, owner: target}, nil
}

// Text returns the plain text.
func (s *AttributedString) Text() (string, error) { return s.str(SlotText) }

// SetText replaces the plain text.
func (s *AttributedString) SetText(text string) error { return s.WriteSlot(SlotText, text) }

// FontFamily returns the font family name.
func (s *AttributedString) FontFamily() (string, error) { return s.str(SlotFontFamily) }

// SetFontFamily replaces the font family name.
func (s *AttributedString) SetFontFamily(name string) error {
	return s.WriteSlot(SlotFontFamily, name)
}

// FontSize returns the point size.
func (s *AttributedString) FontSize() (float64, error) { return s.num(SlotFontSize) }

// SetFontSize replaces the point size.
func (s *AttributedString) SetFontSize(size float64) error {
	return s.WriteSlot(SlotFontSize, size)
}

var colorSlots = []struct {
	field string
	slot  int
}{
	{"red", SlotColorRed},
	{"alpha", SlotColorAlpha},
	{"blue", SlotColorBlue},
	{"green", SlotColorGreen},
}

// Color returns the text color as an SJColor entity.
func (s *AttributedString) Color() (*marshal.Entity, error) {
	c, err := marshal.New(s.owner.Registry(), "SJColor")
	if err != nil {
		return nil, err
	}
	for _, cs := range colorSlots {
		v, err := s.num(cs.slot)
		if err != nil {
			return nil, err
		}
		if err := c.Set(cs.field, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetColor writes the four components of an SJColor entity in one update.
// Unset components are written as 0.
func (s *AttributedString) SetColor(c *marshal.Entity) error {
	updates := make(map[int]any, len(colorSlots))
	for _, cs := range colorSlots {
		f, _, _ := jsonval.Number(c.Get(cs.field))
		updates[cs.slot] = f
	}
	return s.WriteSlots(updates)
}

func (s *AttributedString) str(slot int) (string, error) {
	v, err := s.ReadSlot(slot)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", slotMismatch(slot, "str")
	}
	return str, nil
}

func (s *AttributedString) num(slot int) (float64, error) {
	v, err := s.ReadSlot(slot)
	if err != nil {
		return 0, err
	}
	f, _, ok := jsonval.Number(v)
	if !ok {
		return 0, slotMismatch(slot, "float")
	}
	return f, nil
}

func slotMismatch(slot int, want string) error {
	it := sketchfmt.IssueAt("", sketchfmt.CodeShapeMismatch, map[string]any{"type": want})
	it.Hint = "archive slot " + strconv.Itoa(slot)
	return it
}
