package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "value").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unknown_type":       "unknown type {type}",
		"unknown_enum_value": "value {value} is not a member of {type}",
		"no_union_member":    "no member of {type} accepted the value",
		"archive_decode":     "archive could not be decoded",
		"shape_mismatch":     "value does not match {type}",
		"field_not_found":    "field {field} is not declared by {type}",
		"type_syntax":        "malformed type expression",
		"slot_out_of_range":  "archive slot {slot} out of range",
		"parse_error":        "parse error",
		"duplicate_key":      "duplicate key",
		"truncated":          "truncated",
	},
	"ja": {
		"unknown_type":       "未知の型です: {type}",
		"unknown_enum_value": "{type} に値 {value} はありません",
		"no_union_member":    "{type} のいずれの型にも一致しません",
		"archive_decode":     "アーカイブを復号できません",
		"shape_mismatch":     "値が {type} と一致しません",
		"field_not_found":    "{type} にフィールド {field} はありません",
		"type_syntax":        "型式の構文が不正です",
		"slot_out_of_range":  "スロット {slot} は範囲外です",
		"parse_error":        "解析エラー",
		"duplicate_key":      "キーが重複しています",
		"truncated":          "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	// drop placeholders nobody filled
	for strings.Contains(msg, "{") {
		i := strings.Index(msg, "{")
		j := strings.Index(msg[i:], "}")
		if j < 0 {
			break
		}
		msg = strings.TrimSpace(msg[:i] + "?" + msg[i+j+1:])
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
