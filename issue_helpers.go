package sketchfmt

import "github.com/reoring/sketchfmt/i18n"

// IssueAt creates an Issue at the given path with provided code, a translated
// message and params map.
func IssueAt(path, code string, params map[string]any) Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok {
			data[k] = s
		}
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, data), Params: params}
}
