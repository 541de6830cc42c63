package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Stringify coerces a decoded JSON value to the text the matchers scan.
// ok is false only for absent (null) values, which pass through the
// redactor untouched. Numbers decoded as json.Number keep their source
// text; nested structures re-marshal to compact JSON.
func Stringify(v any) (text string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t), true
		}
		return string(raw), true
	}
}

// present reports whether a field value counts as "present with a
// non-empty value" for signal classification.
func present(v any) bool {
	text, ok := Stringify(v)
	return ok && text != ""
}
