package templates

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Render substitutes every `{{path.to.var}}` occurrence in body by walking
// ctx as a nested map. A path that doesn't resolve (missing key, or a
// non-map encountered mid-walk) renders as empty string rather than
// erroring — rendering is pure and never fails on missing data. Lists
// render as a comma-joined string of their elements.
func Render(body string, ctx map[string]interface{}) string {
	return variablePattern.ReplaceAllStringFunc(body, func(match string) string {
		path := strings.TrimSpace(variablePattern.FindStringSubmatch(match)[1])
		return stringify(resolvePath(path, ctx))
	})
}

func resolvePath(path string, ctx map[string]interface{}) interface{} {
	parts := strings.Split(path, ".")
	var cur interface{} = ctx
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		v, ok := m[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ExtractVariables returns every distinct `{{...}}` path referenced in a
// template body, trimmed, in first-seen order.
func ExtractVariables(body string) []string {
	matches := variablePattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		v := strings.TrimSpace(m[1])
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Validate reports every variable in body that is not in the allow-list.
// A nil/empty return means the template is safe to store.
func Validate(body string) []string {
	var invalid []string
	for _, v := range ExtractVariables(body) {
		if !AllowedVariables[v] {
			invalid = append(invalid, v)
		}
	}
	return invalid
}
