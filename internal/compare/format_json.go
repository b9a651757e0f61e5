package compare

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSONFormatter renders a ComparisonSet as a single JSON document terminated by a
// newline. Canton names and recommendations are written without HTML escaping.
type JSONFormatter struct {
	Pretty bool
}

func (jf JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	if compSet == nil {
		return "", fmt.Errorf("no comparison to format")
	}

	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(compSet); err != nil {
		return "", fmt.Errorf("failed to encode comparison: %w", err)
	}
	return sb.String(), nil
}
