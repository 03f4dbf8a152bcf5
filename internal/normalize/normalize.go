// Package normalize maps heterogeneous upstream response bodies onto the
// canonical capability payloads. Each capability carries an ordered list of
// shape matchers; the first matcher that recognizes the body wins. A body no
// matcher recognizes is a normalization error, which the orchestrator treats
// as a provider failure and falls through to the next provider.
package normalize

import (
	"errors"
	"strings"
)

// ErrNoShape indicates no shape matcher recognized the upstream body.
var ErrNoShape = errors.New("upstream response matched no known shape")

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}
