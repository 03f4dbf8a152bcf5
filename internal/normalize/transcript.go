package normalize

import (
	"encoding/json"
	"fmt"

	"voicegate/internal/models"
)

// Transcript normalizes a speech-to-text response body. Providers are
// expected to return JSON with a "text" field. An empty string is a valid
// transcription of silence, so the field must be present rather than
// non-empty.
func Transcript(body []byte, contentType string) (*models.Transcript, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrNoShape)
	}
	if !isJSONContentType(contentType) {
		return nil, fmt.Errorf("%w: expected JSON, got %q", ErrNoShape, contentType)
	}

	var decoded struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoShape, err)
	}
	if decoded.Text == nil {
		return nil, ErrNoShape
	}

	return &models.Transcript{Text: *decoded.Text}, nil
}
