package normalize

import (
	"encoding/json"
	"fmt"

	"voicegate/internal/models"
)

type replyShape func(body replyBody) (string, bool)

type replyBody struct {
	Reply    string `json:"reply"`
	Message  string `json:"message"`
	Response string `json:"response"`
	Text     string `json:"text"`
	Choices  []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// replyShapes covers the webhook-style fields the automation backends use
// plus the OpenAI chat completion path, evaluated in order.
var replyShapes = []replyShape{
	func(b replyBody) (string, bool) { return b.Reply, b.Reply != "" },
	func(b replyBody) (string, bool) { return b.Message, b.Message != "" },
	func(b replyBody) (string, bool) { return b.Response, b.Response != "" },
	func(b replyBody) (string, bool) { return b.Text, b.Text != "" },
	func(b replyBody) (string, bool) {
		if len(b.Choices) == 0 {
			return "", false
		}
		content := b.Choices[0].Message.Content
		return content, content != ""
	},
}

// Reply normalizes a chat response body into the canonical reply payload.
func Reply(body []byte, contentType string) (*models.Reply, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrNoShape)
	}
	if !isJSONContentType(contentType) {
		return nil, fmt.Errorf("%w: expected JSON, got %q", ErrNoShape, contentType)
	}

	var decoded replyBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoShape, err)
	}

	for _, shape := range replyShapes {
		if text, ok := shape(decoded); ok {
			return &models.Reply{Text: text}, nil
		}
	}

	return nil, ErrNoShape
}
