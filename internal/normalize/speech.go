package normalize

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"voicegate/internal/models"
)

// speechShape inspects a decoded JSON body and either claims it or passes.
type speechShape func(body speechBody) (string, bool)

type speechBody struct {
	AudioURL string `json:"audioUrl"`
	Audio    string `json:"audio"`
	Data     string `json:"data"`
}

// speechShapes is evaluated in order; the first match wins. Order matters:
// a body carrying both audioUrl and audio must normalize from audioUrl.
var speechShapes = []speechShape{
	func(b speechBody) (string, bool) {
		if !strings.HasPrefix(b.AudioURL, "data:") {
			return "", false
		}
		_, payload, found := strings.Cut(b.AudioURL, ",")
		if !found || payload == "" {
			return "", false
		}
		return payload, true
	},
	func(b speechBody) (string, bool) {
		return b.Audio, b.Audio != ""
	},
	func(b speechBody) (string, bool) {
		return b.Data, b.Data != ""
	},
}

// Speech normalizes a text-to-speech response body. JSON bodies are probed
// with the ordered shape matchers; anything else is treated as a raw audio
// stream.
func Speech(body []byte, contentType, format string) (*models.Speech, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrNoShape)
	}

	mimeType := audioMimeType(format)

	if !isJSONContentType(contentType) {
		return &models.Speech{Audio: body, MimeType: mimeType}, nil
	}

	var decoded speechBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoShape, err)
	}

	for _, shape := range speechShapes {
		encoded, ok := shape(decoded)
		if !ok {
			continue
		}
		audio, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 audio: %v", ErrNoShape, err)
		}
		if len(audio) == 0 {
			return nil, fmt.Errorf("%w: empty audio payload", ErrNoShape)
		}
		return &models.Speech{Audio: audio, MimeType: mimeType}, nil
	}

	return nil, ErrNoShape
}

func audioMimeType(format string) string {
	switch strings.ToLower(format) {
	case "", "mp3", "mpeg":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg", "opus":
		return "audio/ogg"
	case "webm":
		return "audio/webm"
	default:
		return "audio/" + strings.ToLower(format)
	}
}
