package normalize

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeechDataURIWinsOverAudioField(t *testing.T) {
	body := []byte(`{"audioUrl":"data:audio/mpeg;base64,QQ==","audio":"zz"}`)

	speech, err := Speech(body, "application/json", "mp3")
	require.NoError(t, err)
	assert.Equal(t, "QQ==", base64.StdEncoding.EncodeToString(speech.Audio))
	assert.Equal(t, "audio/mpeg", speech.MimeType)
}

func TestSpeechAudioField(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("clip-bytes"))
	body := []byte(`{"audio":"` + encoded + `"}`)

	speech, err := Speech(body, "application/json; charset=utf-8", "mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("clip-bytes"), speech.Audio)
}

func TestSpeechDataField(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("other-bytes"))
	body := []byte(`{"data":"` + encoded + `"}`)

	speech, err := Speech(body, "application/json", "wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("other-bytes"), speech.Audio)
	assert.Equal(t, "audio/wav", speech.MimeType)
}

func TestSpeechBinaryPassthrough(t *testing.T) {
	raw := []byte{0xFF, 0xFB, 0x90, 0x44, 0x00}

	speech, err := Speech(raw, "audio/mpeg", "mp3")
	require.NoError(t, err)
	assert.Equal(t, raw, speech.Audio)
	assert.Equal(t, "audio/mpeg", speech.MimeType)
}

func TestSpeechEmptyBody(t *testing.T) {
	_, err := Speech(nil, "application/json", "mp3")
	assert.ErrorIs(t, err, ErrNoShape)
}

func TestSpeechUnknownJSONShape(t *testing.T) {
	_, err := Speech([]byte(`{"something":"else"}`), "application/json", "mp3")
	assert.ErrorIs(t, err, ErrNoShape)
}

func TestSpeechInvalidBase64(t *testing.T) {
	_, err := Speech([]byte(`{"audio":"not base64!!"}`), "application/json", "mp3")
	assert.ErrorIs(t, err, ErrNoShape)
}

func TestSpeechDataURIWithoutPayload(t *testing.T) {
	_, err := Speech([]byte(`{"audioUrl":"data:audio/mpeg;base64,"}`), "application/json", "mp3")
	assert.ErrorIs(t, err, ErrNoShape)
}
