// Package degrade produces canned local responses for capabilities whose
// provider chain is exhausted. The widget stays usable when every upstream
// is down: chat and transcription answer from small fixed sets, synthesis
// returns a silent placeholder clip. Nothing here touches the network.
package degrade

import (
	"encoding/base64"
	"math/rand"
	"sync"

	"voicegate/internal/models"
)

var cannedReplies = []string{
	"I'm Agent ODIADEV, your AI assistant. How can I help you today?",
	"Hello! I'm here to assist you. What would you like to know?",
	"Thanks for reaching out! I'm ready to help with any questions you have.",
	"Welcome! I'm your AI assistant. How may I be of service?",
	"Hi there! I'm here to provide you with information and assistance.",
}

var cannedTranscripts = []string{
	"Hello, how are you today?",
	"I need help with my account",
	"Can you tell me about your services?",
	"What are your business hours?",
	"I want to speak to a human agent",
	"Thank you for your help",
	"Goodbye",
	"I don't understand",
	"Can you repeat that?",
	"Yes, that's correct",
}

// silentClipBase64 is a single silent MPEG audio frame. Decoded once at
// init; the synthesis placeholder must be stable across calls.
const silentClipBase64 = "//uQRAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

var silentClip = mustDecodeBase64(silentClipBase64)

// Policy selects canned output for exhausted capabilities. The random
// source is injectable so tests can pin the selection.
type Policy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New constructs a policy drawing from the given seed.
func New(seed int64) *Policy {
	return &Policy{rng: rand.New(rand.NewSource(seed))}
}

// Speak returns the deterministic silent placeholder clip.
func (p *Policy) Speak(req models.SpeakRequest) *models.Speech {
	return &models.Speech{Audio: silentClip, MimeType: "audio/mpeg"}
}

// Transcribe returns one of the fixed placeholder transcripts.
func (p *Policy) Transcribe(req models.TranscribeRequest) *models.Transcript {
	return &models.Transcript{Text: cannedTranscripts[p.pick(len(cannedTranscripts))]}
}

// Converse returns one of the fixed assistant replies.
func (p *Policy) Converse(req models.ConverseRequest) *models.Reply {
	return &models.Reply{Text: cannedReplies[p.pick(len(cannedReplies))]}
}

// Replies exposes the canned reply set for membership checks.
func Replies() []string {
	out := make([]string, len(cannedReplies))
	copy(out, cannedReplies)
	return out
}

// Transcripts exposes the canned transcript set for membership checks.
func Transcripts() []string {
	out := make([]string, len(cannedTranscripts))
	copy(out, cannedTranscripts)
	return out
}

func (p *Policy) pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

func mustDecodeBase64(s string) []byte {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic("degrade: invalid embedded audio clip: " + err.Error())
	}
	return decoded
}
