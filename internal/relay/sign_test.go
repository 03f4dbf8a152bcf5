package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignIsDeterministic(t *testing.T) {
	signer := NewSigner("test-secret")
	body := []byte(`{"type":"lead_captured"}`)

	first := signer.Sign("1700000000", body)
	second := signer.Sign("1700000000", body)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex SHA-256
}

func TestSignChangesWithPayload(t *testing.T) {
	signer := NewSigner("test-secret")

	a := signer.Sign("1700000000", []byte(`{"type":"lead_captured"}`))
	b := signer.Sign("1700000000", []byte(`{"type":"lead_capturee"}`))

	assert.NotEqual(t, a, b)
}

func TestSignChangesWithTimestamp(t *testing.T) {
	signer := NewSigner("test-secret")
	body := []byte(`{"type":"lead_captured"}`)

	assert.NotEqual(t, signer.Sign("1700000000", body), signer.Sign("1700000001", body))
}

func TestVerifyRoundTrip(t *testing.T) {
	signer := NewSigner("test-secret")
	body := []byte(`{"type":"lead_captured"}`)
	now := time.Unix(1700000100, 0)

	sig := signer.Sign("1700000000", body)
	assert.True(t, signer.Verify("1700000000", body, sig, 300*time.Second, now))
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	signer := NewSigner("test-secret")
	body := []byte(`{"type":"lead_captured"}`)
	now := time.Unix(1700000301, 0)

	sig := signer.Sign("1700000000", body)
	assert.False(t, signer.Verify("1700000000", body, sig, 300*time.Second, now))
}

func TestVerifyRejectsFutureDrift(t *testing.T) {
	signer := NewSigner("test-secret")
	body := []byte(`{"x":1}`)
	now := time.Unix(1700000000, 0)

	sig := signer.Sign("1700000400", body)
	assert.False(t, signer.Verify("1700000400", body, sig, 300*time.Second, now))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	signer := NewSigner("test-secret")
	now := time.Unix(1700000000, 0)

	sig := signer.Sign("1700000000", []byte(`{"x":1}`))
	assert.False(t, signer.Verify("1700000000", []byte(`{"x":2}`), sig, 300*time.Second, now))
}

func TestVerifyRejectsBadTimestampFormat(t *testing.T) {
	signer := NewSigner("test-secret")
	assert.False(t, signer.Verify("not-a-number", []byte(`{}`), "sig", 300*time.Second, time.Now()))
}
