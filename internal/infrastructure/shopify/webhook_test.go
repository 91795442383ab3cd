package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifier_Verify(t *testing.T) {
	const secret = "shpss_webhook_secret"
	body := []byte(`{"id": 1001, "order_number": "#1001"}`)

	t.Run("accepts a valid signature", func(t *testing.T) {
		verifier := NewWebhookVerifier(secret)
		assert.True(t, verifier.Verify(body, signBody(secret, body)))
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		verifier := NewWebhookVerifier(secret)
		signature := signBody(secret, body)

		tampered := append([]byte{}, body...)
		tampered[0] = '['

		assert.False(t, verifier.Verify(tampered, signature))
	})

	t.Run("rejects a signature from another secret", func(t *testing.T) {
		verifier := NewWebhookVerifier(secret)
		assert.False(t, verifier.Verify(body, signBody("other_secret", body)))
	})

	t.Run("rejects an empty signature", func(t *testing.T) {
		verifier := NewWebhookVerifier(secret)
		assert.False(t, verifier.Verify(body, ""))
	})

	t.Run("never verifies without a configured secret", func(t *testing.T) {
		verifier := NewWebhookVerifier("")
		assert.False(t, verifier.Verify(body, signBody("", body)))
	})
}
