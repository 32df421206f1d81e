package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyRazorpaySignature(t *testing.T) {
	secret := "test-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("order_123|pay_456"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, verifyRazorpaySignature("order_123", "pay_456", valid, secret))
	assert.False(t, verifyRazorpaySignature("order_123", "pay_456", valid, "other-secret"))
	assert.False(t, verifyRazorpaySignature("order_999", "pay_456", valid, secret))
	assert.False(t, verifyRazorpaySignature("order_123", "pay_456", "deadbeef", secret))
}
