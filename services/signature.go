package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentSignature returns the hex HMAC-SHA256 of "orderID|paymentID" keyed by
// the gateway secret, as produced by Razorpay checkout.
func PaymentSignature(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPaymentSignature compares signature to the expected digest byte for
// byte, in constant time.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	expected := PaymentSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
