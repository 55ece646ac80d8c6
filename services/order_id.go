package services

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// Order ids are "ORD-" plus 10 uppercase alphanumerics, drawn from a CSPRNG.
// 36^10 is large enough that collisions are effectively impossible; the unique
// Mongo index is the backstop for the remaining chance.
const (
	orderIDPrefix   = "ORD-"
	orderIDLength   = 10
	orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var orderIDPattern = regexp.MustCompile(`^ORD-[A-Z0-9]{10}$`)

// GenerateOrderID returns a fresh order identifier.
func GenerateOrderID() (string, error) {
	buf := make([]byte, orderIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order id generation: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderIDAlphabet[int(b)%len(orderIDAlphabet)]
	}
	return orderIDPrefix + string(buf), nil
}

// ValidOrderID reports whether id matches the tracking-UI contract format.
func ValidOrderID(id string) bool {
	return orderIDPattern.MatchString(id)
}
