package usecase

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	defaultShortCodeLength = 6
	shortCodeAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// generateShortCode draws a random alphanumeric short code.
// With the default length there are 62^6 (about 5.7e10) candidates.
func generateShortCode(length int) (string, error) {
	return gonanoid.Generate(shortCodeAlphabet, length)
}
