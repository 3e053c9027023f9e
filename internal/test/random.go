package test

import "math/rand/v2"

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns an alphanumeric string of length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)

	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(buf)
}

// RandomUsername returns a username unlikely to collide within one test run.
func RandomUsername() string {
	return "reader_" + RandomASCIIString(8, 12)
}
