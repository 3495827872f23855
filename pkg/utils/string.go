package utils

import (
	"crypto/rand"
	"math/big"
)

const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

var charsetLen = big.NewInt(int64(len(charset)))

// GenerateRandomString returns length characters from [a-z0-9] drawn from crypto/rand.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			panic("utils: crypto/rand unavailable: " + err.Error())
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}
