// Package random generates random strings for secrets.
package random

import (
	"crypto/rand"
	"math/big"
)

var allSeq [62]rune

func init() {
	i := 0
	for c := '0'; c <= '9'; c++ {
		allSeq[i] = c
		i++
	}
	for c := 'a'; c <= 'z'; c++ {
		allSeq[i] = c
		i++
	}
	for c := 'A'; c <= 'Z'; c++ {
		allSeq[i] = c
		i++
	}
}

// Seq generates a random alphanumeric string of length n.
func Seq(n int) string {
	runes := make([]rune, n)
	max := big.NewInt(int64(len(allSeq)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		runes[i] = allSeq[idx.Int64()]
	}
	return string(runes)
}
