package utils

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrCodeExhausted is returned when every generated code collided with an existing one.
var ErrCodeExhausted = errors.New("code generation exhausted")

// MaxCodeAttempts bounds the collision retry loop.
const MaxCodeAttempts = 10

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeFunc produces a candidate code.
type CodeFunc func() string

// RandomString returns n uppercase alphanumeric characters.
func RandomString(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// SKU returns a product code such as PRD-7QK2M9XA.
func SKU() string {
	return "PRD-" + RandomString(8)
}

// DocumentNumber returns codes such as BILL-20250101-4821 for the given prefix.
func DocumentNumber(prefix string) CodeFunc {
	return func() string {
		return fmt.Sprintf("%s-%s-%04d", prefix, time.Now().Format("20060102"), 1000+rand.IntN(9000))
	}
}

// UniqueCode draws candidates from next until exists reports a free one,
// giving up after MaxCodeAttempts.
func UniqueCode(next CodeFunc, exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code := next()
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// Sequence returns a CodeFunc that yields codes in order and then repeats the last one.
// Handy for forcing collisions in tests.
func Sequence(codes ...string) CodeFunc {
	i := 0
	return func() string {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c
	}
}
