// Package captcha issues the image challenges that guard signup, password
// recovery and the contact form.
package captcha

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Alphabet holds the characters used in codes. Look-alikes such as 0/O and
// 1/I are left out.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Challenge is a generated code and its rendered image.
type Challenge struct {
	Answer string
	// SVG is a standalone image/svg+xml document.
	SVG []byte
}

// Generator creates challenges of a fixed length.
type Generator struct {
	length int
	rand   io.Reader
}

// NewGenerator creates a Generator for codes of length characters.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = 5
	}
	return &Generator{length: length, rand: rand.Reader}
}

// New generates a challenge.
func (g *Generator) New() (*Challenge, error) {
	answer, err := g.code()
	if err != nil {
		return nil, err
	}
	svg, err := g.render(answer)
	if err != nil {
		return nil, err
	}
	return &Challenge{Answer: answer, SVG: svg}, nil
}

func (g *Generator) code() (string, error) {
	var b strings.Builder
	for range g.length {
		i, err := g.intn(len(Alphabet))
		if err != nil {
			return "", fmt.Errorf("failed to generate captcha code: %w", err)
		}
		b.WriteByte(Alphabet[i])
	}
	return b.String(), nil
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
