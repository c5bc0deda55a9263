package captcha

import (
	"bytes"
	"fmt"
)

const (
	glyphWidth  = 28
	imageHeight = 50
	noiseLines  = 6
)

var palette = []string{"#1f3a5f", "#7a1f1f", "#2f5f1f", "#5f1f5a", "#333333"}

// render draws code as jittered, rotated glyphs over a few noise lines.
func (g *Generator) render(code string) ([]byte, error) {
	width := glyphWidth*len(code) + 20

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, imageHeight, width, imageHeight)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="#f4f1ea"/>`)

	for range noiseLines {
		v, err := g.ints(width, imageHeight, width, imageHeight, len(palette))
		if err != nil {
			return nil, fmt.Errorf("failed to render captcha: %w", err)
		}
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1" opacity="0.6"/>`,
			v[0], v[1], v[2], v[3], palette[v[4]])
	}

	for i, r := range code {
		v, err := g.ints(9, 13, 41, len(palette))
		if err != nil {
			return nil, fmt.Errorf("failed to render captcha: %w", err)
		}
		x := 10 + i*glyphWidth + v[0]
		y := 30 + v[1] - 6
		rotate := v[2] - 20
		fmt.Fprintf(&b,
			`<text x="%d" y="%d" transform="rotate(%d %d %d)" font-family="monospace" font-size="30" font-weight="bold" fill="%s">%c</text>`,
			x, y, rotate, x, y, palette[v[3]], r)
	}

	b.WriteString(`</svg>`)
	return b.Bytes(), nil
}

// ints draws one random value below each bound.
func (g *Generator) ints(bounds ...int) ([]int, error) {
	out := make([]int, len(bounds))
	for i, n := range bounds {
		v, err := g.intn(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
