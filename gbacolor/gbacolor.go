/*
Package gbacolor implements conversion between the packed 16-bit color word
used by the GBA and NDS and 8-bit per channel RGB(A).

A color is packed as ABBBBBGGGGGRRRRR where the alpha bit is only meaningful
for the NDS variant. Each 5-bit channel is scaled linearly onto 0-255.
*/
package gbacolor

import (
	"errors"
	"image/color"
)

const (
	channelMax = 0x1f
	alphaBit   = 0x8000
)

var errOutOfRange = errors.New("gbacolor: packed color out of range")

// Color is an 8-bit per channel color. HasAlpha is false for colors decoded
// from the GBA variant, in which case A is ignored and the color is opaque.
type Color struct {
	R, G, B, A uint8
	HasAlpha   bool
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	if !c.HasAlpha {
		return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
	}
	return color.NRGBA{c.R, c.G, c.B, c.A}.RGBA()
}

func expand(v uint16) uint8 {
	return uint8(uint32(v&channelMax) * 0xff / channelMax)
}

// Rounding rather than truncating here keeps a 5-bit channel stable across
// expand followed by quantize.
func quantize(v uint8) uint16 {
	return uint16((uint32(v)*channelMax + 0x7f) / 0xff)
}

// GBA converts a packed color word to an alpha-less Color.
func GBA(v uint16) Color {
	return Color{
		R: expand(v),
		G: expand(v >> 5),
		B: expand(v >> 10),
	}
}

// NDS converts a packed color word to a Color, expanding bit 15 to an alpha
// of either 0 or 255.
func NDS(v uint16) Color {
	c := GBA(v)
	c.HasAlpha = true
	if v&alphaBit != 0 {
		c.A = 0xff
	}
	return c
}

// ToRGB converts a packed color held in an int, failing if it doesn't fit in
// 16 bits.
func ToRGB(v int, hasAlpha bool) (Color, error) {
	if v < 0 || v > 0xffff {
		return Color{}, errOutOfRange
	}
	if hasAlpha {
		return NDS(uint16(v)), nil
	}
	return GBA(uint16(v)), nil
}

// Pack converts c to a packed color word. Bit 15 is set only when c carries
// an alpha channel that is fully opaque.
func Pack(c Color) uint16 {
	v := quantize(c.B)<<10 | quantize(c.G)<<5 | quantize(c.R)
	if c.HasAlpha && c.A == 0xff {
		v |= alphaBit
	}
	return v
}

// Model converts any color to the nearest alpha-less Color representable in
// a packed color word.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if gc, ok := c.(Color); ok && !gc.HasAlpha {
		return GBA(Pack(gc))
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return GBA(Pack(Color{R: n.R, G: n.G, B: n.B}))
})
