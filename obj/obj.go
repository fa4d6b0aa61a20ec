/*
Package obj implements the size tables of hardware OBJ attribute records.

An OBJ selects its dimensions with a 2-bit size code and a 2-bit shape code.
Shapes 0, 1 and 2 are square, horizontal and vertical respectively, giving
twelve legal combinations with widths and heights drawn from 8, 16, 32 and
64 pixels. Shape 3 is reserved by the hardware and marks an OBJ that is never
displayed.
*/
package obj

import (
	"fmt"
	"image"
)

// Shape is the shape code of an OBJ.
type Shape uint8

// Shapes.
const (
	Square Shape = iota
	Horizontal
	Vertical
	Prohibited
)

// TileSize is the width and height in pixels of a single tile.
const TileSize = 8

// Indexed by shape then size.
var sizes = [3][4]image.Point{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
}

// InvalidSizeError is returned for any size and shape code combination, or
// dimensions, outside of the twelve legal ones.
type InvalidSizeError struct {
	Size  uint8
	Shape uint8
	Dim   image.Point
	// Reverse is set when Dim was being mapped back to codes
	Reverse bool
}

func (e *InvalidSizeError) Error() string {
	if e.Reverse {
		return fmt.Sprintf("obj: invalid obj size %dx%d", e.Dim.X, e.Dim.Y)
	}
	return fmt.Sprintf("obj: invalid obj size code %d shape %d", e.Size, e.Shape)
}

// Size returns the dimensions selected by the given size and shape codes.
func Size(size, shape uint8) (image.Point, error) {
	if size > 3 || shape >= uint8(Prohibited) {
		return image.Point{}, &InvalidSizeError{Size: size, Shape: shape}
	}
	return sizes[shape][size], nil
}

// Codes returns the size and shape codes selecting the given dimensions.
func Codes(dim image.Point) (size, shape uint8, err error) {
	for sh := range sizes {
		for sz, p := range sizes[sh] {
			if p == dim {
				return uint8(sz), uint8(sh), nil
			}
		}
	}
	return 0, 0, &InvalidSizeError{Dim: dim, Reverse: true}
}

// Tiles returns the number of tiles along each axis for the given dimensions.
func Tiles(dim image.Point) image.Point {
	return dim.Div(TileSize)
}
