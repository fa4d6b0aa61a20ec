/*
Package archive implements a decoder and encoder for the SFSprite archive
format used by the Mega Man Star Force games.

An archive starts with a 20 byte preamble holding the absolute offsets of four
sections followed by a start tile shift value:

	tilesets, palettes, animations, sprites, start tile shift

Each section is located purely by its offset so sections can appear in any
order. The palette section doesn't record how many palettes it holds; palettes
are read until the nearest following section begins.

Tiles are 8 by 8 pixels of palette indices, packed two to a byte in 16 color
mode and one to a byte in 256 color mode. Sprites are built from one or more
hardware OBJ records, each selecting a run of tiles from the tileset the
sprite uses. Animations are sequences of frames referencing sprites and
palettes by index.
*/
package archive

import (
	"image"

	"github.com/mmsf-tools/sfsprite/gbacolor"
	"github.com/mmsf-tools/sfsprite/obj"
)

const (
	headerSize          = 4 * 5
	tilesetHeaderSize   = 2 * 4
	paletteHeaderSize   = 2 * 2
	animationHeaderSize = 2 * 2
	spriteHeaderSize    = 2 * 2
	offsetSize          = 4
	usageSize           = 2 * 2
	subSpriteSize       = 8
	frameSize           = 4

	depth16  = 5
	depth256 = 6

	// TilePixels is the number of palette indices in a tile
	TilePixels = obj.TileSize * obj.TileSize

	// StartTileShift is the preamble value always written by the encoder
	StartTileShift = 1
)

const (
	flipH = 0x01
	flipV = 0x02

	frameLoop = 0x40
	frameEnd  = 0x80
)

// ColorMode selects between 16 and 256 color palettes for a whole archive.
type ColorMode bool

// Color modes.
const (
	Color16  ColorMode = false
	Color256 ColorMode = true
)

func (m ColorMode) String() string {
	if m {
		return "256 colors"
	}
	return "16 colors"
}

// PaletteSize returns the number of colors in each palette.
func (m ColorMode) PaletteSize() int {
	if m {
		return 256
	}
	return 16
}

// TileBytes returns the packed size of a tile.
func (m ColorMode) TileBytes() int {
	if m {
		return 0x40
	}
	return 0x20
}

func (m ColorMode) depth() uint16 {
	if m {
		return depth256
	}
	return depth16
}

func (m ColorMode) tileNumberShift() uint {
	if m {
		return 0
	}
	return 1
}

// Header is the fixed preamble at the start of an archive.
type Header struct {
	TilesetOffset   uint32
	PaletteOffset   uint32
	AnimationOffset uint32
	SpriteOffset    uint32
	StartTileShift  uint32
}

// Palette is a list of colors, either 16 or 256 long depending on the
// archive's ColorMode.
type Palette []gbacolor.Color

// Tile holds the unpacked palette indices of an 8 by 8 tile, row by row.
type Tile [TilePixels]uint8

// Tileset is a list of tiles which may be shared by multiple sprites.
type Tileset []Tile

// SubSprite is a single OBJ record within a sprite.
type SubSprite struct {
	Position  image.Point
	SizeCode  uint8
	ShapeCode uint8
	// Size is derived from SizeCode and ShapeCode on decode and is what the
	// encoder uses to choose the codes.
	Size       image.Point
	FlipH      bool
	FlipV      bool
	StartTile  int
	Prohibited bool
}

// Bounds returns the rectangle covered by s relative to the sprite origin.
func (s SubSprite) Bounds() image.Rectangle {
	return image.Rectangle{Min: s.Position, Max: s.Position.Add(s.Size)}
}

// TileAt returns the index into the tileset of the tile drawn at column tx
// and row ty of s, taking flipping into account.
func (s SubSprite) TileAt(tx, ty int) int {
	tiles := obj.Tiles(s.Size)
	if s.FlipH {
		tx = tiles.X - 1 - tx
	}
	if s.FlipV {
		ty = tiles.Y - 1 - ty
	}
	return s.StartTile + ty*tiles.X + tx
}

// Sprite is a non-empty list of OBJ records drawn using a single tileset.
type Sprite struct {
	SubSprites []SubSprite
	TileSetID  int
}

// Bounds returns the smallest rectangle covering every subsprite and the
// sprite origin.
func (s Sprite) Bounds() image.Rectangle {
	var r image.Rectangle
	for _, ss := range s.SubSprites {
		b := ss.Bounds()
		if b.Min.X < r.Min.X {
			r.Min.X = b.Min.X
		}
		if b.Min.Y < r.Min.Y {
			r.Min.Y = b.Min.Y
		}
		if b.Max.X > r.Max.X {
			r.Max.X = b.Max.X
		}
		if b.Max.Y > r.Max.Y {
			r.Max.Y = b.Max.Y
		}
	}
	return r
}

// Frame is a single step of an animation.
type Frame struct {
	SpriteID uint8
	// Delay is measured in 1/60th second ticks
	Delay uint8
	// IsLoop marks the frame the animation loops back to
	IsLoop  bool
	Palette uint8
}

// Animation is a non-empty list of frames.
type Animation []Frame

// Document is a decoded archive. All references between its parts are
// indices into its slices. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type Document struct {
	ColorMode ColorMode
	// StartTileShift and MaxTiles are informational only, the encoder
	// always writes its own values.
	StartTileShift uint32
	MaxTiles       uint16

	Sprites    []Sprite
	Palettes   []Palette
	Tilesets   []Tileset
	Animations []Animation
}

// SpritesUsingTileset returns the indices of every sprite drawn with the
// given tileset.
func (d *Document) SpritesUsingTileset(id int) []int {
	var ids []int
	for i, s := range d.Sprites {
		if s.TileSetID == id {
			ids = append(ids, i)
		}
	}
	return ids
}

// MarshalBinary encodes the document into archive form and returns the
// result.
func (d *Document) MarshalBinary() ([]byte, error) {
	return Encode(d)
}

// UnmarshalBinary decodes the document from archive form.
func (d *Document) UnmarshalBinary(b []byte) error {
	doc, err := Decode(b)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}
