package archive

import (
	"encoding/binary"
	"image"
	"io"
	"io/ioutil"

	"github.com/mmsf-tools/sfsprite/gbacolor"
	"github.com/mmsf-tools/sfsprite/obj"
)

type tileKey struct {
	count, number uint16
}

type decoder struct {
	b   []byte
	pos int

	h   Header
	doc Document

	tileBytes       int
	tileNumberShift uint
}

// seek moves to an absolute offset, clamping it to the end of the data
func (d *decoder) seek(offset uint64) {
	if offset > uint64(len(d.b)) {
		offset = uint64(len(d.b))
	}
	d.pos = int(offset)
}

func (d *decoder) has(n int) bool {
	return len(d.b)-d.pos >= n
}

func (d *decoder) u8() uint8 {
	v := d.b[d.pos]
	d.pos++
	return v
}

func (d *decoder) u16() uint16 {
	v := binary.LittleEndian.Uint16(d.b[d.pos:])
	d.pos += 2
	return v
}

func (d *decoder) u32() uint32 {
	v := binary.LittleEndian.Uint32(d.b[d.pos:])
	d.pos += 4
	return v
}

func (d *decoder) bytes(n int) []byte {
	v := d.b[d.pos : d.pos+n]
	d.pos += n
	return v
}

func (d *decoder) readHeader() error {
	if len(d.b) < headerSize {
		return &HeaderTooSmallError{FileSize: len(d.b)}
	}

	d.h.TilesetOffset = d.u32()
	d.h.PaletteOffset = d.u32()
	d.h.AnimationOffset = d.u32()
	d.h.SpriteOffset = d.u32()
	d.h.StartTileShift = d.u32()

	size := uint64(len(d.b))
	switch {
	case uint64(d.h.TilesetOffset) > size:
		return &TilesetsHeaderOverflowError{FileSize: len(d.b), Address: int(d.h.TilesetOffset)}
	case uint64(d.h.PaletteOffset) > size:
		return &PalettesHeaderOverflowError{FileSize: len(d.b), Address: int(d.h.PaletteOffset)}
	case uint64(d.h.AnimationOffset) > size:
		return &AnimationsHeaderOverflowError{FileSize: len(d.b), Address: int(d.h.AnimationOffset)}
	case uint64(d.h.SpriteOffset) > size:
		return &SpritesHeaderOverflowError{FileSize: len(d.b), Address: int(d.h.SpriteOffset)}
	}

	d.doc.StartTileShift = d.h.StartTileShift

	return nil
}

// paletteEnd returns the nearest section offset following the palette
// section, or the end of the data if there isn't one
func (d *decoder) paletteEnd() int {
	end := uint32(len(d.b))
	for _, offset := range []uint32{d.h.TilesetOffset, d.h.AnimationOffset, d.h.SpriteOffset} {
		if offset > d.h.PaletteOffset && offset < end {
			end = offset
		}
	}
	return int(end)
}

func (d *decoder) readPalettes() error {
	d.seek(uint64(d.h.PaletteOffset))
	if !d.has(paletteHeaderSize) {
		return &PalettesAddressOverflowError{FileSize: len(d.b), Address: int(d.h.PaletteOffset) + paletteHeaderSize}
	}

	depth := d.u16()
	_ = d.u16() // palette count, not reliable

	switch depth {
	case depth16:
		d.doc.ColorMode = Color16
	case depth256:
		d.doc.ColorMode = Color256
	default:
		return &UnsupportedColorModeError{ColorDepth: int(depth)}
	}

	d.tileBytes = d.doc.ColorMode.TileBytes()
	d.tileNumberShift = d.doc.ColorMode.tileNumberShift()

	colors := d.doc.ColorMode.PaletteSize()
	for end := d.paletteEnd(); d.pos < end; {
		if !d.has(colors * 2) {
			return &PalettesAddressOverflowError{FileSize: len(d.b), Address: d.pos}
		}
		p := make(Palette, colors)
		for i := range p {
			p[i] = gbacolor.GBA(d.u16())
		}
		d.doc.Palettes = append(d.doc.Palettes, p)
	}

	return nil
}

func (d *decoder) readSubSprite(sprite, index int) (SubSprite, bool, error) {
	b := d.bytes(subSpriteSize)

	// Record is laid out as tile low, x, y, size, shape, flip, last, tile high
	s := SubSprite{
		Position:  image.Pt(int(int8(b[1])), int(int8(b[2]))),
		SizeCode:  b[3],
		ShapeCode: b[4],
		FlipH:     b[5]&flipH != 0,
		FlipV:     b[5]&flipV != 0,
		StartTile: int(b[0])<<d.tileNumberShift + int(b[7])<<(8+d.tileNumberShift),
	}

	if s.ShapeCode == uint8(obj.Prohibited) {
		s.Prohibited = true
	} else {
		size, err := obj.Size(s.SizeCode, s.ShapeCode)
		if err != nil {
			return SubSprite{}, false, &InvalidObjError{SpriteID: sprite, SubSpriteID: index, Err: err}
		}
		s.Size = size
	}

	return s, b[6] != 0, nil
}

func (d *decoder) readSprites() error {
	base := d.h.SpriteOffset
	d.seek(uint64(base))
	if !d.has(spriteHeaderSize) {
		return &SpritesAddressOverflowError{FileSize: len(d.b), Address: int(base) + spriteHeaderSize}
	}

	count := int(d.u16())
	_ = d.u16()

	d.doc.Sprites = make([]Sprite, 0, count)
	for i := 0; i < count; i++ {
		if !d.has(offsetSize) {
			return &SpritesAddressOverflowError{FileSize: len(d.b), Address: d.pos}
		}
		offset := d.u32()
		next := d.pos

		d.seek(uint64(base) + uint64(offset))

		var sprite Sprite
		for last := false; !last; {
			if !d.has(subSpriteSize) {
				return &NoLastSubspriteMarkError{SpriteID: i, SubSprites: len(sprite.SubSprites)}
			}
			var (
				s   SubSprite
				err error
			)
			if s, last, err = d.readSubSprite(i, len(sprite.SubSprites)); err != nil {
				return err
			}
			sprite.SubSprites = append(sprite.SubSprites, s)
		}
		d.doc.Sprites = append(d.doc.Sprites, sprite)

		d.pos = next
	}

	return nil
}

func (d *decoder) unpackTile(b []byte) Tile {
	var t Tile
	if d.doc.ColorMode == Color256 {
		copy(t[:], b)
		return t
	}
	for i, v := range b {
		t[i<<1] = v & 0x0f
		t[i<<1+1] = v >> 4
	}
	return t
}

func (d *decoder) readTilesets() error {
	base := d.h.TilesetOffset
	d.seek(uint64(base))
	if !d.has(tilesetHeaderSize) {
		return &TilesetsAddressOverflowError{FileSize: len(d.b), Address: int(base) + tilesetHeaderSize}
	}

	d.doc.MaxTiles = d.u16()
	_ = d.u16() // total tiles
	dataOffset := d.u16()
	_ = d.u16()

	seen := make(map[tileKey]int)
	for i := range d.doc.Sprites {
		if !d.has(usageSize) {
			return &TilesetsEOFError{TilesetID: i, FileSize: len(d.b), Address: d.pos}
		}
		key := tileKey{count: d.u16(), number: d.u16()}

		if id, ok := seen[key]; ok {
			d.doc.Sprites[i].TileSetID = id
			continue
		}

		id := len(d.doc.Tilesets)
		seen[key] = id
		d.doc.Sprites[i].TileSetID = id

		start := int(base) + int(dataOffset) + int(key.number)*d.tileBytes
		size := int(key.count) * d.tileBytes
		if len(d.b) < start {
			return &TilesetsWrongPositionError{TilesetID: i, FileSize: len(d.b), Address: start}
		}
		if len(d.b) < start+size {
			return &TilesetsWrongSizeError{TilesetID: i, FileSize: len(d.b), Address: start, Size: size}
		}

		tileset := make(Tileset, key.count)
		for j := range tileset {
			offset := start + j*d.tileBytes
			tileset[j] = d.unpackTile(d.b[offset : offset+d.tileBytes])
		}
		d.doc.Tilesets = append(d.doc.Tilesets, tileset)
	}

	return nil
}

func (d *decoder) readAnimations() error {
	base := d.h.AnimationOffset
	d.seek(uint64(base))
	if !d.has(animationHeaderSize) {
		return &AnimationsAddressOverflowError{FileSize: len(d.b), Address: int(base) + animationHeaderSize}
	}

	count := int(d.u16())
	_ = d.u16()

	d.doc.Animations = make([]Animation, 0, count)
	for i := 0; i < count; i++ {
		if !d.has(offsetSize) {
			return &AnimationsAddressOverflowError{FileSize: len(d.b), Address: d.pos}
		}
		offset := d.u32()
		next := d.pos

		d.seek(uint64(base) + uint64(offset))

		var animation Animation
		for {
			if !d.has(frameSize) {
				return &AnimationsAddressOverflowError{FileSize: len(d.b), Address: d.pos}
			}
			spriteID, delay, flags, palette := d.u8(), d.u8(), d.u8(), d.u8()
			animation = append(animation, Frame{
				SpriteID: spriteID,
				Delay:    delay,
				IsLoop:   flags&frameLoop != 0,
				Palette:  palette,
			})
			if flags&(frameLoop|frameEnd) != 0 {
				break
			}
		}
		d.doc.Animations = append(d.doc.Animations, animation)

		d.pos = next
	}

	return nil
}

func (d *decoder) decode(b []byte) error {
	d.b = b

	if err := d.readHeader(); err != nil {
		return err
	}

	if err := d.readPalettes(); err != nil {
		return err
	}

	if err := d.readSprites(); err != nil {
		return err
	}

	if err := d.readTilesets(); err != nil {
		return err
	}

	return d.readAnimations()
}

// Decode decodes an archive held in b. Any structural problem is returned as
// a ReadError; b is not modified or retained.
func Decode(b []byte) (*Document, error) {
	var d decoder
	if err := d.decode(b); err != nil {
		return nil, err
	}
	return &d.doc, nil
}

// DecodeHeader returns the preamble of an archive without decoding the
// sections it points to. The section offsets are checked against the length
// of b.
func DecodeHeader(b []byte) (Header, error) {
	var d decoder
	d.b = b
	if err := d.readHeader(); err != nil {
		return Header{}, err
	}
	return d.h, nil
}

// Read reads an entire archive from r and decodes it.
func Read(r io.Reader) (*Document, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}
