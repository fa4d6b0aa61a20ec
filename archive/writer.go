package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mmsf-tools/sfsprite/gbacolor"
	"github.com/mmsf-tools/sfsprite/obj"
)

var errTooLarge = errors.New("archive: document too large to encode")

type objCodes struct {
	size, shape uint8
}

type encoder struct {
	b   []byte
	pos int

	doc *Document

	// Starting tile number of each tileset
	tileNumbers []int
	totalTiles  int
	codes       [][]objCodes
}

func (e *encoder) u8(v uint8) {
	e.b[e.pos] = v
	e.pos++
}

func (e *encoder) u16(v uint16) {
	binary.LittleEndian.PutUint16(e.b[e.pos:], v)
	e.pos += 2
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.b[e.pos:], v)
	e.pos += 4
}

// prepare checks the document can be written and works out the size of the
// resulting archive
func (e *encoder) prepare() (int, error) {
	d := e.doc

	if len(d.Sprites) > 0xffff || len(d.Animations) > 0xffff || len(d.Palettes) > 0xffff {
		return 0, errTooLarge
	}

	e.tileNumbers = make([]int, len(d.Tilesets))
	for i, t := range d.Tilesets {
		e.tileNumbers[i] = e.totalTiles
		e.totalTiles += len(t)
	}
	if e.totalTiles > 0xffff {
		return 0, errTooLarge
	}

	size := headerSize + tilesetHeaderSize + paletteHeaderSize + animationHeaderSize + spriteHeaderSize
	size += len(d.Sprites) * usageSize
	size += e.totalTiles * d.ColorMode.TileBytes()

	for i, p := range d.Palettes {
		if len(p) != d.ColorMode.PaletteSize() {
			return 0, fmt.Errorf("archive: palette %d has %d colors, want %d", i, len(p), d.ColorMode.PaletteSize())
		}
	}
	size += len(d.Palettes) * d.ColorMode.PaletteSize() * 2

	size += len(d.Animations) * offsetSize
	for i, a := range d.Animations {
		if len(a) == 0 {
			return 0, fmt.Errorf("archive: animation %d has no frames", i)
		}
		size += len(a) * frameSize
	}

	size += len(d.Sprites) * offsetSize
	e.codes = make([][]objCodes, len(d.Sprites))
	shift := d.ColorMode.tileNumberShift()
	for i, s := range d.Sprites {
		if len(s.SubSprites) == 0 {
			return 0, fmt.Errorf("archive: sprite %d has no subsprites", i)
		}
		if s.TileSetID < 0 || s.TileSetID >= len(d.Tilesets) {
			return 0, fmt.Errorf("archive: sprite %d uses tileset %d of %d", i, s.TileSetID, len(d.Tilesets))
		}
		e.codes[i] = make([]objCodes, len(s.SubSprites))
		for j, ss := range s.SubSprites {
			if ss.Position.X < -128 || ss.Position.X > 127 || ss.Position.Y < -128 || ss.Position.Y > 127 {
				return 0, fmt.Errorf("archive: sprite %d subsprite %d position %v out of range", i, j, ss.Position)
			}
			if ss.StartTile < 0 || ss.StartTile>>shift > 0xffff || ss.StartTile&(1<<shift-1) != 0 {
				return 0, fmt.Errorf("archive: sprite %d subsprite %d start tile %d can't be represented in %s mode", i, j, ss.StartTile, d.ColorMode)
			}
			if ss.Prohibited {
				e.codes[i][j] = objCodes{size: ss.SizeCode, shape: uint8(obj.Prohibited)}
				continue
			}
			sz, sh, err := obj.Codes(ss.Size)
			if err != nil {
				return 0, &InvalidObjError{SpriteID: i, SubSpriteID: j, Err: err}
			}
			e.codes[i][j] = objCodes{size: sz, shape: sh}
		}
		size += len(s.SubSprites) * subSpriteSize
	}

	return size, nil
}

func (e *encoder) packTile(t *Tile) {
	if e.doc.ColorMode == Color256 {
		e.pos += copy(e.b[e.pos:], t[:])
		return
	}
	for i := 0; i < TilePixels; i += 2 {
		e.u8(t[i]&0x0f | t[i+1]&0x0f<<4)
	}
}

func (e *encoder) writeTilesets() {
	d := e.doc

	e.u16(uint16(e.totalTiles)) // max tiles
	e.u16(uint16(e.totalTiles))
	e.u16(uint16(tilesetHeaderSize + len(d.Sprites)*usageSize))
	e.u16(0)

	for _, s := range d.Sprites {
		e.u16(uint16(len(d.Tilesets[s.TileSetID])))
		e.u16(uint16(e.tileNumbers[s.TileSetID]))
	}

	for _, tileset := range d.Tilesets {
		for i := range tileset {
			e.packTile(&tileset[i])
		}
	}
}

func (e *encoder) writePalettes() {
	d := e.doc

	e.u16(d.ColorMode.depth())
	e.u16(uint16(len(d.Palettes)))

	for _, p := range d.Palettes {
		for _, c := range p {
			c.HasAlpha = false
			e.u16(gbacolor.Pack(c))
		}
	}
}

func (e *encoder) writeAnimations() {
	d := e.doc
	base := e.pos

	e.u16(uint16(len(d.Animations)))
	e.u16(0)

	table := e.pos
	e.pos += len(d.Animations) * offsetSize

	for i, a := range d.Animations {
		binary.LittleEndian.PutUint32(e.b[table+i*offsetSize:], uint32(e.pos-base))
		for j, f := range a {
			var flags uint8
			if f.IsLoop {
				flags |= frameLoop
			}
			if j == len(a)-1 {
				flags |= frameEnd
			}
			e.u8(f.SpriteID)
			e.u8(f.Delay)
			e.u8(flags)
			e.u8(f.Palette)
		}
	}
}

func (e *encoder) writeSprites() {
	d := e.doc
	base := e.pos
	shift := d.ColorMode.tileNumberShift()

	e.u16(uint16(len(d.Sprites)))
	e.u16(0)

	table := e.pos
	e.pos += len(d.Sprites) * offsetSize

	for i, s := range d.Sprites {
		binary.LittleEndian.PutUint32(e.b[table+i*offsetSize:], uint32(e.pos-base))
		for j, ss := range s.SubSprites {
			var flip, last uint8
			if ss.FlipH {
				flip |= flipH
			}
			if ss.FlipV {
				flip |= flipV
			}
			if j == len(s.SubSprites)-1 {
				last = 1
			}
			e.u8(uint8(ss.StartTile >> shift))
			e.u8(uint8(int8(ss.Position.X)))
			e.u8(uint8(int8(ss.Position.Y)))
			e.u8(e.codes[i][j].size)
			e.u8(e.codes[i][j].shape)
			e.u8(flip)
			e.u8(last)
			e.u8(uint8(ss.StartTile >> (8 + shift)))
		}
	}
}

func (e *encoder) encode() ([]byte, error) {
	size, err := e.prepare()
	if err != nil {
		return nil, err
	}
	e.b = make([]byte, size)

	var h Header

	e.pos = headerSize
	h.TilesetOffset = uint32(e.pos)
	e.writeTilesets()

	h.PaletteOffset = uint32(e.pos)
	e.writePalettes()

	h.AnimationOffset = uint32(e.pos)
	e.writeAnimations()

	h.SpriteOffset = uint32(e.pos)
	e.writeSprites()

	h.StartTileShift = StartTileShift

	e.pos = 0
	e.u32(h.TilesetOffset)
	e.u32(h.PaletteOffset)
	e.u32(h.AnimationOffset)
	e.u32(h.SpriteOffset)
	e.u32(h.StartTileShift)

	return e.b, nil
}

// Encode returns the archive form of d. The document isn't otherwise
// validated, however an error is returned for anything that can't be
// represented such as an OBJ size that isn't one of the legal ones or a
// sprite using a tileset that doesn't exist. Prohibited subsprites are
// written with their size code as-is.
func Encode(d *Document) ([]byte, error) {
	e := encoder{doc: d}
	return e.encode()
}

// Write encodes d and writes it to w.
func Write(w io.Writer, d *Document) error {
	b, err := Encode(d)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
