package archive

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"

	"github.com/mmsf-tools/sfsprite/gbacolor"
	"github.com/mmsf-tools/sfsprite/obj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subSprite(x, y, w, h, tile int, flipH, flipV bool) SubSprite {
	size, shape, err := obj.Codes(image.Pt(w, h))
	if err != nil {
		panic(err)
	}
	return SubSprite{
		Position:  image.Pt(x, y),
		SizeCode:  size,
		ShapeCode: shape,
		Size:      image.Pt(w, h),
		FlipH:     flipH,
		FlipV:     flipV,
		StartTile: tile,
	}
}

func testDocument(mode ColorMode) *Document {
	d := &Document{
		ColorMode:      mode,
		StartTileShift: StartTileShift,
	}

	for i := 0; i < 3; i++ {
		p := make(Palette, mode.PaletteSize())
		for j := range p {
			p[j] = gbacolor.GBA(uint16(i*0x1111 + j*0x21))
		}
		d.Palettes = append(d.Palettes, p)
	}

	mask := uint8(0x0f)
	if mode == Color256 {
		mask = 0xff
	}
	for i, n := range []int{2, 4, 1} {
		ts := make(Tileset, n)
		for j := range ts {
			for k := range ts[j] {
				ts[j][k] = uint8(i+j+k) & mask
			}
		}
		d.Tilesets = append(d.Tilesets, ts)
	}
	d.MaxTiles = 7

	d.Sprites = []Sprite{
		{SubSprites: []SubSprite{subSprite(0, 0, 8, 8, 0, false, false)}, TileSetID: 0},
		{SubSprites: []SubSprite{
			subSprite(-32, -64, 32, 64, 2, true, false),
			subSprite(127, -128, 64, 32, 512, false, true),
			subSprite(4, 4, 16, 8, 0x1fe, true, true),
		}, TileSetID: 1},
		{SubSprites: []SubSprite{subSprite(-8, 8, 8, 32, 4, false, false)}, TileSetID: 0},
		{SubSprites: []SubSprite{subSprite(0, 0, 64, 64, 0, false, false)}, TileSetID: 2},
	}

	d.Animations = []Animation{
		{{SpriteID: 0, Delay: 4}},
		{{SpriteID: 1, Delay: 8, Palette: 1}, {SpriteID: 2, Delay: 255, Palette: 2}, {SpriteID: 3, Delay: 1, IsLoop: true}},
		{{SpriteID: 3, Delay: 0, IsLoop: true, Palette: 2}},
	}

	return d
}

func TestRoundTrip(t *testing.T) {
	for _, mode := range []ColorMode{Color16, Color256} {
		t.Run(mode.String(), func(t *testing.T) {
			want := testDocument(mode)

			b, err := Encode(want)
			require.NoError(t, err)

			got, err := Decode(b)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			b2, err := Encode(got)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(b, b2))
		})
	}
}

func TestRoundTripMinimal(t *testing.T) {
	in := minimalLayout().bytes()

	doc, err := Decode(in)
	require.NoError(t, err)

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeLayout(t *testing.T) {
	d := testDocument(Color16)
	b, err := Encode(d)
	require.NoError(t, err)

	sprites, subSprites, frames := 0, 0, 0
	for _, s := range d.Sprites {
		sprites++
		subSprites += len(s.SubSprites)
	}
	for _, a := range d.Animations {
		frames += len(a)
	}

	size := headerSize + tilesetHeaderSize + paletteHeaderSize + animationHeaderSize + spriteHeaderSize
	size += sprites*usageSize + 7*0x20
	size += len(d.Palettes) * 16 * 2
	size += len(d.Animations)*offsetSize + frames*frameSize
	size += sprites*offsetSize + subSprites*subSpriteSize
	assert.Len(t, b, size)

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(headerSize), h.TilesetOffset)
	assert.Equal(t, uint32(StartTileShift), h.StartTileShift)
	assert.True(t, h.TilesetOffset < h.PaletteOffset)
	assert.True(t, h.PaletteOffset < h.AnimationOffset)
	assert.True(t, h.AnimationOffset < h.SpriteOffset)

	le := binary.LittleEndian
	ts := b[h.TilesetOffset:]
	assert.Equal(t, uint16(7), le.Uint16(ts[0:]))
	assert.Equal(t, uint16(7), le.Uint16(ts[2:]))
	assert.Equal(t, uint16(tilesetHeaderSize+sprites*usageSize), le.Uint16(ts[4:]))
	// Usage entries per sprite, sprites 0 and 2 share tileset 0
	usages := []usage{{2, 0}, {4, 2}, {2, 0}, {1, 6}}
	for i, u := range usages {
		assert.Equal(t, u.count, le.Uint16(ts[tilesetHeaderSize+i*usageSize:]))
		assert.Equal(t, u.number, le.Uint16(ts[tilesetHeaderSize+i*usageSize+2:]))
	}

	pal := b[h.PaletteOffset:]
	assert.Equal(t, uint16(depth16), le.Uint16(pal[0:]))
	assert.Equal(t, uint16(3), le.Uint16(pal[2:]))

	anim := b[h.AnimationOffset:]
	assert.Equal(t, uint16(3), le.Uint16(anim[0:]))
	first := le.Uint32(anim[animationHeaderSize:])
	assert.Equal(t, uint32(animationHeaderSize+3*offsetSize), first)
	// Single frame animation only has the end flag
	assert.Equal(t, uint8(frameEnd), anim[first+2])

	spr := b[h.SpriteOffset:]
	assert.Equal(t, uint16(4), le.Uint16(spr[0:]))
	second := le.Uint32(spr[spriteHeaderSize+offsetSize:])
	rec := spr[second+subSpriteSize : second+2*subSpriteSize]
	assert.Equal(t, []byte{0, 127, 0x80, 3, 1, flipV, 0, 1}, []byte(rec))
}

func TestEncodeLoopFlags(t *testing.T) {
	d := testDocument(Color16)
	b, err := Encode(d)
	require.NoError(t, err)

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	anim := b[h.AnimationOffset:]
	second := le32(anim[animationHeaderSize+offsetSize:])
	flags := []uint8{anim[second+2], anim[second+6], anim[second+10]}
	assert.Equal(t, []uint8{0, 0, frameLoop | frameEnd}, flags)
}

func le32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func TestEncodeObjCodes(t *testing.T) {
	d := testDocument(Color256)
	d.Sprites = []Sprite{{SubSprites: []SubSprite{{Size: image.Pt(64, 64), StartTile: 0x1ff}}}}
	d.Animations = nil

	b, err := Encode(d)
	require.NoError(t, err)

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	spr := b[h.SpriteOffset:]
	rec := spr[spriteHeaderSize+offsetSize:]
	assert.Equal(t, []byte{0xff, 0, 0, 3, 0, 0, 1, 1}, []byte(rec[:subSpriteSize]))
}

func TestEncodeErrors(t *testing.T) {
	d := testDocument(Color16)
	d.Sprites[1].SubSprites[2].Size = image.Pt(8, 64)
	_, err := Encode(d)
	var e *InvalidObjError
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 1, e.SpriteID)
		assert.Equal(t, 2, e.SubSpriteID)
	}

	d = testDocument(Color16)
	d.Sprites[0].SubSprites[0].Size = image.Point{}
	_, err = Encode(d)
	if assert.ErrorAs(t, err, &e) {
		assert.Contains(t, err.Error(), "invalid obj size 0x0")
	}

	d = testDocument(Color16)
	d.Sprites[2].TileSetID = 3
	_, err = Encode(d)
	assert.Error(t, err)

	d = testDocument(Color16)
	d.Palettes[1] = d.Palettes[1][:15]
	_, err = Encode(d)
	assert.Error(t, err)

	d = testDocument(Color16)
	d.Animations[0] = Animation{}
	_, err = Encode(d)
	assert.Error(t, err)

	d = testDocument(Color16)
	d.Sprites[0].SubSprites = nil
	_, err = Encode(d)
	assert.Error(t, err)
}

func TestEncodeSubSpriteRange(t *testing.T) {
	tables := []struct {
		mode ColorMode
		ss   SubSprite
	}{
		{Color16, subSprite(0, 0, 8, 8, 0x20002, false, false)},
		{Color16, subSprite(0, 0, 8, 8, 3, false, false)},
		{Color16, subSprite(0, 0, 8, 8, -2, false, false)},
		{Color256, subSprite(0, 0, 8, 8, 0x10000, false, false)},
		{Color16, subSprite(200, 0, 8, 8, 0, false, false)},
		{Color16, subSprite(0, -129, 8, 8, 0, false, false)},
	}

	for _, table := range tables {
		d := testDocument(table.mode)
		d.Sprites[0].SubSprites[0] = table.ss
		_, err := Encode(d)
		assert.Error(t, err, "%+v", table.ss)
	}

	d := testDocument(Color16)
	d.Sprites[0].SubSprites[0] = subSprite(0, 0, 8, 8, 0x1fffe, false, false)
	b, err := Encode(d)
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 0x1fffe, got.Sprites[0].SubSprites[0].StartTile)
}

func TestRoundTripProhibited(t *testing.T) {
	l := minimalLayout()
	l.sprites[0][0] = [subSpriteSize]byte{0, 0, 0, 1, 3, 0, 1, 0}
	in := l.bytes()

	doc, err := Decode(in)
	require.NoError(t, err)
	ss := doc.Sprites[0].SubSprites[0]
	require.True(t, ss.Prohibited)
	assert.Equal(t, uint8(1), ss.SizeCode)

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeEmpty(t *testing.T) {
	b, err := Encode(&Document{})
	require.NoError(t, err)
	assert.Len(t, b, headerSize+tilesetHeaderSize+paletteHeaderSize+animationHeaderSize+spriteHeaderSize)

	doc, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, doc.Sprites)
	assert.Empty(t, doc.Palettes)
	assert.Empty(t, doc.Tilesets)
	assert.Empty(t, doc.Animations)
}

func TestWrite(t *testing.T) {
	d := testDocument(Color256)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))

	b, err := d.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, b, buf.Bytes())
}

func TestBounds(t *testing.T) {
	d := testDocument(Color16)

	assert.Equal(t, image.Rect(0, 0, 8, 8), d.Sprites[0].Bounds())
	assert.Equal(t, image.Rect(-32, -128, 191, 12), d.Sprites[1].Bounds())
	assert.Equal(t, image.Rect(-8, 0, 0, 40), d.Sprites[2].Bounds())
	assert.Equal(t, image.Rect(0, 0, 64, 64), d.Sprites[3].Bounds())
}

func TestTileAt(t *testing.T) {
	s := subSprite(0, 0, 32, 16, 10, false, false)
	assert.Equal(t, 10, s.TileAt(0, 0))
	assert.Equal(t, 13, s.TileAt(3, 0))
	assert.Equal(t, 15, s.TileAt(1, 1))

	s.FlipH = true
	assert.Equal(t, 13, s.TileAt(0, 0))
	assert.Equal(t, 16, s.TileAt(1, 1))

	s.FlipV = true
	assert.Equal(t, 17, s.TileAt(0, 0))
	assert.Equal(t, 10, s.TileAt(3, 1))
}
