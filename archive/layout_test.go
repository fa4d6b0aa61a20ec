package archive

import "encoding/binary"

const (
	sectionTilesets = iota
	sectionPalettes
	sectionAnimations
	sectionSprites
)

type usage struct {
	count, number uint16
}

// layout assembles raw archive bytes with sections written in any order so
// the decoder can be fed data the encoder would never produce
type layout struct {
	depth      uint16
	palettes   [][]uint16
	usage      []usage
	tiles      []byte
	sprites    [][][subSpriteSize]byte
	animations [][][frameSize]byte
	order      []int
}

func newLayout() *layout {
	return &layout{
		depth: depth16,
		order: []int{sectionTilesets, sectionPalettes, sectionAnimations, sectionSprites},
	}
}

// minimalLayout has one 16 color palette, one sprite with a single 8x8
// subsprite at the origin, one tileset of one blank tile and one animation
// with a single frame
func minimalLayout() *layout {
	l := newLayout()
	l.palettes = [][]uint16{make([]uint16, 16)}
	l.usage = []usage{{1, 0}}
	l.tiles = make([]byte, 0x20)
	l.sprites = [][][subSpriteSize]byte{{{0, 0, 0, 0, 0, 0, 1, 0}}}
	l.animations = [][][frameSize]byte{{{0, 10, frameEnd, 0}}}
	return l
}

type buf []byte

func (b *buf) u16(v uint16) {
	*b = append(*b, 0, 0)
	binary.LittleEndian.PutUint16((*b)[len(*b)-2:], v)
}

func (b *buf) u32(v uint32) {
	*b = append(*b, 0, 0, 0, 0)
	binary.LittleEndian.PutUint32((*b)[len(*b)-4:], v)
}

func (l *layout) bytes() []byte {
	b := make(buf, headerSize)
	binary.LittleEndian.PutUint32(b[16:], StartTileShift)

	for _, section := range l.order {
		base := len(b)
		binary.LittleEndian.PutUint32(b[section*4:], uint32(base))

		switch section {
		case sectionTilesets:
			b.u16(uint16(len(l.tiles) / 0x20))
			b.u16(uint16(len(l.tiles) / 0x20))
			b.u16(uint16(tilesetHeaderSize + len(l.usage)*usageSize))
			b.u16(0)
			for _, u := range l.usage {
				b.u16(u.count)
				b.u16(u.number)
			}
			b = append(b, l.tiles...)
		case sectionPalettes:
			b.u16(l.depth)
			b.u16(uint16(len(l.palettes)))
			for _, p := range l.palettes {
				for _, c := range p {
					b.u16(c)
				}
			}
		case sectionAnimations:
			b.u16(uint16(len(l.animations)))
			b.u16(0)
			table := len(b)
			b = append(b, make([]byte, len(l.animations)*offsetSize)...)
			for i, a := range l.animations {
				binary.LittleEndian.PutUint32(b[table+i*offsetSize:], uint32(len(b)-base))
				for _, f := range a {
					b = append(b, f[:]...)
				}
			}
		case sectionSprites:
			b.u16(uint16(len(l.sprites)))
			b.u16(0)
			table := len(b)
			b = append(b, make([]byte, len(l.sprites)*offsetSize)...)
			for i, s := range l.sprites {
				binary.LittleEndian.PutUint32(b[table+i*offsetSize:], uint32(len(b)-base))
				for _, r := range s {
					b = append(b, r[:]...)
				}
			}
		}
	}

	return b
}
