package sfsprite

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"github.com/mmsf-tools/sfsprite/archive"
	"github.com/mmsf-tools/sfsprite/gbacolor"
	"gopkg.in/yaml.v3"
)

// Summary describes a single archive as recorded in the catalogue.
type Summary struct {
	Path       string `yaml:"path"`
	SHA1       string `yaml:"sha1"`
	Size       int64  `yaml:"size"`
	Colors     int    `yaml:"colors,omitempty"`
	Palettes   int    `yaml:"palettes"`
	Tilesets   int    `yaml:"tilesets"`
	Tiles      int    `yaml:"tiles"`
	Sprites    int    `yaml:"sprites"`
	SubSprites int    `yaml:"subsprites"`
	Animations int    `yaml:"animations"`
	Frames     int    `yaml:"frames"`
	// Stable is set when re-encoding the decoded archive is idempotent
	Stable  bool   `yaml:"stable"`
	ErrorID int    `yaml:"error_id,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

func (s *Summary) setError(err error) {
	s.Error = err.Error()
	if re, ok := err.(archive.ReadError); ok {
		s.ErrorID = re.ID()
	}
}

func checksum(b []byte) string {
	h := sha1.Sum(b)
	return fmt.Sprintf("%X", h[:])
}

// Summarize decodes b and describes its contents. If decoding fails the
// error is recorded in the summary, anything going wrong after that only
// clears Stable.
func Summarize(path string, b []byte) *Summary {
	s := &Summary{
		Path: path,
		SHA1: checksum(b),
		Size: int64(len(b)),
	}

	doc, err := archive.Decode(b)
	if err != nil {
		s.setError(err)
		return s
	}

	s.Colors = doc.ColorMode.PaletteSize()
	s.Palettes = len(doc.Palettes)
	s.Tilesets = len(doc.Tilesets)
	for _, t := range doc.Tilesets {
		s.Tiles += len(t)
	}
	s.Sprites = len(doc.Sprites)
	for _, sp := range doc.Sprites {
		s.SubSprites += len(sp.SubSprites)
	}
	s.Animations = len(doc.Animations)
	for _, a := range doc.Animations {
		s.Frames += len(a)
	}

	// Re-encode twice; the first pass normalises header values. Failing
	// to get that far just means the archive isn't stable
	first, err := archive.Encode(doc)
	if err != nil {
		return s
	}
	again, err := archive.Decode(first)
	if err != nil {
		return s
	}
	second, err := archive.Encode(again)
	if err != nil {
		return s
	}
	s.Stable = bytes.Equal(first, second)

	return s
}

type subSpriteView struct {
	X          int  `yaml:"x"`
	Y          int  `yaml:"y"`
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Tile       int  `yaml:"tile"`
	FlipH      bool `yaml:"flip_h,omitempty"`
	FlipV      bool `yaml:"flip_v,omitempty"`
	Prohibited bool `yaml:"prohibited,omitempty"`
}

type spriteView struct {
	Tileset    int             `yaml:"tileset"`
	Bounds     string          `yaml:"bounds"`
	SubSprites []subSpriteView `yaml:"subsprites"`
}

type frameView struct {
	Sprite  int  `yaml:"sprite"`
	Delay   int  `yaml:"delay"`
	Palette int  `yaml:"palette"`
	Loop    bool `yaml:"loop,omitempty"`
}

type documentView struct {
	Colors     int           `yaml:"colors"`
	Palettes   [][]string    `yaml:"palettes"`
	Tilesets   []int         `yaml:"tilesets"`
	Sprites    []spriteView  `yaml:"sprites"`
	Animations [][]frameView `yaml:"animations"`
}

func hexColor(c gbacolor.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// MarshalYAML renders the structure of doc as YAML. Tile pixel data is
// reduced to a tile count per tileset.
func MarshalYAML(doc *archive.Document) ([]byte, error) {
	v := documentView{
		Colors: doc.ColorMode.PaletteSize(),
	}

	for _, p := range doc.Palettes {
		colors := make([]string, len(p))
		for i, c := range p {
			colors[i] = hexColor(c)
		}
		v.Palettes = append(v.Palettes, colors)
	}

	for _, t := range doc.Tilesets {
		v.Tilesets = append(v.Tilesets, len(t))
	}

	for _, s := range doc.Sprites {
		sv := spriteView{
			Tileset: s.TileSetID,
			Bounds:  s.Bounds().String(),
		}
		for _, ss := range s.SubSprites {
			sv.SubSprites = append(sv.SubSprites, subSpriteView{
				X:          ss.Position.X,
				Y:          ss.Position.Y,
				Width:      ss.Size.X,
				Height:     ss.Size.Y,
				Tile:       ss.StartTile,
				FlipH:      ss.FlipH,
				FlipV:      ss.FlipV,
				Prohibited: ss.Prohibited,
			})
		}
		v.Sprites = append(v.Sprites, sv)
	}

	for _, a := range doc.Animations {
		frames := make([]frameView, len(a))
		for i, f := range a {
			frames[i] = frameView{
				Sprite:  int(f.SpriteID),
				Delay:   int(f.Delay),
				Palette: int(f.Palette),
				Loop:    f.IsLoop,
			}
		}
		v.Animations = append(v.Animations, frames)
	}

	return yaml.Marshal(&v)
}
