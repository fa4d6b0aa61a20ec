package archive

import "fmt"

// ReadError is implemented by every structural error the decoder returns.
// The ID is stable and can be used to select a message for the user.
type ReadError interface {
	error
	ID() int
}

// Stable error IDs.
const (
	IDHeaderTooSmall = iota + 1
	IDTilesetsHeaderOverflow
	IDPalettesHeaderOverflow
	IDSpritesHeaderOverflow
	IDAnimationsHeaderOverflow
	IDPalettesAddressOverflow
	IDSpritesAddressOverflow
	IDTilesetsAddressOverflow
	IDTilesetsEOF
	IDTilesetsWrongPosition
	IDTilesetsWrongSize
	IDUnsupportedColorMode
	IDNoLastSubspriteMark
	IDAnimationsAddressOverflow
)

// HeaderTooSmallError is returned when the file can't hold the preamble.
type HeaderTooSmallError struct {
	FileSize int
}

func (e *HeaderTooSmallError) Error() string {
	return fmt.Sprintf("archive: file of %d bytes is too small for header", e.FileSize)
}

// ID implements ReadError.
func (e *HeaderTooSmallError) ID() int { return IDHeaderTooSmall }

// TilesetsHeaderOverflowError is returned when the tileset section offset
// points past the end of the file.
type TilesetsHeaderOverflowError struct {
	FileSize int
	Address  int
}

func (e *TilesetsHeaderOverflowError) Error() string {
	return fmt.Sprintf("archive: tileset section offset %#x beyond end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *TilesetsHeaderOverflowError) ID() int { return IDTilesetsHeaderOverflow }

// PalettesHeaderOverflowError is returned when the palette section offset
// points past the end of the file.
type PalettesHeaderOverflowError struct {
	FileSize int
	Address  int
}

func (e *PalettesHeaderOverflowError) Error() string {
	return fmt.Sprintf("archive: palette section offset %#x beyond end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *PalettesHeaderOverflowError) ID() int { return IDPalettesHeaderOverflow }

// SpritesHeaderOverflowError is returned when the sprite section offset
// points past the end of the file.
type SpritesHeaderOverflowError struct {
	FileSize int
	Address  int
}

func (e *SpritesHeaderOverflowError) Error() string {
	return fmt.Sprintf("archive: sprite section offset %#x beyond end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *SpritesHeaderOverflowError) ID() int { return IDSpritesHeaderOverflow }

// AnimationsHeaderOverflowError is returned when the animation section
// offset points past the end of the file.
type AnimationsHeaderOverflowError struct {
	FileSize int
	Address  int
}

func (e *AnimationsHeaderOverflowError) Error() string {
	return fmt.Sprintf("archive: animation section offset %#x beyond end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *AnimationsHeaderOverflowError) ID() int { return IDAnimationsHeaderOverflow }

// PalettesAddressOverflowError is returned when the palette section runs
// past the end of the file.
type PalettesAddressOverflowError struct {
	FileSize int
	Address  int
}

func (e *PalettesAddressOverflowError) Error() string {
	return fmt.Sprintf("archive: palette data at %#x runs past end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *PalettesAddressOverflowError) ID() int { return IDPalettesAddressOverflow }

// SpritesAddressOverflowError is returned when the sprite section header or
// offset table runs past the end of the file.
type SpritesAddressOverflowError struct {
	FileSize int
	Address  int
}

func (e *SpritesAddressOverflowError) Error() string {
	return fmt.Sprintf("archive: sprite data at %#x runs past end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *SpritesAddressOverflowError) ID() int { return IDSpritesAddressOverflow }

// TilesetsAddressOverflowError is returned when the tileset section header
// runs past the end of the file.
type TilesetsAddressOverflowError struct {
	FileSize int
	Address  int
}

func (e *TilesetsAddressOverflowError) Error() string {
	return fmt.Sprintf("archive: tileset data at %#x runs past end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *TilesetsAddressOverflowError) ID() int { return IDTilesetsAddressOverflow }

// TilesetsEOFError is returned when the file ends before the tileset usage
// entry of every sprite has been read. TilesetID is the index of the usage
// entry, which is also the sprite index.
type TilesetsEOFError struct {
	TilesetID int
	FileSize  int
	Address   int
}

func (e *TilesetsEOFError) Error() string {
	return fmt.Sprintf("archive: tileset entry %d at %#x runs past end of %d byte file", e.TilesetID, e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *TilesetsEOFError) ID() int { return IDTilesetsEOF }

// TilesetsWrongPositionError is returned when a tileset starts beyond the end
// of the file.
type TilesetsWrongPositionError struct {
	TilesetID int
	FileSize  int
	Address   int
}

func (e *TilesetsWrongPositionError) Error() string {
	return fmt.Sprintf("archive: tileset %d at %#x starts beyond end of %d byte file", e.TilesetID, e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *TilesetsWrongPositionError) ID() int { return IDTilesetsWrongPosition }

// TilesetsWrongSizeError is returned when a tileset ends beyond the end of
// the file.
type TilesetsWrongSizeError struct {
	TilesetID int
	FileSize  int
	Address   int
	Size      int
}

func (e *TilesetsWrongSizeError) Error() string {
	return fmt.Sprintf("archive: tileset %d of %d bytes at %#x runs past end of %d byte file", e.TilesetID, e.Size, e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *TilesetsWrongSizeError) ID() int { return IDTilesetsWrongSize }

// UnsupportedColorModeError is returned for a color depth other than 5 or 6.
type UnsupportedColorModeError struct {
	ColorDepth int
}

func (e *UnsupportedColorModeError) Error() string {
	return fmt.Sprintf("archive: unsupported color depth %d", e.ColorDepth)
}

// ID implements ReadError.
func (e *UnsupportedColorModeError) ID() int { return IDUnsupportedColorMode }

// NoLastSubspriteMarkError is returned when the file ends before the last
// OBJ record of a sprite has been seen.
type NoLastSubspriteMarkError struct {
	SpriteID int
	// SubSprites is the number of complete records read
	SubSprites int
}

func (e *NoLastSubspriteMarkError) Error() string {
	return fmt.Sprintf("archive: sprite %d has no last subsprite mark after %d subsprites", e.SpriteID, e.SubSprites)
}

// ID implements ReadError.
func (e *NoLastSubspriteMarkError) ID() int { return IDNoLastSubspriteMark }

// AnimationsAddressOverflowError is returned when the animation section
// header, offset table or a frame list runs past the end of the file.
type AnimationsAddressOverflowError struct {
	FileSize int
	Address  int
}

func (e *AnimationsAddressOverflowError) Error() string {
	return fmt.Sprintf("archive: animation data at %#x runs past end of %d byte file", e.Address, e.FileSize)
}

// ID implements ReadError.
func (e *AnimationsAddressOverflowError) ID() int { return IDAnimationsAddressOverflow }

// InvalidObjError is returned when an OBJ record uses a size and shape that
// isn't one of the legal combinations. It is not a ReadError; on decode it
// means the record itself is malformed rather than the archive layout, and
// on encode that the document is.
type InvalidObjError struct {
	SpriteID    int
	SubSpriteID int
	Err         error
}

func (e *InvalidObjError) Error() string {
	return fmt.Sprintf("archive: sprite %d subsprite %d: %s", e.SpriteID, e.SubSpriteID, e.Err)
}

// Unwrap returns the underlying obj.InvalidSizeError.
func (e *InvalidObjError) Unwrap() error { return e.Err }
