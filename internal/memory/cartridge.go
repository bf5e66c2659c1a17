package memory

import "github.com/tsolberg/dmgo/internal/bit"

// Cartridge header field offsets (all within the first 0x150 bytes of ROM).
const (
	titleAddress          = 0x134
	titleLength           = 16
	headerChecksumAddress = 0x14D
	globalChecksumAddress = 0x14E
)

// maxROMSize is the largest ROM this core accepts: a flat, unbanked 32 KiB
// image mapped directly into 0x0000-0x7FFF. Anything larger would require
// MBC bank switching, which is out of scope (spec.md non-goals).
const maxROMSize = 0x8000

// Cartridge holds a flat ROM image and the handful of header fields worth
// surfacing for logging/CLI display. It has no bank-switching behavior: all
// of it is mapped read-only into 0x0000-0x7FFF.
type Cartridge struct {
	data           [maxROMSize]byte
	size           int
	Title          string
	HeaderChecksum uint16
	GlobalChecksum uint16
}

// NewCartridge returns an empty cartridge (all zero bytes), equivalent to
// powering on the Game Boy with no cartridge inserted.
func NewCartridge() *Cartridge {
	return &Cartridge{}
}

// NewCartridgeWithData builds a cartridge from a ROM image. Images larger
// than 32 KiB are rejected by the caller (see MMU.LoadROM); this only copies
// what's given and parses whatever header fields are present.
func NewCartridgeWithData(rom []byte) *Cartridge {
	c := &Cartridge{}
	n := copy(c.data[:], rom)
	c.size = n

	if n > titleAddress+titleLength {
		c.Title = decodeTitle(c.data[titleAddress : titleAddress+titleLength])
	}
	if n > headerChecksumAddress {
		c.HeaderChecksum = bit.Combine(0, c.data[headerChecksumAddress])
	}
	if n > globalChecksumAddress+1 {
		c.GlobalChecksum = bit.Combine(c.data[globalChecksumAddress], c.data[globalChecksumAddress+1])
	}

	return c
}

// decodeTitle trims the title field at its first NUL byte; ROM titles are
// padded with zeroes, not spaces.
func decodeTitle(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// Read returns the byte at addr. Addresses inside the 32 KiB window but past
// the end of the loaded image read as 0 (the image is zero-padded); reads
// beyond the 32 KiB window return 0xFF. Neither case fails, matching the
// "unmapped read never fails" policy in spec.md §7.
func (c *Cartridge) Read(address uint16) byte {
	if int(address) >= len(c.data) {
		return 0xFF
	}
	return c.data[address]
}

// Write is a no-op: this is a flat ROM-only cartridge with no RAM or
// mapper registers to write to (spec.md non-goal: no MBC bank switching).
func (c *Cartridge) Write(address uint16, value byte) {}
