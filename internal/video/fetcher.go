package video

import "github.com/tsolberg/dmgo/internal/addr"

// fetchStep is one stage of the background tile fetcher's state machine
// (spec.md §4.4).
type fetchStep int

const (
	stepReadTileID fetchStep = iota
	stepReadData0
	stepReadData1
	stepIdle
)

// bus is the subset of the MMU the fetcher needs: raw register/VRAM reads.
// Declared here (rather than importing memory.MMU directly into the
// fetcher) keeps the fetcher's dependency surface to exactly what spec.md
// §4.4 says it touches.
type bus interface {
	Read(address uint16) byte
}

// fetcher reproduces the two-bitplane tile fetch the real PPU performs to
// keep the pixel FIFO fed. It owns no pixels itself; each step either reads
// one byte from VRAM or, once both bitplanes are in hand, pushes eight
// pixels into the FIFO passed to it.
type fetcher struct {
	step  fetchStep
	tileX int // column of the tile currently being fetched, within the 32-tile map row
	tileID byte
	data0  byte
	data1  byte
}

func newFetcher() *fetcher {
	return &fetcher{step: stepReadTileID}
}

// reset restores the fetcher to its initial state, as happens whenever the
// pixel FIFO is cleared at the end of a scanline.
func (f *fetcher) reset() {
	*f = fetcher{step: stepReadTileID}
}

// tick advances the fetcher by one half-rate tick, mutating fifo in place
// when the Idle stage pushes a fresh batch of eight pixels.
func (f *fetcher) tick(m bus, scx, scy, ly byte, fifo *[]uint8) {
	switch f.step {
	case stepReadTileID:
		col := uint16((scx/8 + byte(f.tileX)) & 0x1F)
		row := uint16(((ly + scy) & 0xFF) / 8)
		f.tileID = m.Read(addr.TileMap0 + row*32 + col)
		f.step = stepReadData0

	case stepReadData0:
		f.data0 = m.Read(tileDataAddress(f.tileID, ly, scy))
		f.step = stepReadData1

	case stepReadData1:
		f.data1 = m.Read(tileDataAddress(f.tileID, ly, scy) + 1)
		f.tileX++
		f.step = stepIdle

	case stepIdle:
		if len(*fifo) <= 7 {
			for i := 0; i < 8; i++ {
				lo := (f.data0 >> (7 - i)) & 1
				hi := (f.data1 >> (7 - i)) & 1
				*fifo = append(*fifo, (hi<<1)|lo)
			}
			f.step = stepReadTileID
		}
	}
}

// tileDataAddress computes the VRAM address of the low bitplane byte for
// the given tile row (the high bitplane is the next byte up).
func tileDataAddress(tileID, ly, scy byte) uint16 {
	rowWithinTile := uint16((ly + scy) % 8)
	return addr.TileData0 + uint16(tileID)*16 + rowWithinTile*2
}
