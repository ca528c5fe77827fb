// Package ppu implements the NES picture processing unit: the
// scanline/cycle state machine, nametable/OAM/palette memory, and
// background + sprite pixel generation into a 256x240 RGB framebuffer.
package ppu

import "gones/internal/cartridge"

const (
	screenWidth  = 256
	screenHeight = 240
)

// Control register bits (write-only, $2000).
const (
	ctrlNametableX    = 1 << 0
	ctrlNametableY    = 1 << 1
	ctrlIncrementMode = 1 << 2
	ctrlPatternSprite = 1 << 3
	ctrlPatternBG     = 1 << 4
	ctrlSpriteSize    = 1 << 5
	ctrlSlaveMode     = 1 << 6
	ctrlEnableNMI     = 1 << 7
)

// Mask register bits ($2001).
const (
	maskGrayscale       = 1 << 0
	maskShowBGLeft      = 1 << 1
	maskShowSpritesLeft = 1 << 2
	maskShowBG          = 1 << 3
	maskShowSprites     = 1 << 4
)

// Status register bits ($2002).
const (
	statusSpriteOverflow = 1 << 5
	statusSpriteZeroHit  = 1 << 6
	statusVBlank         = 1 << 7
)

// PPU holds nametable VRAM, OAM, palette RAM, the scanline/cycle counters
// and the write-shared address/scroll latch described in spec.md §3/§4.4.
type PPU struct {
	cart *cartridge.Cartridge

	vram    []uint8
	oam     [256]uint8
	palette [32]uint8

	addrReg   uint16
	addrLatch bool // shared by $2005/$2006, reset by $2002 reads

	ctrl   uint8
	mask   uint8
	status uint8

	dataBuffer uint8

	oamAddr uint8
	scrollX uint8
	scrollY uint8

	scanline int
	cycle    int

	NMI            bool
	frameComplete  bool
	Framebuffer    []uint8 // screenWidth*screenHeight*3, row-major RGB
	bgIndexBuffer  []uint8 // screenWidth*screenHeight 2-bit background color indices
}

// New constructs a PPU bound to cart. VRAM is 2 KiB, or 4 KiB when the
// cartridge declares four-screen mirroring.
func New(cart *cartridge.Cartridge) *PPU {
	vramSize := 0x0800
	if cart.Mirroring() == cartridge.MirrorFourScreen {
		vramSize = 0x1000
	}

	p := &PPU{
		cart:          cart,
		vram:          make([]uint8, vramSize),
		Framebuffer:   make([]uint8, screenWidth*screenHeight*3),
		bgIndexBuffer: make([]uint8, screenWidth*screenHeight),
	}
	for i := range p.oam {
		p.oam[i] = 0xFF
	}
	p.addrLatch = true
	return p
}

// Reset clears counters, registers and the framebuffer back to power-up
// state, per spec.md §3 lifecycle.
func (p *PPU) Reset() {
	p.addrReg = 0
	p.addrLatch = true
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.dataBuffer = 0
	for i := range p.oam {
		p.oam[i] = 0xFF
	}
	p.scanline, p.cycle = 0, 0
	p.NMI = false
	p.frameComplete = false
	p.oamAddr, p.scrollX, p.scrollY = 0, 0, 0
	for i := range p.Framebuffer {
		p.Framebuffer[i] = 0
	}
	for i := range p.bgIndexBuffer {
		p.bgIndexBuffer[i] = 0
	}
}

// FrameComplete reports whether a frame just finished, and clears the flag.
func (p *PPU) FrameComplete() bool {
	done := p.frameComplete
	p.frameComplete = false
	return done
}

func (p *PPU) getCtrl(bit uint8) bool { return p.ctrl&bit != 0 }
func (p *PPU) getMask(bit uint8) bool { return p.mask&bit != 0 }

func (p *PPU) setStatus(bit uint8, v bool) {
	if v {
		p.status |= bit
	} else {
		p.status &^= bit
	}
}

// mirrorVRAMAddr folds a $2000-$2FFF nametable address down into the
// physical VRAM index according to the cartridge's mirroring tag.
func (p *PPU) mirrorVRAMAddr(addr uint16) uint16 {
	mirrored := addr & 0x2FFF
	index := mirrored - 0x2000
	nametable := index / 0x0400

	switch p.cart.Mirroring() {
	case cartridge.MirrorVertical:
		if nametable == 2 || nametable == 3 {
			return index - 0x0800
		}
	case cartridge.MirrorHorizontal:
		if nametable == 1 || nametable == 2 {
			return index - 0x0400
		}
		if nametable == 3 {
			return index - 0x0800
		}
	}
	return index
}

// paletteIndex folds a palette address into 0..31, applying the four
// background-color mirror aliases from spec.md §3.
func paletteIndex(addr uint16) uint16 {
	idx := (addr - 0x3F00) % 32
	switch idx {
	case 0x10:
		return 0x00
	case 0x14:
		return 0x04
	case 0x18:
		return 0x08
	case 0x1C:
		return 0x0C
	default:
		return idx
	}
}

// read is the PPU's own bus: CHR through the cartridge, nametables
// through VRAM (mirrored), and palette RAM — entirely separate from the
// CPU-facing register interface in ReadRegister/WriteRegister.
func (p *PPU) read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr <= 0x1FFF:
		return p.cart.ReadCHR(addr)
	case addr <= 0x2FFF:
		return p.vram[p.mirrorVRAMAddr(addr)]
	case addr <= 0x3EFF:
		return p.read(addr - 0x1000)
	default:
		return p.palette[paletteIndex(addr)] & 0x3F
	}
}

func (p *PPU) write(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr <= 0x1FFF:
		p.cart.WriteCHR(addr, value)
	case addr <= 0x2FFF:
		p.vram[p.mirrorVRAMAddr(addr)] = value
	case addr <= 0x3EFF:
		p.write(addr-0x1000, value)
	default:
		p.palette[paletteIndex(addr)] = value & 0x3F
	}
}

// ReadRegister services a CPU read of $2000-$2007 (mirrored every 8 bytes
// through $3FFF by internal/bus). Only $2002, $2004 and $2007 are
// readable; the write-only registers read as 0.
func (p *PPU) ReadRegister(index uint16) uint8 {
	switch index % 8 {
	case 2: // PPUSTATUS
		result := (p.status & 0xE0) | (p.dataBuffer & 0x1F)
		p.setStatus(statusVBlank, false)
		p.addrLatch = true
		return result
	case 4: // OAMDATA
		return p.oam[p.oamAddr]
	case 7: // PPUDATA
		var result uint8
		if p.addrReg >= 0x3F00 {
			result = p.read(p.addrReg)
			p.dataBuffer = p.read(p.addrReg - 0x1000)
		} else {
			result = p.dataBuffer
			p.dataBuffer = p.read(p.addrReg)
		}
		p.advanceAddr()
		return result
	default:
		return 0
	}
}

// WriteRegister services a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(index uint16, value uint8) {
	switch index % 8 {
	case 0: // PPUCTRL
		p.ctrl = value
	case 1: // PPUMASK
		p.mask = value
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		if p.addrLatch {
			p.scrollX = value
		} else {
			p.scrollY = value
		}
		p.addrLatch = !p.addrLatch
	case 6: // PPUADDR
		if p.addrLatch {
			p.addrReg = p.addrReg&0x00FF | uint16(value)<<8
		} else {
			p.addrReg = p.addrReg&0xFF00 | uint16(value)
		}
		p.addrReg &= 0x3FFF
		p.addrLatch = !p.addrLatch
	case 7: // PPUDATA
		p.write(p.addrReg, value)
		p.advanceAddr()
	}
}

func (p *PPU) advanceAddr() {
	if p.getCtrl(ctrlIncrementMode) {
		p.addrReg += 32
	} else {
		p.addrReg++
	}
	p.addrReg &= 0x3FFF
}

// WriteOAM stores one byte at the given OAM offset directly, bypassing
// OAMADDR; used by tests to seed sprite data.
func (p *PPU) WriteOAM(offset uint8, value uint8) {
	p.oam[offset] = value
}

// ReadOAM reads the byte at the given OAM offset directly, bypassing
// OAMADDR; used by $4014-triggered DMA verification and by tests.
func (p *PPU) ReadOAM(offset uint8) uint8 {
	return p.oam[offset]
}
