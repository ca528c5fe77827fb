package ppu

// systemPalette is the fixed NES PPU->RGB color table; index is a 6-bit
// palette entry (0x00-0x3F).
var systemPalette = [64][3]uint8{
	{0x80, 0x80, 0x80}, {0x00, 0x3D, 0xA6}, {0x00, 0x12, 0xB0}, {0x44, 0x00, 0x96},
	{0xA1, 0x00, 0x5E}, {0xC7, 0x00, 0x28}, {0xBA, 0x06, 0x00}, {0x8C, 0x17, 0x00},
	{0x5C, 0x2F, 0x00}, {0x10, 0x45, 0x00}, {0x05, 0x4A, 0x00}, {0x00, 0x47, 0x2E},
	{0x00, 0x41, 0x66}, {0x00, 0x00, 0x00}, {0x05, 0x05, 0x05}, {0x05, 0x05, 0x05},
	{0xC7, 0xC7, 0xC7}, {0x00, 0x77, 0xFF}, {0x21, 0x55, 0xFF}, {0x82, 0x37, 0xFA},
	{0xEB, 0x2F, 0xB5}, {0xFF, 0x29, 0x50}, {0xFF, 0x22, 0x00}, {0xD6, 0x32, 0x00},
	{0xC4, 0x62, 0x00}, {0x35, 0x80, 0x00}, {0x05, 0x8F, 0x00}, {0x00, 0x8A, 0x55},
	{0x00, 0x99, 0xCC}, {0x21, 0x21, 0x21}, {0x09, 0x09, 0x09}, {0x09, 0x09, 0x09},
	{0xFF, 0xFF, 0xFF}, {0x0F, 0xD8, 0xFF}, {0x4B, 0x97, 0xFF}, {0xB8, 0x76, 0xFF},
	{0xFF, 0x66, 0xFF}, {0xFF, 0x6C, 0xCC}, {0xFF, 0x7C, 0x69}, {0xFF, 0x99, 0x1E},
	{0xFF, 0xB7, 0x2B}, {0xA8, 0xD5, 0x00}, {0x6D, 0xE6, 0x0D}, {0x42, 0xE0, 0x81},
	{0x00, 0xEB, 0xC2}, {0x4E, 0x4E, 0x4E}, {0x0D, 0x0D, 0x0D}, {0x0D, 0x0D, 0x0D},
	{0xFF, 0xFF, 0xFF}, {0xAE, 0xE8, 0xFF}, {0xC7, 0xD7, 0xFF}, {0xD7, 0xCB, 0xFF},
	{0xFF, 0xC6, 0xFF}, {0xFF, 0xC8, 0xE6}, {0xFF, 0xC1, 0xBB}, {0xFF, 0xD4, 0xA8},
	{0xFF, 0xE2, 0xA0}, {0xE2, 0xF0, 0x99}, {0xBC, 0xE9, 0x9D}, {0x9A, 0xE0, 0xB8},
	{0x8B, 0xEE, 0xEB}, {0xC8, 0xC8, 0xC8}, {0x12, 0x12, 0x12}, {0x12, 0x12, 0x12},
}

// bgPixelInfo is the 2-bit background palette index plus the composed RGB
// color for one screen position, used both to draw the pixel and to let
// sprite rendering test background priority.
type bgPixelInfo struct {
	paletteIndex uint8
	rgb          [3]uint8
}

// backgroundPixel composes the background color at screen coordinate
// (x, y) from the nametable, attribute table and pattern table selected
// by the control register, following the fixed single-screen scroll
// model (no fine-x/mid-frame scroll updates).
func (p *PPU) backgroundPixel(x, y int) bgPixelInfo {
	scrolledX := x + int(p.scrollX)
	scrolledY := y + int(p.scrollY)

	nametableBase := uint16(0x2000)
	if p.getCtrl(ctrlNametableX) {
		nametableBase += 0x0400
	}
	if p.getCtrl(ctrlNametableY) {
		nametableBase += 0x0800
	}

	if scrolledX >= screenWidth {
		scrolledX -= screenWidth
		nametableBase ^= 0x0400
	}
	if scrolledY >= screenHeight {
		scrolledY -= screenHeight
		nametableBase ^= 0x0800
	}

	tileCol := scrolledX / 8
	tileRow := scrolledY / 8
	tileIndex := uint16(tileRow*32 + tileCol)
	tileID := p.read(nametableBase + tileIndex)

	attrByte := p.read(nametableBase + 0x03C0 + uint16(tileRow/4*8+tileCol/4))
	quadrantShift := uint(0)
	if tileCol%4 >= 2 {
		quadrantShift += 2
	}
	if tileRow%4 >= 2 {
		quadrantShift += 4
	}
	paletteSelect := (attrByte >> quadrantShift) & 0x03

	patternBase := uint16(0x0000)
	if p.getCtrl(ctrlPatternBG) {
		patternBase = 0x1000
	}
	fineX := scrolledX % 8
	fineY := scrolledY % 8
	patternAddr := patternBase + uint16(tileID)*16 + uint16(fineY)
	lo := p.read(patternAddr)
	hi := p.read(patternAddr + 8)
	bit := uint(7 - fineX)
	pixel := (lo>>bit)&1 | (hi>>bit)&1<<1

	var idx uint8
	if pixel != 0 {
		idx = p.palette[paletteSelect*4+uint8(pixel)]
	} else {
		idx = p.palette[0]
	}
	return bgPixelInfo{paletteIndex: pixel, rgb: systemPalette[idx&0x3F]}
}

type spriteAttr struct {
	x, y    uint8
	tile    uint8
	attr    uint8
	oamIdx  int
}

func (p *PPU) spriteHeight() int {
	if p.getCtrl(ctrlSpriteSize) {
		return 16
	}
	return 8
}

func (p *PPU) spritesOnScanline(scanline int) []spriteAttr {
	height := p.spriteHeight()
	var out []spriteAttr
	for i := 0; i < 64; i++ {
		base := i * 4
		y := int(p.oam[base]) + 1
		if scanline >= y && scanline < y+height {
			out = append(out, spriteAttr{
				y:      p.oam[base],
				tile:   p.oam[base+1],
				attr:   p.oam[base+2],
				x:      p.oam[base+3],
				oamIdx: i,
			})
			if len(out) == 8 {
				p.setStatus(statusSpriteOverflow, true)
				break
			}
		}
	}
	return out
}

// renderSprites draws the in-range sprites for scanline into the
// framebuffer (at most the first eight in OAM order), honoring the background-index buffer for priority and
// 8x16 tall-sprite pattern-table selection.
func (p *PPU) renderSprites(scanline int) {
	if !p.getMask(maskShowSprites) {
		return
	}
	height := p.spriteHeight()
	for _, s := range p.spritesOnScanline(scanline) {
		row := scanline - (int(s.y) + 1)
		flipV := s.attr&0x80 != 0
		flipH := s.attr&0x40 != 0
		behindBG := s.attr&0x20 != 0
		paletteSelect := s.attr & 0x03

		if flipV {
			row = height - 1 - row
		}

		var patternBase uint16
		tile := s.tile
		if height == 16 {
			patternBase = uint16(tile&1) * 0x1000
			tile &^= 1
			if row >= 8 {
				tile++
				row -= 8
			}
		} else if p.getCtrl(ctrlPatternSprite) {
			patternBase = 0x1000
		}

		patternAddr := patternBase + uint16(tile)*16 + uint16(row)
		lo := p.read(patternAddr)
		hi := p.read(patternAddr + 8)

		for col := 0; col < 8; col++ {
			bit := uint(col)
			if !flipH {
				bit = 7 - uint(col)
			}
			pixel := (lo>>bit)&1 | (hi>>bit)&1<<1
			if pixel == 0 {
				continue
			}
			screenX := int(s.x) + col
			if screenX >= screenWidth {
				continue
			}
			if screenX < 8 && !p.getMask(maskShowSpritesLeft) {
				continue
			}

			pos := scanline*screenWidth + screenX
			if behindBG && p.bgIndexBuffer[pos] != 0 {
				continue
			}
			if s.oamIdx == 0 && p.bgIndexBuffer[pos] != 0 {
				p.setStatus(statusSpriteZeroHit, true)
			}

			idx := p.palette[16+uint16(paletteSelect)*4+uint16(pixel)]
			rgb := systemPalette[idx&0x3F]
			p.setFramePixel(screenX, scanline, rgb)
		}
	}
}

func (p *PPU) setFramePixel(x, y int, rgb [3]uint8) {
	offset := (y*screenWidth + x) * 3
	p.Framebuffer[offset] = rgb[0]
	p.Framebuffer[offset+1] = rgb[1]
	p.Framebuffer[offset+2] = rgb[2]
}

// drawBackgroundPixel composes and draws one background pixel, recording
// its palette index in bgIndexBuffer so renderSprites can resolve
// priority against it.
func (p *PPU) drawBackgroundPixel(x, y int) {
	if !p.getMask(maskShowBG) {
		p.bgIndexBuffer[y*screenWidth+x] = 0
		p.setFramePixel(x, y, systemPalette[p.palette[0]&0x3F])
		return
	}
	if x < 8 && !p.getMask(maskShowBGLeft) {
		p.bgIndexBuffer[y*screenWidth+x] = 0
		p.setFramePixel(x, y, systemPalette[p.palette[0]&0x3F])
		return
	}

	info := p.backgroundPixel(x, y)
	p.bgIndexBuffer[y*screenWidth+x] = info.paletteIndex
	p.setFramePixel(x, y, info.rgb)
}

// Clock advances the PPU by one PPU-rate cycle: the 341-cycle,
// 262-scanline state machine from spec.md §4.4. The clock driver calls
// this three times per CPU.Tick.
func (p *PPU) Clock() {
	if p.scanline >= 0 && p.scanline < screenHeight && p.cycle >= 1 && p.cycle <= screenWidth {
		p.drawBackgroundPixel(p.cycle-1, p.scanline)
	}
	if p.scanline >= 0 && p.scanline < screenHeight && p.cycle == screenWidth+1 {
		p.renderSprites(p.scanline)
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.setStatus(statusVBlank, true)
		if p.getCtrl(ctrlEnableNMI) {
			p.NMI = true
		}
	}
	if p.scanline == 261 && p.cycle == 1 {
		p.setStatus(statusVBlank, false)
		p.setStatus(statusSpriteZeroHit, false)
		p.setStatus(statusSpriteOverflow, false)
	}

	p.cycle++
	if p.cycle >= 341 {
		p.cycle = 0
		p.scanline++
		if p.scanline >= 262 {
			p.scanline = 0
			p.frameComplete = true
		}
	}
}
