package cartridge

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildROM(flags6, flags7, prgBanks, chrBanks uint8, trainer bool) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	var buf bytes.Buffer
	buf.Write(header)
	if trainer {
		buf.Write(make([]byte, trainerSize))
	}
	buf.Write(make([]byte, int(prgBanks)*16384))
	buf.Write(make([]byte, int(chrBanks)*8192))
	return buf.Bytes()
}

func TestLoad_HorizontalMirroringOneBank(t *testing.T) {
	rom := buildROM(0x00, 0x00, 1, 1, false)
	cart, err := Load(bytes.NewReader(rom))
	require.NoError(t, err)
	assert.Equal(t, MirrorHorizontal, cart.Mirroring())
	assert.Equal(t, 1, cart.PRGBanks())
	assert.False(t, cart.CHRIsRAM())
}

func TestLoad_VerticalMirroring(t *testing.T) {
	rom := buildROM(0x01, 0x00, 2, 1, false)
	cart, err := Load(bytes.NewReader(rom))
	require.NoError(t, err)
	assert.Equal(t, MirrorVertical, cart.Mirroring())
}

func TestLoad_FourScreenWinsOverVertical(t *testing.T) {
	rom := buildROM(0x08|0x01, 0x00, 1, 1, false)
	cart, err := Load(bytes.NewReader(rom))
	require.NoError(t, err)
	assert.Equal(t, MirrorFourScreen, cart.Mirroring())
}

func TestLoad_CHRRAMWhenZeroBanks(t *testing.T) {
	rom := buildROM(0x00, 0x00, 1, 0, false)
	cart, err := Load(bytes.NewReader(rom))
	require.NoError(t, err)
	assert.True(t, cart.CHRIsRAM())
	assert.Equal(t, uint8(0), cart.ReadCHR(0))
	cart.WriteCHR(0x10, 0x42)
	assert.Equal(t, uint8(0x42), cart.ReadCHR(0x10))
}

func TestLoad_TrainerIsSkipped(t *testing.T) {
	rom := buildROM(0x04, 0x00, 1, 1, true)
	_, err := Load(bytes.NewReader(rom))
	require.NoError(t, err)
}

func TestLoad_BadMagic(t *testing.T) {
	rom := buildROM(0, 0, 1, 1, false)
	rom[0] = 'X'
	_, err := Load(bytes.NewReader(rom))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadMagic))
}

func TestLoad_ShortRead(t *testing.T) {
	rom := buildROM(0, 0, 1, 1, false)
	_, err := Load(bytes.NewReader(rom[:len(rom)-10]))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortRead))
}

func TestLoad_UnsupportedMapper(t *testing.T) {
	rom := buildROM(0x10, 0x00, 1, 1, false) // mapper 1
	_, err := Load(bytes.NewReader(rom))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMapper))
}

func TestReadPRG_MirrorsSingleBank(t *testing.T) {
	rom := buildROM(0, 0, 1, 1, false)
	copy(rom[16:16+16384], bytes.Repeat([]byte{0xAB}, 16384))
	cart, err := Load(bytes.NewReader(rom))
	require.NoError(t, err)
	assert.Equal(t, cart.ReadPRG(0x8000), cart.ReadPRG(0xC000))
}
