package clock

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gones/internal/bus"
	"gones/internal/cartridge"
)

func newTestDriver(t *testing.T) (*Driver, *bus.Bus) {
	t.Helper()
	header := []byte{'N', 'E', 'S', 0x1A, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	rom := append(header, make([]byte, 2*16384+8192)...)
	cart, err := cartridge.Load(bytes.NewReader(rom))
	require.NoError(t, err)

	b := bus.New(cart, nil)
	b.Reset()
	return New(b), b
}

func TestTick_RunsOneCPUCyclePerThreePPUCycles(t *testing.T) {
	d, b := newTestDriver(t)
	startTotal := b.CPU.TotalTicks()

	d.Tick()
	d.Tick()
	assert.Equal(t, startTotal, b.CPU.TotalTicks())

	d.Tick()
	assert.Equal(t, startTotal+1, b.CPU.TotalTicks())
}

func TestRunFrame_StopsExactlyAtFrameBoundary(t *testing.T) {
	d, _ := newTestDriver(t)
	d.RunFrame()
	// One full frame is 262*341 = 89342 PPU cycles.
	assert.Equal(t, uint64(89342), d.ppuTickCount)
}

func TestStepInstruction_AdvancesPastOneOpcode(t *testing.T) {
	b := bus.New(newNOPCart(t), nil)
	b.Reset()
	d := New(b)
	for b.CPU.CyclesRemaining() > 0 {
		d.Tick() // drain Reset's 8-cycle startup before fetching our opcode
	}
	require.Equal(t, uint16(0x8000), b.CPU.ProgramCounter())

	d.StepInstruction()

	assert.Equal(t, uint16(0x8001), b.CPU.ProgramCounter())
	assert.Equal(t, 0, b.CPU.CyclesRemaining())
}

func newNOPCart(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := bytes.Repeat([]byte{0xEA}, 16384) // every byte is NOP
	prg[0x3FFC], prg[0x3FFD] = 0x00, 0x80     // reset vector -> 0x8000
	prg[0x3FFA], prg[0x3FFB] = 0x00, 0x90     // NMI vector -> 0x9000
	rom := append(header, prg...)
	rom = append(rom, make([]byte, 8192)...)
	cart, err := cartridge.Load(bytes.NewReader(rom))
	require.NoError(t, err)
	return cart
}

func TestScenario5_NMIServicedWithinSevenCyclesOfEdge(t *testing.T) {
	b := bus.New(newNOPCart(t), nil)
	b.Reset()
	d := New(b)

	b.PPU.WriteRegister(0x2000, 0x80) // enable NMI generation

	const edgePPUTick = 241*341 + 2 // the Clock() call where scanline=241,cycle=1 fires
	for d.ppuTickCount < edgePPUTick {
		d.Tick()
	}
	cpuTicksAtEdge := b.CPU.TotalTicks()

	for b.CPU.ProgramCounter() != 0x9000 {
		d.Tick()
	}

	assert.LessOrEqual(t, b.CPU.TotalTicks()-cpuTicksAtEdge, uint64(7))
}

func TestRunFor_AccumulatesFractionalCyclesAcrossCalls(t *testing.T) {
	d, _ := newTestDriver(t)

	oneSecondTicks := uint64(0)
	for i := 0; i < 60; i++ {
		before := d.ppuTickCount
		d.RunFor(1.0 / 60.0)
		oneSecondTicks += d.ppuTickCount - before
	}

	// Should land very close to the master clock rate after a full
	// second's worth of fractional budgets.
	assert.InDelta(t, masterClockHz, float64(oneSecondTicks), 10)
}
