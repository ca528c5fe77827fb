// Package clock drives the interleaved PPU/CPU clock: three PPU ticks
// per CPU tick, NMI servicing between instructions, frame stepping and
// real-time budget stepping at the NTSC master clock rate.
package clock

import "gones/internal/bus"

// masterClockHz is the NES PPU clock rate (3x the 1.789773 MHz CPU
// clock), the basis for run_for's real-time budget conversion.
const masterClockHz = 5_369_318.0

// Driver interleaves the bus's CPU and PPU at the fixed 3:1 ratio and
// services NMI between instructions, per spec.md §4.5.
type Driver struct {
	Bus *bus.Bus

	ppuTickCount   uint64
	fractionalTick float64
}

// New returns a driver bound to b. The bus/CPU/PPU must already be
// Reset before the first Tick.
func New(b *bus.Bus) *Driver {
	return &Driver{Bus: b}
}

// Tick advances the system clock by one PPU cycle. Every third call also
// runs one CPU cycle, and if the PPU's NMI line went up this CPU cycle,
// services it before the next instruction fetch has a chance to start.
func (d *Driver) Tick() {
	d.Bus.PPU.Clock()
	d.ppuTickCount++

	if d.ppuTickCount%3 != 0 {
		return
	}

	d.Bus.Tick()
	d.Bus.CPU.Tick()

	if d.Bus.PPU.NMI && d.Bus.CPU.CyclesRemaining() == 0 {
		d.Bus.PPU.NMI = false
		d.Bus.CPU.ServiceNMI()
	}
}

// RunFrame ticks until the PPU reports a completed frame.
func (d *Driver) RunFrame() {
	for {
		d.Tick()
		if d.Bus.PPU.FrameComplete() {
			return
		}
	}
}

// StepInstruction ticks until the CPU's cycles-remaining counter returns
// to zero, i.e. until exactly one instruction (and any interrupt
// sequence it triggers) has fully retired.
func (d *Driver) StepInstruction() {
	started := false
	for {
		d.Tick()
		if d.ppuTickCount%3 != 0 {
			continue // only CPU-rate ticks advance cycles-remaining
		}
		if !started {
			started = true
			continue
		}
		if d.Bus.CPU.CyclesRemaining() == 0 {
			return
		}
	}
}

// RunFor advances the clock by approximately budgetSeconds of wall time,
// accumulating fractional PPU cycles across calls at 5,369,318 Hz so a
// long sequence of small budgets still converges on ~60.0988 Hz.
func (d *Driver) RunFor(budgetSeconds float64) {
	d.fractionalTick += budgetSeconds * masterClockHz
	ticks := int64(d.fractionalTick)
	d.fractionalTick -= float64(ticks)

	for i := int64(0); i < ticks; i++ {
		d.Tick()
	}
}
