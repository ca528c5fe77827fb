package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gones/internal/input"
)

func TestHeadlessBackend_PresentCopiesFrame(t *testing.T) {
	b := NewHeadlessBackend()
	frame := make([]uint8, 256*240*3)
	frame[0] = 0x42

	require := assert.New(t)
	require.NoError(b.Present(frame))
	require.Equal(frame, b.LastFrame)

	frame[0] = 0x99 // mutating the caller's slice must not affect the copy
	require.Equal(uint8(0x42), b.LastFrame[0])
}

func TestHeadlessBackend_CloseSetsShouldClose(t *testing.T) {
	b := NewHeadlessBackend()
	assert.False(t, b.ShouldClose())
	assert.NoError(t, b.Close())
	assert.True(t, b.ShouldClose())
}

func TestHeadlessBackend_PollInputIsNoOp(t *testing.T) {
	b := NewHeadlessBackend()
	c := input.NewController()
	c.SetButtons(0xFF)
	c.WriteStrobe(0x01)
	b.PollInput(c)
	assert.Equal(t, uint8(1), c.Read()) // strobe high: still reads live bit 0
}
