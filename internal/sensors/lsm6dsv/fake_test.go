// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lsm6dsv

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

type regWrite struct {
	reg, val uint8
}

// registerBus is an i2c.Bus simulating the LSM6DSV register file. Bursts
// auto-increment the register address like the device does.
type registerBus struct {
	regs [256]uint8

	// resetBusyReads is how many CTRL3 reads still report SW_RESET after a
	// reset is triggered. -1 never clears it.
	resetBusyReads int
	resetBusy      int
	resetting      bool

	failRead  map[uint8]error
	failWrite map[uint8]error

	writes []regWrite
}

func newRegisterBus(chipID uint8) *registerBus {
	b := &registerBus{
		failRead:  map[uint8]error{},
		failWrite: map[uint8]error{},
	}
	b.regs[RegWhoAmI] = chipID
	return b
}

func (b *registerBus) String() string                   { return "registerBus" }
func (b *registerBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *registerBus) Halt() error                      { return nil }

func (b *registerBus) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return errors.New("registerBus: no register address")
	}
	reg := w[0]
	if len(w) > 1 {
		if err := b.failWrite[reg]; err != nil {
			return err
		}
		for i, v := range w[1:] {
			b.store(reg+uint8(i), v)
		}
	}
	if len(r) > 0 {
		if err := b.failRead[reg]; err != nil {
			return err
		}
		for i := range r {
			r[i] = b.load(reg + uint8(i))
		}
	}
	return nil
}

func (b *registerBus) store(reg, v uint8) {
	b.writes = append(b.writes, regWrite{reg: reg, val: v})
	if reg == RegCtrl3 && v&1 != 0 {
		for r := RegCtrl1; r <= RegCtrl8; r++ {
			b.regs[r] = 0
		}
		b.regs[RegCtrl3] = 1
		b.resetting = true
		b.resetBusy = b.resetBusyReads
		return
	}
	b.regs[reg] = v
}

func (b *registerBus) load(reg uint8) uint8 {
	if reg == RegCtrl3 && b.resetting {
		switch {
		case b.resetBusy > 0:
			b.resetBusy--
		case b.resetBusy == 0:
			b.regs[RegCtrl3] &^= 1
			b.resetting = false
		}
	}
	return b.regs[reg]
}

func (b *registerBus) putTriplet(reg uint8, x, y, z int16) {
	binary.LittleEndian.PutUint16(b.regs[reg:], uint16(x))
	binary.LittleEndian.PutUint16(b.regs[reg+2:], uint16(y))
	binary.LittleEndian.PutUint16(b.regs[reg+4:], uint16(z))
}

func (b *registerBus) writesTo(reg uint8) []uint8 {
	var out []uint8
	for _, w := range b.writes {
		if w.reg == reg {
			out = append(out, w.val)
		}
	}
	return out
}

// stubSleep records the waits instead of sleeping.
func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	old := doSleep
	doSleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { doSleep = old })
	return &slept
}

func newTestDev(t *testing.T, v *Variant) (*Dev, *registerBus) {
	t.Helper()
	stubSleep(t)
	bus := newRegisterBus(v.ChipID)
	d, err := NewI2C(bus, DefaultAddr, &Opts{Variant: v})
	require.NoError(t, err)
	bus.writes = nil
	return d, bus
}
