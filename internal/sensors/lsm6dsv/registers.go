// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lsm6dsv

import (
	"fmt"

	"periph.io/x/conn/v3/mmr"
)

// Register map.
const (
	RegWhoAmI   = 0x0F
	RegCtrl1    = 0x10 // accel ODR [3:0], accel op mode [6:4]
	RegCtrl2    = 0x11 // gyro ODR [3:0], gyro op mode [6:4]
	RegCtrl3    = 0x12 // SW_RESET [0], BDU [6]
	RegCtrl6    = 0x15 // gyro full scale [3:0]
	RegCtrl8    = 0x17 // accel full scale [1:0]
	RegOutTempL = 0x20 // int16 LE
	RegOutXLG   = 0x22 // gyro X/Y/Z, 3x int16 LE
	RegOutXLA   = 0x28 // accel X/Y/Z, 3x int16 LE
)

// Bit fields.
var (
	fieldAccelRate   = field{reg: RegCtrl1, width: 4, shift: 0}
	fieldAccelOpMode = field{reg: RegCtrl1, width: 3, shift: 4}
	fieldGyroRate    = field{reg: RegCtrl2, width: 4, shift: 0}
	fieldGyroOpMode  = field{reg: RegCtrl2, width: 3, shift: 4}
	fieldGyroRange   = field{reg: RegCtrl6, width: 4, shift: 0}
	fieldAccelRange  = field{reg: RegCtrl8, width: 2, shift: 0}
	fieldSWReset     = field{reg: RegCtrl3, width: 1, shift: 0}
	fieldBDU         = field{reg: RegCtrl3, width: 1, shift: 6}
)

// field is a run of width bits starting at bit shift of a one byte register.
//
// Every access goes straight to the bus, there is no shadow copy of the
// register.
type field struct {
	reg   uint8
	width uint8
	shift uint8
}

func (f field) mask() uint8 {
	return uint8(1<<f.width-1) << f.shift
}

// read returns the field value right aligned.
func (f field) read(r *mmr.Dev8) (uint8, error) {
	v, err := r.ReadUint8(f.reg)
	if err != nil {
		return 0, ioError("read", f.reg, err)
	}
	return (v & f.mask()) >> f.shift, nil
}

// write stores val in the field with a read-modify-write cycle, keeping the
// bits outside the field.
func (f field) write(r *mmr.Dev8, val uint8) error {
	if val > f.mask()>>f.shift {
		return fmt.Errorf("%w: 0x%X does not fit in %d bits of register 0x%02X", ErrInvalidArgument, val, f.width, f.reg)
	}
	v, err := r.ReadUint8(f.reg)
	if err != nil {
		return ioError("read", f.reg, err)
	}
	v = v&^f.mask() | val<<f.shift
	if err := r.WriteUint8(f.reg, v); err != nil {
		return ioError("write", f.reg, err)
	}
	return nil
}

// isSet reads a single bit field.
func (f field) isSet(r *mmr.Dev8) (bool, error) {
	v, err := f.read(r)
	return v != 0, err
}

// set writes a single bit field. For self-clearing bits the device resets
// the bit on its own.
func (f field) set(r *mmr.Dev8, on bool) error {
	var v uint8
	if on {
		v = 1
	}
	return f.write(r, v)
}
