// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lsm6dsv

import "strings"

// Variant describes a chip model: its WHO_AM_I value, the tables that give
// meaning to each register encoding and the configuration applied by NewI2C.
//
// A Dev keeps its own copy of the Variant, so changing a Variant after
// construction does not affect existing devices.
type Variant struct {
	Name   string
	ChipID uint8

	AccelRanges  Table
	GyroRanges   Table
	AccelOpModes Table
	GyroOpModes  Table
	Rates        Table

	DefaultAccelRange AccelRange
	DefaultGyroRange  GyroRange
	DefaultRate       Rate
}

// LSM6DSV16X has a ±2g to ±16g accelerometer.
var LSM6DSV16X = Variant{
	Name:   "LSM6DSV16X",
	ChipID: 0x70,
	AccelRanges: NewTable(
		Value{Name: "RANGE_2G", Code: 0, Label: 2, Scale: 0.061},
		Value{Name: "RANGE_4G", Code: 1, Label: 4, Scale: 0.122},
		Value{Name: "RANGE_8G", Code: 2, Label: 8, Scale: 0.244},
		Value{Name: "RANGE_16G", Code: 3, Label: 16, Scale: 0.488},
	),
	GyroRanges:        gyroRanges,
	AccelOpModes:      accelOpModes,
	GyroOpModes:       gyroOpModes,
	Rates:             Rates,
	DefaultAccelRange: AccelRange2G,
	DefaultGyroRange:  GyroRange125DPS,
	DefaultRate:       Rate120Hz,
}

// LSM6DSV32X has a ±4g to ±32g accelerometer at the same encodings.
var LSM6DSV32X = Variant{
	Name:   "LSM6DSV32X",
	ChipID: 0x70,
	AccelRanges: NewTable(
		Value{Name: "RANGE_4G", Code: 0, Label: 4, Scale: 0.122},
		Value{Name: "RANGE_8G", Code: 1, Label: 8, Scale: 0.244},
		Value{Name: "RANGE_16G", Code: 2, Label: 16, Scale: 0.488},
		Value{Name: "RANGE_32G", Code: 3, Label: 32, Scale: 0.976},
	),
	GyroRanges:        gyroRanges,
	AccelOpModes:      accelOpModes,
	GyroOpModes:       gyroOpModes,
	Rates:             Rates,
	DefaultAccelRange: AccelRange32X8G,
	DefaultGyroRange:  GyroRange125DPS,
	DefaultRate:       Rate120Hz,
}

// Variants lists the known chip models.
var Variants = []*Variant{&LSM6DSV16X, &LSM6DSV32X}

// VariantByName returns the Variant with the given name, case-insensitive.
func VariantByName(name string) (*Variant, bool) {
	for _, v := range Variants {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return nil, false
}
