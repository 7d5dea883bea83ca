// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lsm6dsv

import (
	"periph.io/x/conn/v3/physic"
)

// Value is one symbolic setting of a configurable register field.
type Value struct {
	Name  string  // e.g. "RANGE_2G"
	Code  uint8   // register encoding
	Label float64 // magnitude in the natural unit: g, °/s or Hz
	Scale float64 // LSB scale (mg/LSB or mdps/LSB), 0 when unused
}

// Table is an immutable set of Values for one register field.
//
// Several names may share a code. Lookups by code return the last value
// registered for it.
type Table struct {
	values []Value
	byCode map[uint8]Value
	byName map[string]Value
}

// NewTable builds a Table. The order of values is kept for Values.
func NewTable(values ...Value) Table {
	t := Table{
		values: append([]Value(nil), values...),
		byCode: make(map[uint8]Value, len(values)),
		byName: make(map[string]Value, len(values)),
	}
	for _, v := range values {
		t.byCode[v.Code] = v
		t.byName[v.Name] = v
	}
	return t
}

// IsValid reports whether code is a registered encoding.
func (t Table) IsValid(code uint8) bool {
	_, ok := t.byCode[code]
	return ok
}

// Scale returns the LSB scale registered for code. ok is false for unknown
// codes and for tables that do not carry a scale.
func (t Table) Scale(code uint8) (scale float64, ok bool) {
	v, found := t.byCode[code]
	if !found || v.Scale == 0 {
		return 0, false
	}
	return v.Scale, true
}

// Label returns the magnitude registered for code.
func (t Table) Label(code uint8) (float64, bool) {
	v, ok := t.byCode[code]
	return v.Label, ok
}

// Name returns the symbolic name for code, or "" when unknown.
func (t Table) Name(code uint8) string {
	return t.byCode[code].Name
}

// Lookup resolves a symbolic name.
func (t Table) Lookup(name string) (Value, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Values returns a copy of the registered values in registration order.
func (t Table) Values() []Value {
	return append([]Value(nil), t.values...)
}

// Len returns the number of registered values, aliases included.
func (t Table) Len() int {
	return len(t.values)
}

// AccelRange is the CTRL8 accelerometer full-scale encoding. The meaning of
// a code depends on the Variant.
type AccelRange uint8

// LSM6DSV16X accelerometer ranges.
const (
	AccelRange2G  AccelRange = 0
	AccelRange4G  AccelRange = 1
	AccelRange8G  AccelRange = 2
	AccelRange16G AccelRange = 3
)

// LSM6DSV32X accelerometer ranges.
const (
	AccelRange32X4G  AccelRange = 0
	AccelRange32X8G  AccelRange = 1
	AccelRange32X16G AccelRange = 2
	AccelRange32X32G AccelRange = 3
)

// GyroRange is the CTRL6 gyroscope full-scale encoding.
type GyroRange uint8

const (
	GyroRange125DPS  GyroRange = 0
	GyroRange250DPS  GyroRange = 1
	GyroRange500DPS  GyroRange = 2
	GyroRange1000DPS GyroRange = 3
	GyroRange2000DPS GyroRange = 4
	GyroRange4000DPS GyroRange = 12
)

// AccelOpMode is the CTRL1 accelerometer operating mode.
type AccelOpMode uint8

const (
	AccelHighPerformance AccelOpMode = 0
	AccelHighAccuracyODR AccelOpMode = 1
	AccelODRTriggered    AccelOpMode = 3
	AccelLowPower1       AccelOpMode = 4
	AccelLowPower2       AccelOpMode = 5
	AccelLowPower3       AccelOpMode = 6
	AccelNormal          AccelOpMode = 7
)

// GyroOpMode is the CTRL2 gyroscope operating mode.
type GyroOpMode uint8

const (
	GyroHighPerformance GyroOpMode = 0
	GyroHighAccuracyODR GyroOpMode = 1
	GyroODRTriggered    GyroOpMode = 3
	GyroSleep           GyroOpMode = 4
	GyroLowPower        GyroOpMode = 5
)

// Rate is the output data rate encoding shared by CTRL1 and CTRL2.
type Rate uint8

const (
	RateShutdown Rate = 0
	Rate1_875Hz  Rate = 1 // not available to the gyroscope
	Rate7_5Hz    Rate = 2
	Rate15Hz     Rate = 3
	Rate30Hz     Rate = 4
	Rate60Hz     Rate = 5
	Rate120Hz    Rate = 6
	Rate240Hz    Rate = 7
	Rate480Hz    Rate = 8
	Rate960Hz    Rate = 9
	Rate1_92kHz  Rate = 10
	Rate3_84kHz  Rate = 11
	Rate7_68kHz  Rate = 11 // same encoding as Rate3_84kHz
)

// GyroRateFloor is the one table rate the gyroscope refuses.
const GyroRateFloor = Rate1_875Hz

// Rates is the output data rate table.
var Rates = NewTable(
	Value{Name: "RATE_SHUTDOWN", Code: 0, Label: 0},
	Value{Name: "RATE_1_875_HZ", Code: 1, Label: 1.875},
	Value{Name: "RATE_7_5_HZ", Code: 2, Label: 7.5},
	Value{Name: "RATE_15_HZ", Code: 3, Label: 15},
	Value{Name: "RATE_30_HZ", Code: 4, Label: 30},
	Value{Name: "RATE_60_HZ", Code: 5, Label: 60},
	Value{Name: "RATE_120_HZ", Code: 6, Label: 120},
	Value{Name: "RATE_240_HZ", Code: 7, Label: 240},
	Value{Name: "RATE_480_HZ", Code: 8, Label: 480},
	Value{Name: "RATE_960_HZ", Code: 9, Label: 960},
	Value{Name: "RATE_1_92K_HZ", Code: 10, Label: 1920},
	Value{Name: "RATE_3_84K_HZ", Code: 11, Label: 3840},
	Value{Name: "RATE_7_68K_HZ", Code: 11, Label: 7680},
)

// Frequency returns the nominal output data rate of r, 0 for shutdown or an
// unknown code.
func (r Rate) Frequency() physic.Frequency {
	hz, _ := Rates.Label(uint8(r))
	return physic.Frequency(hz * float64(physic.Hertz))
}

func (r Rate) String() string {
	if n := Rates.Name(uint8(r)); n != "" {
		return n
	}
	return "RATE_INVALID"
}

var gyroRanges = NewTable(
	Value{Name: "RANGE_125_DPS", Code: 0, Label: 125, Scale: 4.375},
	Value{Name: "RANGE_250_DPS", Code: 1, Label: 250, Scale: 8.75},
	Value{Name: "RANGE_500_DPS", Code: 2, Label: 500, Scale: 17.50},
	Value{Name: "RANGE_1000_DPS", Code: 3, Label: 1000, Scale: 35.0},
	Value{Name: "RANGE_2000_DPS", Code: 4, Label: 2000, Scale: 70.0},
	Value{Name: "RANGE_4000_DPS", Code: 12, Label: 4000, Scale: 140.0},
)

var accelOpModes = NewTable(
	Value{Name: "HIGH_PERFORMANCE_MODE", Code: 0},
	Value{Name: "HIGH_ACCURACY_ODR_MODE", Code: 1},
	Value{Name: "ODR_TRIGGERED_MODE", Code: 3},
	Value{Name: "LOW_POWER_MODE_1", Code: 4},
	Value{Name: "LOW_POWER_MODE_2", Code: 5},
	Value{Name: "LOW_POWER_MODE_3", Code: 6},
	Value{Name: "NORMAL_MODE", Code: 7},
)

var gyroOpModes = NewTable(
	Value{Name: "HIGH_PERFORMANCE_MODE", Code: 0},
	Value{Name: "HIGH_ACCURACY_ODR_MODE", Code: 1},
	Value{Name: "ODR_TRIGGERED_MODE", Code: 3},
	Value{Name: "SLEEP_MODE", Code: 4},
	Value{Name: "LOW_POWER_MODE", Code: 5},
)
