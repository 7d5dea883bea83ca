// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lsm6dsv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// I²C addresses, selected by the SA0 pin.
const (
	DefaultAddr = 0x6A
	AltAddr     = 0x6B
)

const (
	milliGToMS2          = 0.00980665
	temperatureLSBPerDeg = 256.0
	temperatureOffset    = 25.0
)

var (
	// ErrDeviceNotFound is returned when WHO_AM_I does not match the Variant.
	ErrDeviceNotFound = errors.New("lsm6dsv: device not found")
	// ErrInvalidArgument is returned for a code that is not in the relevant
	// table or that the sensor refuses.
	ErrInvalidArgument = errors.New("lsm6dsv: invalid argument")
	// ErrIO wraps transport failures. The transport error stays in the chain.
	ErrIO = errors.New("lsm6dsv: i/o error")
	// ErrNotConfigured is returned when a measurement needs a range that was
	// never set.
	ErrNotConfigured = errors.New("lsm6dsv: range not configured")
	// ErrResetTimeout is returned when the device does not clear SW_RESET.
	ErrResetTimeout = errors.New("lsm6dsv: reset timeout")
)

func ioError(op string, reg uint8, err error) error {
	return fmt.Errorf("%w: %s register 0x%02X: %w", ErrIO, op, reg, err)
}

// doSleep is replaced in tests.
var doSleep = time.Sleep

// Opts holds the configuration options.
//
// Zero durations are replaced by the DefaultOpts values.
type Opts struct {
	// Variant selects the chip model. Required.
	Variant *Variant
	// ResetTimeout bounds the wait for the device to clear SW_RESET.
	ResetTimeout time.Duration
	// ResetPollInterval is the delay between SW_RESET polls.
	ResetPollInterval time.Duration
	// SettleTime is waited after every full-scale change.
	SettleTime time.Duration
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Variant:           &LSM6DSV16X,
	ResetTimeout:      50 * time.Millisecond,
	ResetPollInterval: time.Millisecond,
	SettleTime:        200 * time.Millisecond,
}

// Vector is a 3-axis measurement.
type Vector struct {
	X, Y, Z float64
}

// Reading is one acceleration, angular velocity and temperature sample, both
// raw and scaled.
type Reading struct {
	RawAcceleration    [3]int16
	RawAngularVelocity [3]int16
	RawTemperature     int16

	Acceleration    Vector  // m/s²
	AngularVelocity Vector  // rad/s
	Temperature     float64 // °C
}

// cachedCode is the last full-scale code written to the device. The zero
// value means the range was never configured.
type cachedCode struct {
	code uint8
	ok   bool
}

// Dev is a handle to an initialized LSM6DSV device.
type Dev struct {
	c       conn.Conn
	regs    mmr.Dev8
	variant Variant
	opts    Opts

	accelRange cachedCode
	gyroRange  cachedCode
}

// NewI2C returns a Dev for the device at addr on bus.
//
// The chip id is checked, the device is reset, block data update is enabled
// and both sensors are configured with the Variant defaults.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return New(&i2c.Dev{Bus: b, Addr: addr}, opts)
}

// New returns a Dev communicating over c. c must address a single device.
func New(c conn.Conn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Variant == nil {
		return nil, fmt.Errorf("%w: no variant", ErrInvalidArgument)
	}
	o := *opts
	if o.ResetTimeout <= 0 {
		o.ResetTimeout = DefaultOpts.ResetTimeout
	}
	if o.ResetPollInterval <= 0 {
		o.ResetPollInterval = DefaultOpts.ResetPollInterval
	}
	if o.SettleTime <= 0 {
		o.SettleTime = DefaultOpts.SettleTime
	}
	d := &Dev{
		c:       c,
		regs:    mmr.Dev8{Conn: c, Order: binary.LittleEndian},
		variant: *o.Variant,
		opts:    o,
	}
	id, err := d.ChipID()
	if err != nil {
		return nil, err
	}
	if id != d.variant.ChipID {
		return nil, fmt.Errorf("%w: %s on %s: WHO_AM_I 0x%02X, want 0x%02X", ErrDeviceNotFound, d.variant.Name, c, id, d.variant.ChipID)
	}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.variant.Name, d.c)
}

// Variant returns the chip model this Dev was created with.
func (d *Dev) Variant() Variant {
	return d.variant
}

// ChipID reads WHO_AM_I.
func (d *Dev) ChipID() (uint8, error) {
	id, err := d.regs.ReadUint8(RegWhoAmI)
	if err != nil {
		return 0, ioError("read", RegWhoAmI, err)
	}
	return id, nil
}

// Reset performs a software reset and brings the device back to the state
// NewI2C leaves it in: block data update on, Variant default rates and ranges.
func (d *Dev) Reset() error {
	d.accelRange = cachedCode{}
	d.gyroRange = cachedCode{}
	if err := d.softReset(); err != nil {
		return err
	}
	if err := fieldBDU.set(&d.regs, true); err != nil {
		return err
	}
	v := &d.variant
	if err := d.SetAccelDataRate(v.DefaultRate); err != nil {
		return err
	}
	if err := d.SetGyroDataRate(v.DefaultRate); err != nil {
		return err
	}
	if err := d.SetAccelRange(v.DefaultAccelRange); err != nil {
		return err
	}
	return d.SetGyroRange(v.DefaultGyroRange)
}

// softReset sets SW_RESET and polls until the device clears it.
func (d *Dev) softReset() error {
	if err := fieldSWReset.set(&d.regs, true); err != nil {
		return err
	}
	polls := int(d.opts.ResetTimeout / d.opts.ResetPollInterval)
	if polls < 1 {
		polls = 1
	}
	for i := 0; i < polls; i++ {
		doSleep(d.opts.ResetPollInterval)
		busy, err := fieldSWReset.isSet(&d.regs)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
	}
	return fmt.Errorf("%w: SW_RESET still set after %s", ErrResetTimeout, d.opts.ResetTimeout)
}

// BlockDataUpdate reports whether output registers are latched until read.
func (d *Dev) BlockDataUpdate() (bool, error) {
	return fieldBDU.isSet(&d.regs)
}

// AccelRange returns the last accelerometer full scale set. ok is false
// before the first successful SetAccelRange.
func (d *Dev) AccelRange() (r AccelRange, ok bool) {
	return AccelRange(d.accelRange.code), d.accelRange.ok
}

// SetAccelRange changes the accelerometer full scale and waits for the
// analog front end to settle.
func (d *Dev) SetAccelRange(r AccelRange) error {
	if !d.variant.AccelRanges.IsValid(uint8(r)) {
		return fmt.Errorf("%w: accelerometer range %d is not a %s range", ErrInvalidArgument, r, d.variant.Name)
	}
	if err := fieldAccelRange.write(&d.regs, uint8(r)); err != nil {
		return err
	}
	d.accelRange = cachedCode{code: uint8(r), ok: true}
	doSleep(d.opts.SettleTime)
	return nil
}

// GyroRange returns the last gyroscope full scale set. ok is false before
// the first successful SetGyroRange.
func (d *Dev) GyroRange() (r GyroRange, ok bool) {
	return GyroRange(d.gyroRange.code), d.gyroRange.ok
}

// SyncRanges reloads the cached full scales from CTRL6 and CTRL8. A code
// outside the variant tables leaves that range unconfigured and returns
// ErrNotConfigured.
func (d *Dev) SyncRanges() error {
	d.accelRange = cachedCode{}
	d.gyroRange = cachedCode{}
	a, err := fieldAccelRange.read(&d.regs)
	if err != nil {
		return err
	}
	g, err := fieldGyroRange.read(&d.regs)
	if err != nil {
		return err
	}
	if d.variant.AccelRanges.IsValid(a) {
		d.accelRange = cachedCode{code: a, ok: true}
	}
	if d.variant.GyroRanges.IsValid(g) {
		d.gyroRange = cachedCode{code: g, ok: true}
	}
	if !d.accelRange.ok || !d.gyroRange.ok {
		return fmt.Errorf("%w: registers hold accelerometer range %d, gyroscope range %d", ErrNotConfigured, a, g)
	}
	return nil
}

// SetGyroRange changes the gyroscope full scale and waits for the analog
// front end to settle.
func (d *Dev) SetGyroRange(r GyroRange) error {
	if !d.variant.GyroRanges.IsValid(uint8(r)) {
		return fmt.Errorf("%w: gyroscope range %d is not a %s range", ErrInvalidArgument, r, d.variant.Name)
	}
	if err := fieldGyroRange.write(&d.regs, uint8(r)); err != nil {
		return err
	}
	d.gyroRange = cachedCode{code: uint8(r), ok: true}
	doSleep(d.opts.SettleTime)
	return nil
}

// AccelDataRate reads the accelerometer output data rate from the device.
func (d *Dev) AccelDataRate() (Rate, error) {
	v, err := fieldAccelRate.read(&d.regs)
	return Rate(v), err
}

// SetAccelDataRate changes the accelerometer output data rate.
func (d *Dev) SetAccelDataRate(r Rate) error {
	if !d.variant.Rates.IsValid(uint8(r)) {
		return fmt.Errorf("%w: accelerometer rate %d", ErrInvalidArgument, r)
	}
	return fieldAccelRate.write(&d.regs, uint8(r))
}

// GyroDataRate reads the gyroscope output data rate from the device.
func (d *Dev) GyroDataRate() (Rate, error) {
	v, err := fieldGyroRate.read(&d.regs)
	return Rate(v), err
}

// SetGyroDataRate changes the gyroscope output data rate. The gyroscope
// refuses Rate1_875Hz.
func (d *Dev) SetGyroDataRate(r Rate) error {
	if !d.variant.Rates.IsValid(uint8(r)) {
		return fmt.Errorf("%w: gyroscope rate %d", ErrInvalidArgument, r)
	}
	if r == GyroRateFloor {
		return fmt.Errorf("%w: gyroscope cannot use %s", ErrInvalidArgument, r)
	}
	return fieldGyroRate.write(&d.regs, uint8(r))
}

// AccelOpMode reads the accelerometer operating mode.
func (d *Dev) AccelOpMode() (AccelOpMode, error) {
	v, err := fieldAccelOpMode.read(&d.regs)
	return AccelOpMode(v), err
}

// SetAccelOpMode changes the accelerometer operating mode.
func (d *Dev) SetAccelOpMode(m AccelOpMode) error {
	if !d.variant.AccelOpModes.IsValid(uint8(m)) {
		return fmt.Errorf("%w: accelerometer op mode %d", ErrInvalidArgument, m)
	}
	return fieldAccelOpMode.write(&d.regs, uint8(m))
}

// GyroOpMode reads the gyroscope operating mode.
func (d *Dev) GyroOpMode() (GyroOpMode, error) {
	v, err := fieldGyroOpMode.read(&d.regs)
	return GyroOpMode(v), err
}

// SetGyroOpMode changes the gyroscope operating mode.
func (d *Dev) SetGyroOpMode(m GyroOpMode) error {
	if !d.variant.GyroOpModes.IsValid(uint8(m)) {
		return fmt.Errorf("%w: gyroscope op mode %d", ErrInvalidArgument, m)
	}
	return fieldGyroOpMode.write(&d.regs, uint8(m))
}

// RawAcceleration reads the accelerometer X, Y, Z counts in one burst.
func (d *Dev) RawAcceleration() ([3]int16, error) {
	return d.readTriplet(RegOutXLA)
}

// RawAngularVelocity reads the gyroscope X, Y, Z counts in one burst.
func (d *Dev) RawAngularVelocity() ([3]int16, error) {
	return d.readTriplet(RegOutXLG)
}

// RawTemperature reads the temperature counts.
func (d *Dev) RawTemperature() (int16, error) {
	v, err := d.regs.ReadUint16(RegOutTempL)
	if err != nil {
		return 0, ioError("read", RegOutTempL, err)
	}
	return int16(v), nil
}

// Acceleration returns the acceleration in m/s².
func (d *Dev) Acceleration() (Vector, error) {
	scale, err := d.accelScale()
	if err != nil {
		return Vector{}, err
	}
	raw, err := d.RawAcceleration()
	if err != nil {
		return Vector{}, err
	}
	return scaleVector(raw, scale), nil
}

// AngularVelocity returns the angular velocity in rad/s.
func (d *Dev) AngularVelocity() (Vector, error) {
	scale, err := d.gyroScale()
	if err != nil {
		return Vector{}, err
	}
	raw, err := d.RawAngularVelocity()
	if err != nil {
		return Vector{}, err
	}
	return scaleVector(raw, scale), nil
}

// Temperature returns the die temperature in °C.
func (d *Dev) Temperature() (float64, error) {
	raw, err := d.RawTemperature()
	if err != nil {
		return 0, err
	}
	return temperatureCelsius(raw), nil
}

// Sense reads acceleration, angular velocity and temperature.
func (d *Dev) Sense(r *Reading) error {
	as, err := d.accelScale()
	if err != nil {
		return err
	}
	gs, err := d.gyroScale()
	if err != nil {
		return err
	}
	if r.RawAcceleration, err = d.RawAcceleration(); err != nil {
		return err
	}
	if r.RawAngularVelocity, err = d.RawAngularVelocity(); err != nil {
		return err
	}
	if r.RawTemperature, err = d.RawTemperature(); err != nil {
		return err
	}
	r.Acceleration = scaleVector(r.RawAcceleration, as)
	r.AngularVelocity = scaleVector(r.RawAngularVelocity, gs)
	r.Temperature = temperatureCelsius(r.RawTemperature)
	return nil
}

// Halt powers down both sensors.
func (d *Dev) Halt() error {
	if err := d.SetAccelDataRate(RateShutdown); err != nil {
		return err
	}
	return d.SetGyroDataRate(RateShutdown)
}

// ReadRegister reads one register, bypassing the driver state.
func (d *Dev) ReadRegister(reg uint8) (uint8, error) {
	v, err := d.regs.ReadUint8(reg)
	if err != nil {
		return 0, ioError("read", reg, err)
	}
	return v, nil
}

// WriteRegister writes one register, bypassing the driver state. After
// writing CTRL3, CTRL6 or CTRL8 this way call SyncRanges.
func (d *Dev) WriteRegister(reg, v uint8) error {
	if err := d.regs.WriteUint8(reg, v); err != nil {
		return ioError("write", reg, err)
	}
	return nil
}

// ReadRegisters reads each register in regs.
func (d *Dev) ReadRegisters(regs []uint8) (map[uint8]uint8, error) {
	out := make(map[uint8]uint8, len(regs))
	for _, reg := range regs {
		v, err := d.ReadRegister(reg)
		if err != nil {
			return nil, err
		}
		out[reg] = v
	}
	return out, nil
}

// accelScale returns m/s² per LSB for the cached range.
func (d *Dev) accelScale() (float64, error) {
	if !d.accelRange.ok {
		return 0, fmt.Errorf("%w: accelerometer", ErrNotConfigured)
	}
	mg, ok := d.variant.AccelRanges.Scale(d.accelRange.code)
	if !ok {
		return 0, fmt.Errorf("%w: no scale for accelerometer range %d", ErrNotConfigured, d.accelRange.code)
	}
	return mg * milliGToMS2, nil
}

// gyroScale returns rad/s per LSB for the cached range.
func (d *Dev) gyroScale() (float64, error) {
	if !d.gyroRange.ok {
		return 0, fmt.Errorf("%w: gyroscope", ErrNotConfigured)
	}
	mdps, ok := d.variant.GyroRanges.Scale(d.gyroRange.code)
	if !ok {
		return 0, fmt.Errorf("%w: no scale for gyroscope range %d", ErrNotConfigured, d.gyroRange.code)
	}
	return mdps / 1000 * math.Pi / 180, nil
}

func (d *Dev) readTriplet(reg uint8) ([3]int16, error) {
	var b [6]byte
	if err := d.c.Tx([]byte{reg}, b[:]); err != nil {
		return [3]int16{}, ioError("read", reg, err)
	}
	return [3]int16{
		int16(binary.LittleEndian.Uint16(b[0:])),
		int16(binary.LittleEndian.Uint16(b[2:])),
		int16(binary.LittleEndian.Uint16(b[4:])),
	}, nil
}

func scaleVector(raw [3]int16, scale float64) Vector {
	return Vector{
		X: float64(raw[0]) * scale,
		Y: float64(raw[1]) * scale,
		Z: float64(raw[2]) * scale,
	}
}

func temperatureCelsius(raw int16) float64 {
	return float64(raw)/temperatureLSBPerDeg + temperatureOffset
}

var _ conn.Resource = &Dev{}
