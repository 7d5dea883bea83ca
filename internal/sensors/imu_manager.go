// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
	"github.com/relabs-tech/lsm6dsv/internal/sensors/lsm6dsv"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrNotInitialized is returned by IMUManager methods called before Init.
var ErrNotInitialized = errors.New("IMU not initialized")

// IMUManager owns the LSM6DSV device and serializes every access to it.
// The producer loop and the register debugger share one instance.
type IMUManager struct {
	mu  sync.Mutex
	cfg *config.Config

	closer i2c.BusCloser
	dev    *lsm6dsv.Dev
	source string

	// settle overrides the driver settle time when non-zero.
	settle time.Duration
}

var _ imu.SampleSource = (*IMUManager)(nil)

var (
	imuManager     *IMUManager
	imuManagerOnce sync.Once
)

// GetIMUManager returns the process wide IMUManager built from the global
// configuration.
func GetIMUManager() *IMUManager {
	imuManagerOnce.Do(func() {
		imuManager = NewIMUManager(config.Get())
	})
	return imuManager
}

// NewIMUManager returns an uninitialized manager for cfg.
func NewIMUManager(cfg *config.Config) *IMUManager {
	return &IMUManager{cfg: cfg}
}

// Init opens the configured I2C bus and brings the device up.
func (m *IMUManager) Init() error {
	if m.cfg == nil {
		return fmt.Errorf("IMU: configuration not loaded")
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("IMU: periph host init: %w", err)
	}
	bus, err := i2creg.Open(m.cfg.IMUI2CBus)
	if err != nil {
		return fmt.Errorf("IMU: open I2C bus %q: %w", m.cfg.IMUI2CBus, err)
	}
	if err := m.InitBus(bus); err != nil {
		bus.Close()
		return err
	}
	m.mu.Lock()
	m.closer = bus
	m.mu.Unlock()
	return nil
}

// InitBus brings the device up on an already opened bus.
func (m *IMUManager) InitBus(bus i2c.Bus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.cfg.Variant()
	if v == nil {
		return fmt.Errorf("IMU: unknown variant %q", m.cfg.IMUVariant)
	}
	opts := lsm6dsv.Opts{
		Variant:      v,
		ResetTimeout: time.Duration(m.cfg.IMUResetTimeoutMS) * time.Millisecond,
		SettleTime:   m.settle,
	}
	dev, err := lsm6dsv.NewI2C(bus, m.cfg.IMUI2CAddr, &opts)
	if err != nil {
		return fmt.Errorf("IMU: %s at 0x%02X: %w", v.Name, m.cfg.IMUI2CAddr, err)
	}
	log.Printf("IMU: %s detected at 0x%02X on %s", v.Name, m.cfg.IMUI2CAddr, bus)

	if err := applySettings(dev, m.cfg); err != nil {
		return err
	}
	m.dev = dev
	m.source = fmt.Sprintf("%s@0x%02X", v.Name, m.cfg.IMUI2CAddr)
	return nil
}

// applySettings writes the symbolic settings of cfg to dev. Empty settings
// keep the values Reset applied.
func applySettings(dev *lsm6dsv.Dev, cfg *config.Config) error {
	v := dev.Variant()
	type setting struct {
		key   string
		name  string
		table lsm6dsv.Table
		apply func(code uint8) error
	}
	settings := []setting{
		{"accelerometer op mode", cfg.IMUAccelOpMode, v.AccelOpModes, func(c uint8) error { return dev.SetAccelOpMode(lsm6dsv.AccelOpMode(c)) }},
		{"gyroscope op mode", cfg.IMUGyroOpMode, v.GyroOpModes, func(c uint8) error { return dev.SetGyroOpMode(lsm6dsv.GyroOpMode(c)) }},
		{"accelerometer range", cfg.IMUAccelRange, v.AccelRanges, func(c uint8) error { return dev.SetAccelRange(lsm6dsv.AccelRange(c)) }},
		{"gyroscope range", cfg.IMUGyroRange, v.GyroRanges, func(c uint8) error { return dev.SetGyroRange(lsm6dsv.GyroRange(c)) }},
		{"accelerometer data rate", cfg.IMUAccelRate, v.Rates, func(c uint8) error { return dev.SetAccelDataRate(lsm6dsv.Rate(c)) }},
		{"gyroscope data rate", cfg.IMUGyroRate, v.Rates, func(c uint8) error { return dev.SetGyroDataRate(lsm6dsv.Rate(c)) }},
	}
	for _, s := range settings {
		if s.name == "" {
			continue
		}
		val, ok := s.table.Lookup(s.name)
		if !ok {
			return fmt.Errorf("IMU: %s %q not supported by %s", s.key, s.name, v.Name)
		}
		if err := s.apply(val.Code); err != nil {
			return fmt.Errorf("IMU: set %s %s: %w", s.key, s.name, err)
		}
		log.Printf("IMU: %s set to %s (code %d)", s.key, s.name, val.Code)
	}
	return nil
}

// IsAvailable reports whether Init succeeded.
func (m *IMUManager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev != nil
}

// Source identifies the device in published samples.
func (m *IMUManager) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// ReadSample reads one measurement and converts it to an imu.Sample.
func (m *IMUManager) ReadSample() (imu.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return imu.Sample{}, ErrNotInitialized
	}
	var r lsm6dsv.Reading
	if err := m.dev.Sense(&r); err != nil {
		return imu.Sample{}, err
	}
	s := imu.Sample{
		Source: m.source,
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
		Ax:     r.Acceleration.X,
		Ay:     r.Acceleration.Y,
		Az:     r.Acceleration.Z,
		Gx:     r.AngularVelocity.X,
		Gy:     r.AngularVelocity.Y,
		Gz:     r.AngularVelocity.Z,
		TempC:  r.Temperature,
		Raw: imu.Raw{
			Ax: r.RawAcceleration[0], Ay: r.RawAcceleration[1], Az: r.RawAcceleration[2],
			Gx: r.RawAngularVelocity[0], Gy: r.RawAngularVelocity[1], Gz: r.RawAngularVelocity[2],
			T: r.RawTemperature,
		},
	}
	v := m.dev.Variant()
	if code, ok := m.dev.AccelRange(); ok {
		s.AccelRange = v.AccelRanges.Name(uint8(code))
	}
	if code, ok := m.dev.GyroRange(); ok {
		s.GyroRange = v.GyroRanges.Name(uint8(code))
	}
	return s, nil
}

// ReadRegister reads a single register.
func (m *IMUManager) ReadRegister(reg uint8) (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return 0, ErrNotInitialized
	}
	return m.dev.ReadRegister(reg)
}

// WriteRegister writes a single register. The write guard lives in the
// caller.
func (m *IMUManager) WriteRegister(reg, value uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotInitialized
	}
	if err := m.dev.WriteRegister(reg, value); err != nil {
		return err
	}
	switch reg {
	case lsm6dsv.RegCtrl3, lsm6dsv.RegCtrl6, lsm6dsv.RegCtrl8:
		if err := m.dev.SyncRanges(); err != nil {
			return fmt.Errorf("IMU: register 0x%02X written, ranges out of sync: %w", reg, err)
		}
		v := m.dev.Variant()
		ar, _ := m.dev.AccelRange()
		gr, _ := m.dev.GyroRange()
		log.Printf("IMU: ranges resynced after write to 0x%02X: accel %s, gyro %s",
			reg, v.AccelRanges.Name(uint8(ar)), v.GyroRanges.Name(uint8(gr)))
	}
	return nil
}

// ReadAllRegisters reads every register of the register map.
func (m *IMUManager) ReadAllRegisters() (map[uint8]uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil, ErrNotInitialized
	}
	return m.dev.ReadRegisters(registerAddresses())
}

// RegisterMap returns the register metadata shown by the debugger.
func (m *IMUManager) RegisterMap() []RegisterInfo {
	return getLSM6DSVRegisterMap()
}

// Reinitialize resets the device and applies the configured settings again.
func (m *IMUManager) Reinitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotInitialized
	}
	if err := m.dev.Reset(); err != nil {
		return fmt.Errorf("IMU: reset: %w", err)
	}
	log.Printf("IMU: %s reset", m.source)
	return applySettings(m.dev, m.cfg)
}

// Close powers the sensors down and releases the bus.
func (m *IMUManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if m.dev != nil {
		err = m.dev.Halt()
		m.dev = nil
	}
	if m.closer != nil {
		if cerr := m.closer.Close(); err == nil {
			err = cerr
		}
		m.closer = nil
	}
	return err
}
