package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/lsm6dsv/internal/imu"
	"github.com/relabs-tech/lsm6dsv/internal/sensors/lsm6dsv"
)

// Config is the parsed lsm6dsv_config.txt shared by every tool.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string
	MQTTPayloadFormat    string // "json" or "cbor"

	// Topics
	TopicIMU         string
	TopicTemperature string

	// IMU Hardware
	IMUI2CBus  string // periph bus name, "" opens the first bus
	IMUI2CAddr uint16
	IMUVariant string // "lsm6dsv16x" or "lsm6dsv32x"

	// IMU configuration, symbolic names from the variant tables
	// e.g. IMU_ACCEL_RANGE=RANGE_4G, IMU_GYRO_RATE=RATE_240_HZ.
	// Empty keeps the driver default.
	IMUAccelRange  string
	IMUGyroRange   string
	IMUAccelRate   string
	IMUGyroRate    string
	IMUAccelOpMode string
	IMUGyroOpMode  string

	IMUResetTimeoutMS int

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Register debugger
	RegisterDebugPort          int
	RegisterDebugAllowedRanges string // e.g. "0x10-0x17,0x19"

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// The loaded configuration is process wide; InitGlobal fills it once.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config holding the values used for keys absent from
// the file.
func defaults() *Config {
	return &Config{
		MQTTClientIDProducer:  "lsm6dsv-producer",
		MQTTClientIDConsole:   "lsm6dsv-console",
		MQTTClientIDWeb:       "lsm6dsv-web",
		MQTTClientIDDisplay:   "lsm6dsv-display",
		MQTTPayloadFormat:     imu.FormatJSON,
		TopicIMU:              "inertial/imu",
		TopicTemperature:      "inertial/temperature",
		IMUI2CAddr:            lsm6dsv.DefaultAddr,
		IMUVariant:            "lsm6dsv16x",
		IMUResetTimeoutMS:     50,
		ConsoleLogInterval:    1000,
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 250,
	}
}

// Load parses a KEY=VALUE file. Keys absent from the file keep their
// defaults.
func Load(configPath string) (*Config, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := defaults()
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config line %d: %q", n, line)
		}
		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringKeys maps keys holding free-form strings to their field.
func (c *Config) stringKeys() map[string]*string {
	return map[string]*string{
		"MQTT_BROKER":             &c.MQTTBroker,
		"MQTT_CLIENT_ID_PRODUCER": &c.MQTTClientIDProducer,
		"MQTT_CLIENT_ID_CONSOLE":  &c.MQTTClientIDConsole,
		"MQTT_CLIENT_ID_WEB":      &c.MQTTClientIDWeb,
		"MQTT_CLIENT_ID_DISPLAY":  &c.MQTTClientIDDisplay,
		"TOPIC_IMU":               &c.TopicIMU,
		"TOPIC_TEMPERATURE":       &c.TopicTemperature,
		"IMU_I2C_BUS":             &c.IMUI2CBus,
		"IMU_VARIANT":             &c.IMUVariant,
		"IMU_ACCEL_RANGE":         &c.IMUAccelRange,
		"IMU_GYRO_RANGE":          &c.IMUGyroRange,
		"IMU_ACCEL_RATE":          &c.IMUAccelRate,
		"IMU_GYRO_RATE":           &c.IMUGyroRate,
		"IMU_ACCEL_OP_MODE":       &c.IMUAccelOpMode,
		"IMU_GYRO_OP_MODE":        &c.IMUGyroOpMode,
	}
}

// intKeys maps integer keys to their field.
func (c *Config) intKeys() map[string]*int {
	return map[string]*int{
		"IMU_RESET_TIMEOUT_MS":    &c.IMUResetTimeoutMS,
		"IMU_SAMPLE_INTERVAL":     &c.IMUSampleInterval,
		"CONSOLE_LOG_INTERVAL":    &c.ConsoleLogInterval,
		"WEB_SERVER_PORT":         &c.WebServerPort,
		"REGISTER_DEBUG_PORT":     &c.RegisterDebugPort,
		"DISPLAY_UPDATE_INTERVAL": &c.DisplayUpdateInterval,
	}
}

// setValue stores one key, checking its syntax.
func (c *Config) setValue(key, value string) error {
	if p, ok := c.stringKeys()[key]; ok {
		*p = value
		return nil
	}
	if p, ok := c.intKeys()[key]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		*p = n
		return nil
	}

	switch key {
	case "MQTT_PAYLOAD_FORMAT":
		if value != imu.FormatJSON && value != imu.FormatCBOR {
			return fmt.Errorf("MQTT_PAYLOAD_FORMAT must be %q or %q, got %q", imu.FormatJSON, imu.FormatCBOR, value)
		}
		c.MQTTPayloadFormat = value
	case "IMU_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		if addr != lsm6dsv.DefaultAddr && addr != lsm6dsv.AltAddr {
			return fmt.Errorf("IMU_I2C_ADDR must be 0x%02X or 0x%02X, got 0x%02X", lsm6dsv.DefaultAddr, lsm6dsv.AltAddr, addr)
		}
		c.IMUI2CAddr = addr
	case "DISPLAY_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.DisplayI2CAddr = addr
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		if _, err := ParseRegisterRanges(value); err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_ALLOWED_RANGES %q: %w", value, err)
		}
		c.RegisterDebugAllowedRanges = value
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

// parseAddr parses a 7-bit I2C address in any Go integer syntax.
func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 7)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(addr), nil
}

// validate checks that all required fields are set and that the symbolic
// IMU settings exist for the chosen variant.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	for key, p := range c.intKeys() {
		if *p <= 0 {
			return fmt.Errorf("%s must be positive, got %d", key, *p)
		}
	}
	v, ok := lsm6dsv.VariantByName(c.IMUVariant)
	if !ok {
		return fmt.Errorf("IMU_VARIANT %q is not a known variant", c.IMUVariant)
	}
	checks := []struct {
		key, value string
		table      lsm6dsv.Table
	}{
		{"IMU_ACCEL_RANGE", c.IMUAccelRange, v.AccelRanges},
		{"IMU_GYRO_RANGE", c.IMUGyroRange, v.GyroRanges},
		{"IMU_ACCEL_RATE", c.IMUAccelRate, v.Rates},
		{"IMU_GYRO_RATE", c.IMUGyroRate, v.Rates},
		{"IMU_ACCEL_OP_MODE", c.IMUAccelOpMode, v.AccelOpModes},
		{"IMU_GYRO_OP_MODE", c.IMUGyroOpMode, v.GyroOpModes},
	}
	for _, ch := range checks {
		if ch.value == "" {
			continue
		}
		if _, ok := ch.table.Lookup(ch.value); !ok {
			return fmt.Errorf("%s %q is not valid for %s", ch.key, ch.value, v.Name)
		}
	}
	if r, ok := v.Rates.Lookup(c.IMUGyroRate); ok && lsm6dsv.Rate(r.Code) == lsm6dsv.GyroRateFloor {
		return fmt.Errorf("IMU_GYRO_RATE %q is below the gyroscope minimum", c.IMUGyroRate)
	}
	return nil
}

// Variant returns the configured chip model. Load has already validated it.
func (c *Config) Variant() *lsm6dsv.Variant {
	v, _ := lsm6dsv.VariantByName(c.IMUVariant)
	return v
}

// InitGlobal loads configPath into the process wide configuration. Only the
// first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the process wide configuration, nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
