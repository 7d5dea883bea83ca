package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lsm6dsv_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# broker
MQTT_BROKER=tcp://localhost:1883
MQTT_PAYLOAD_FORMAT=cbor
IMU_VARIANT=LSM6DSV32X
IMU_I2C_ADDR=0x6B
IMU_ACCEL_RANGE=RANGE_32G
IMU_GYRO_RANGE=RANGE_4000_DPS
IMU_GYRO_RATE=RATE_7_68K_HZ
IMU_SAMPLE_INTERVAL=20
REGISTER_DEBUG_ALLOWED_RANGES=0x10-0x17, 0x19
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "cbor", cfg.MQTTPayloadFormat)
	assert.Equal(t, uint16(0x6B), cfg.IMUI2CAddr)
	assert.Equal(t, "RANGE_32G", cfg.IMUAccelRange)
	assert.Equal(t, 20, cfg.IMUSampleInterval)
	assert.Equal(t, "LSM6DSV32X", cfg.Variant().Name)

	// Defaults for absent keys.
	assert.Equal(t, "inertial/imu", cfg.TopicIMU)
	assert.Equal(t, 8081, cfg.RegisterDebugPort)
	assert.Equal(t, 50, cfg.IMUResetTimeoutMS)
}

func TestLoadErrors(t *testing.T) {
	base := "MQTT_BROKER=tcp://localhost:1883\nIMU_SAMPLE_INTERVAL=10\n"
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing broker", "IMU_SAMPLE_INTERVAL=10\n", "MQTT_BROKER is required"},
		{"missing interval", "MQTT_BROKER=tcp://x:1883\n", "IMU_SAMPLE_INTERVAL is required"},
		{"bad line", base + "NOEQUALS\n", "invalid config line 3"},
		{"unknown key", base + "FOO=1\n", `unknown config key: "FOO"`},
		{"bad address", base + "IMU_I2C_ADDR=0x1E\n", "IMU_I2C_ADDR must be"},
		{"bad format", base + "MQTT_PAYLOAD_FORMAT=xml\n", "MQTT_PAYLOAD_FORMAT"},
		{"bad variant", base + "IMU_VARIANT=lsm6dso\n", "not a known variant"},
		{"range of other variant", base + "IMU_ACCEL_RANGE=RANGE_32G\n", `IMU_ACCEL_RANGE "RANGE_32G" is not valid for LSM6DSV16X`},
		{"unknown rate", base + "IMU_ACCEL_RATE=RATE_5_HZ\n", "IMU_ACCEL_RATE"},
		{"gyro rate below minimum", base + "IMU_GYRO_RATE=RATE_1_875_HZ\n", `IMU_GYRO_RATE "RATE_1_875_HZ" is below the gyroscope minimum`},
		{"bad integer", base + "CONSOLE_LOG_INTERVAL=1s\n", `invalid CONSOLE_LOG_INTERVAL "1s"`},
		{"non positive port", base + "WEB_SERVER_PORT=0\n", "WEB_SERVER_PORT must be positive"},
		{"display address too wide", base + "DISPLAY_I2C_ADDR=0x80\n", "invalid DISPLAY_I2C_ADDR"},
		{"bad register ranges", base + "REGISTER_DEBUG_ALLOWED_RANGES=0x17-0x10\n", "reversed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorContains(t, err, "open config")
}

func TestParseRegisterRanges(t *testing.T) {
	ranges, err := ParseRegisterRanges("0x10-0x17,0x19, 0x20 - 0x21")
	require.NoError(t, err)
	assert.Equal(t, []RegisterRange{{0x10, 0x17}, {0x19, 0x19}, {0x20, 0x21}}, ranges)

	assert.True(t, RegisterWritable(0x10, ranges))
	assert.True(t, RegisterWritable(0x17, ranges))
	assert.True(t, RegisterWritable(0x19, ranges))
	assert.False(t, RegisterWritable(0x18, ranges))
	assert.False(t, RegisterWritable(0x0F, ranges))

	none, err := ParseRegisterRanges("")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.False(t, RegisterWritable(0x10, none))

	_, err = ParseRegisterRanges("0x100")
	assert.Error(t, err)
	_, err = ParseRegisterRanges("zz")
	assert.Error(t, err)
}
