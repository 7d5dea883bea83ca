package imu

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Sample is one IMU reading as published on MQTT.
type Sample struct {
	Source string `json:"source" cbor:"source"` // variant and bus address
	Time   string `json:"time" cbor:"time"`     // RFC3339Nano

	Ax float64 `json:"ax" cbor:"ax"` // m/s²
	Ay float64 `json:"ay" cbor:"ay"`
	Az float64 `json:"az" cbor:"az"`

	Gx float64 `json:"gx" cbor:"gx"` // rad/s
	Gy float64 `json:"gy" cbor:"gy"`
	Gz float64 `json:"gz" cbor:"gz"`

	TempC float64 `json:"temp_c" cbor:"temp_c"`

	Raw Raw `json:"raw" cbor:"raw"`

	AccelRange string `json:"accel_range,omitempty" cbor:"accel_range,omitempty"` // e.g. "RANGE_2G"
	GyroRange  string `json:"gyro_range,omitempty" cbor:"gyro_range,omitempty"`
}

// Raw holds the register counts a Sample was scaled from.
type Raw struct {
	Ax int16 `json:"ax" cbor:"ax"`
	Ay int16 `json:"ay" cbor:"ay"`
	Az int16 `json:"az" cbor:"az"`
	Gx int16 `json:"gx" cbor:"gx"`
	Gy int16 `json:"gy" cbor:"gy"`
	Gz int16 `json:"gz" cbor:"gz"`
	T  int16 `json:"t" cbor:"t"`
}

// SampleSource is anything that yields samples.
type SampleSource interface {
	ReadSample() (Sample, error)
}

// Payload formats.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Encode serializes v for MQTT in the given format.
func Encode(format string, v any) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.Marshal(v)
	case FormatCBOR:
		return cbor.Marshal(v)
	default:
		return nil, fmt.Errorf("unknown payload format %q", format)
	}
}

// Decode parses an MQTT payload produced by Encode.
func Decode(format string, data []byte, v any) error {
	switch format {
	case FormatJSON, "":
		return json.Unmarshal(data, v)
	case FormatCBOR:
		return cbor.Unmarshal(data, v)
	default:
		return fmt.Errorf("unknown payload format %q", format)
	}
}
