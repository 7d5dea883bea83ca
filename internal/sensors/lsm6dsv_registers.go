// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"strconv"
)

// RegisterInfo describes one device register for the register debugger.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a field inside a register.
type BitField struct {
	Bits        string `json:"bits"` // "7:4" or "3"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values"`
}

// getLSM6DSVRegisterMap returns metadata for the LSM6DSV registers the driver
// and the debugger touch.
func getLSM6DSVRegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x01", Name: "FUNC_CFG_ACCESS", Description: "Embedded functions configuration access", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "EMB_FUNC_REG_ACCESS", Description: "Embedded functions register bank", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2", Name: "SW_POR", Description: "Global reset of the device", Values: "1=Reset"},
			}},

		// Device Identification
		{Address: "0x0F", Name: "WHO_AM_I", Description: "Device ID (should be 0x70)", Access: "R", Default: "0x70"},

		// Control Registers
		{Address: "0x10", Name: "CTRL1", Description: "Accelerometer control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6:4", Name: "OP_MODE_XL", Description: "Accelerometer operating mode", Values: "0=High performance, 1=High accuracy ODR, 3=ODR triggered, 4-6=Low power 1-3, 7=Normal"},
				{Bits: "3:0", Name: "ODR_XL", Description: "Accelerometer output data rate", Values: "0=Off, 1=1.875Hz, 2=7.5Hz, 3=15Hz, 4=30Hz, 5=60Hz, 6=120Hz, 7=240Hz, 8=480Hz, 9=960Hz, 10=1.92kHz, 11=3.84kHz/7.68kHz"},
			}},
		{Address: "0x11", Name: "CTRL2", Description: "Gyroscope control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6:4", Name: "OP_MODE_G", Description: "Gyroscope operating mode", Values: "0=High performance, 1=High accuracy ODR, 3=ODR triggered, 4=Sleep, 5=Low power"},
				{Bits: "3:0", Name: "ODR_G", Description: "Gyroscope output data rate", Values: "0=Off, 2=7.5Hz ... 11=3.84kHz/7.68kHz (1.875Hz not available)"},
			}},
		{Address: "0x12", Name: "CTRL3", Description: "Control register 3", Access: "RW", Default: "0x44",
			BitFields: []BitField{
				{Bits: "7", Name: "BOOT", Description: "Reboot memory content", Values: "1=Reboot"},
				{Bits: "6", Name: "BDU", Description: "Block data update", Values: "0=Continuous, 1=Latched until read"},
				{Bits: "2", Name: "IF_INC", Description: "Register address auto increment", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "SW_RESET", Description: "Software reset, self clearing", Values: "1=Reset"},
			}},
		{Address: "0x13", Name: "CTRL4", Description: "Control register 4", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "INT2_DRDY_TEMP", Description: "Temperature data ready on INT2", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "DRDY_MASK", Description: "Mask data ready until filter settling", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "DRDY_PULSED", Description: "Pulsed data ready mode", Values: "0=Latched, 1=Pulsed"},
			}},
		{Address: "0x14", Name: "CTRL5", Description: "Control register 5", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2:1", Name: "BUS_ACT_SEL", Description: "Bus available time selection for IBI", Values: "0=2us, 1=50us, 2=1ms, 3=25ms"},
			}},
		{Address: "0x15", Name: "CTRL6", Description: "Gyroscope full scale and LPF1", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6:4", Name: "LPF1_G_BW", Description: "Gyroscope LPF1 bandwidth", Values: "0-7"},
				{Bits: "3:0", Name: "FS_G", Description: "Gyroscope full scale", Values: "0=±125dps, 1=±250dps, 2=±500dps, 3=±1000dps, 4=±2000dps, 12=±4000dps"},
			}},
		{Address: "0x16", Name: "CTRL7", Description: "Control register 7", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "0", Name: "LPF1_G_EN", Description: "Gyroscope digital LPF1", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x17", Name: "CTRL8", Description: "Accelerometer full scale and bandwidth", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:5", Name: "HP_LPF2_XL_BW", Description: "Accelerometer LPF2/HP filter cutoff", Values: "0-7"},
				{Bits: "3", Name: "XL_DUALC_EN", Description: "Dual channel mode", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1:0", Name: "FS_XL", Description: "Accelerometer full scale", Values: "16X: 0=±2g, 1=±4g, 2=±8g, 3=±16g; 32X: 0=±4g, 1=±8g, 2=±16g, 3=±32g"},
			}},
		{Address: "0x18", Name: "CTRL9", Description: "Accelerometer filtering", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "HP_REF_MODE_XL", Description: "High-pass reference mode", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "HP_SLOPE_XL_EN", Description: "Slope/high-pass filter selection", Values: "0=Low pass, 1=High pass"},
				{Bits: "3", Name: "LPF2_XL_EN", Description: "Accelerometer LPF2", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x19", Name: "CTRL10", Description: "Self-test configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3:2", Name: "ST_G", Description: "Gyroscope self-test", Values: "0=Normal, 1=Positive, 2=Negative"},
				{Bits: "1:0", Name: "ST_XL", Description: "Accelerometer self-test", Values: "0=Normal, 1=Positive, 2=Negative"},
			}},

		// Status
		{Address: "0x1E", Name: "STATUS_REG", Description: "Data ready status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2", Name: "TDA", Description: "Temperature data available", Values: ""},
				{Bits: "1", Name: "GDA", Description: "Gyroscope data available", Values: ""},
				{Bits: "0", Name: "XLDA", Description: "Accelerometer data available", Values: ""},
			}},

		// Sensor Data Registers (Read-Only)
		{Address: "0x20", Name: "OUT_TEMP_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x21", Name: "OUT_TEMP_H", Description: "Temperature High Byte (256 LSB/°C, 0 = 25°C)", Access: "R"},
		{Address: "0x22", Name: "OUTX_L_G", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x23", Name: "OUTX_H_G", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x24", Name: "OUTY_L_G", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x25", Name: "OUTY_H_G", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x26", Name: "OUTZ_L_G", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},
		{Address: "0x27", Name: "OUTZ_H_G", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x28", Name: "OUTX_L_A", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x29", Name: "OUTX_H_A", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x2A", Name: "OUTY_L_A", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x2B", Name: "OUTY_H_A", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x2C", Name: "OUTZ_L_A", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x2D", Name: "OUTZ_H_A", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
	}
}

// registerAddresses returns the addresses of getLSM6DSVRegisterMap in order.
func registerAddresses() []uint8 {
	regs := getLSM6DSVRegisterMap()
	out := make([]uint8, 0, len(regs))
	for _, r := range regs {
		v, err := strconv.ParseUint(r.Address, 0, 8)
		if err != nil {
			continue
		}
		out = append(out, uint8(v))
	}
	return out
}
