// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package lsm6dsv controls an ST LSM6DSV family 6-axis IMU (3-axis accelerometer
// and 3-axis gyroscope) over I²C.
//
// The package maps symbolic range, rate and operating mode values to their
// register encodings and converts raw samples to physical units: acceleration
// in m/s², angular velocity in rad/s and temperature in °C. It performs no
// filtering, integration or calibration.
//
// Chip models share the register layout but not the accelerometer full-scale
// table. A model is described by a Variant value passed in Opts; LSM6DSV16X and
// LSM6DSV32X are provided.
//
// The driver does not lock. Callers sharing a Dev between goroutines must
// serialize access.
//
// # Datasheets
//
// https://www.st.com/resource/en/datasheet/lsm6dsv16x.pdf
//
// https://www.st.com/resource/en/datasheet/lsm6dsv32x.pdf
package lsm6dsv
