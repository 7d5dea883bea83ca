// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/sensors"
)

// RunConsole reads the device directly and prints every sample, without
// going through MQTT.
func RunConsole() error {
	cfg := config.Get()

	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		return err
	}
	defer imuManager.Close()

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	stop, release := shutdownSignals()
	defer release()

	return tickUntil("console", stop, ticker.C, func(time.Time) error {
		s, err := imuManager.ReadSample()
		if err != nil {
			return err
		}
		fmt.Println(formatSample(s))
		return nil
	})
}
