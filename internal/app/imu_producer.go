// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
	"github.com/relabs-tech/lsm6dsv/internal/sensors"
)

// RunIMUProducer samples the LSM6DSV every IMU_SAMPLE_INTERVAL and publishes
// the readings to MQTT.
func RunIMUProducer() error {
	log.Println("starting lsm6dsv IMU producer")

	cfg := config.Get()

	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize IMU: %w", err)
	}
	defer imuManager.Close()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDProducer, "producer")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	log.Printf("publishing %s samples to %s every %dms", cfg.MQTTPayloadFormat, cfg.TopicIMU, cfg.IMUSampleInterval)

	logEvery := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	var lastLog time.Time
	var published, failed int

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	stop, release := shutdownSignals()
	defer release()

	return tickUntil("producer", stop, ticker.C, func(t time.Time) error {
		s, err := imuManager.ReadSample()
		if err != nil {
			failed++
			log.Printf("IMU read error: %v", err)
			return nil
		}

		payload, err := imu.Encode(cfg.MQTTPayloadFormat, s)
		if err != nil {
			log.Printf("%s encode error (imu): %v", cfg.MQTTPayloadFormat, err)
			return nil
		}
		if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
			failed++
			log.Printf("MQTT publish error (imu): %v", token.Error())
			return nil
		}
		if token := client.Publish(cfg.TopicTemperature, 0, true, formatTemperature(s.TempC)); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (temperature): %v", token.Error())
		}
		published++

		if t.Sub(lastLog) >= logEvery {
			lastLog = t
			log.Printf("%s tick: published=%d failed=%d | accel ax=%.3f ay=%.3f az=%.3f | gyro gx=%.3f gy=%.3f gz=%.3f | temp=%.2f°C",
				t.Format(time.RFC3339),
				published, failed,
				s.Ax, s.Ay, s.Az,
				s.Gx, s.Gy, s.Gz,
				s.TempC,
			)
		}
		return nil
	})
}
