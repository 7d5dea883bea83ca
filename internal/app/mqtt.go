// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
)

// clientID returns id, or a unique id derived from role when id is empty.
// Two tools sharing a client id kick each other off the broker.
func clientID(id, role string) string {
	if id != "" {
		return id
	}
	return "lsm6dsv-" + role + "-" + uuid.NewString()[:8]
}

// connectMQTT connects to the configured broker.
func connectMQTT(cfg *config.Config, id, role string) (mqtt.Client, error) {
	id = clientID(id, role)
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(id).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect to %s: %w", cfg.MQTTBroker, token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s as %s", role, cfg.MQTTBroker, id)
	return client, nil
}

// subscribeSamples subscribes to the IMU topic and passes every decoded
// sample to fn.
func subscribeSamples(client mqtt.Client, cfg *config.Config, role string, fn func(imu.Sample)) error {
	token := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.Sample
		if err := imu.Decode(cfg.MQTTPayloadFormat, msg.Payload(), &s); err != nil {
			log.Printf("%s: imu %s decode error: %v", role, cfg.MQTTPayloadFormat, err)
			return
		}
		fn(s)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicIMU, token.Error())
	}
	log.Printf("%s: subscribed to %s", role, cfg.TopicIMU)
	return nil
}

// formatSample renders a sample on one console line.
func formatSample(s imu.Sample) string {
	return fmt.Sprintf(
		"[IMU] ax=%8.3f ay=%8.3f az=%8.3f m/s²  gx=%8.3f gy=%8.3f gz=%8.3f rad/s  t=%6.2f°C  (%s, %s)",
		s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.TempC, s.AccelRange, s.GyroRange,
	)
}

// formatTemperature renders the temperature payload published next to the
// sample.
func formatTemperature(c float64) []byte {
	return []byte(strconv.FormatFloat(c, 'f', 2, 64))
}
