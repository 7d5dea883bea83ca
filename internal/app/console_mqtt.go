package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}

	if err := subscribeSamples(client, cfg, "console", func(s imu.Sample) {
		fmt.Println(formatSample(s))
	}); err != nil {
		return err
	}

	tempToken := client.Subscribe(cfg.TopicTemperature, 0, func(_ mqtt.Client, msg mqtt.Message) {
		fmt.Printf("[TEMP] %s°C\n", msg.Payload())
	})
	tempToken.Wait()
	if tempToken.Error() != nil {
		return tempToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTemperature)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
