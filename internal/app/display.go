package app

import (
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// displayData holds the latest sample for the display loop.
type displayData struct {
	mu     sync.RWMutex
	sample imu.Sample
	have   bool
}

func (d *displayData) set(s imu.Sample) {
	d.mu.Lock()
	d.sample = s
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) get() (imu.Sample, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sample, d.have
}

// addrBus sends every transaction to addr. ssd1306.NewI2C always addresses
// 0x3C.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b *addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(&addrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := drawLines(dev, []string{"", "LSM6DSV", "Waiting for", "samples"}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDDisplay, "display")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeSamples(client, cfg, "display", data.set); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		s, have := data.get()
		if err := drawLines(dev, sampleLines(s, have)); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

// sampleLines lays out a sample on the four text lines of the display:
// acceleration in g, angular velocity in dps and temperature.
func sampleLines(s imu.Sample, have bool) []string {
	if !have {
		return []string{"", "IMU", "Waiting..."}
	}
	const g = 9.80665
	deg := 180 / math.Pi
	return []string{
		fmt.Sprintf("A%6.2f%6.2f%6.2f", s.Ax/g, s.Ay/g, s.Az/g),
		fmt.Sprintf("G%6.0f%6.0f%6.0f", s.Gx*deg, s.Gy*deg, s.Gz*deg),
		fmt.Sprintf("T %.1fC", s.TempC),
		s.AccelRange,
	}
}

// renderLines draws one line of text per 13 pixel row.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, lineHeight*(i+1))
		drawer.DrawString(line)
	}
	return img
}

func drawLines(dev *ssd1306.Dev, lines []string) error {
	return dev.Draw(dev.Bounds(), renderLines(lines), image.Point{})
}
