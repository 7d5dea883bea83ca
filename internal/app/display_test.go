package app

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/lsm6dsv/internal/imu"
)

func TestSampleLinesWaiting(t *testing.T) {
	assert.Equal(t, []string{"", "IMU", "Waiting..."}, sampleLines(imu.Sample{}, false))
}

func TestSampleLines(t *testing.T) {
	lines := sampleLines(imu.Sample{
		Az:         9.80665,
		Gx:         math.Pi,
		TempC:      26.3,
		AccelRange: "RANGE_4G",
	}, true)

	require.Len(t, lines, 4)
	assert.Equal(t, "A  0.00  0.00  1.00", lines[0])
	assert.Equal(t, "G   180     0     0", lines[1])
	assert.Equal(t, "T 26.3C", lines[2])
	assert.Equal(t, "RANGE_4G", lines[3])
}

func TestRenderLines(t *testing.T) {
	blank := renderLines(nil)
	assert.Equal(t, image.Rect(0, 0, 128, 64), blank.Bounds())
	for _, b := range blank.Pix {
		require.Zero(t, b)
	}

	img := renderLines([]string{"A"})
	lit := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			if img.BitAt(x, y) == image1bit.On {
				lit++
				assert.Less(t, y, 16, "text stays on the first line")
			}
		}
	}
	assert.NotZero(t, lit)
}

type addrRecorder struct {
	addrs []uint16
}

func (r *addrRecorder) String() string                   { return "addrRecorder" }
func (r *addrRecorder) SetSpeed(f physic.Frequency) error { return nil }
func (r *addrRecorder) Tx(addr uint16, w, rd []byte) error {
	r.addrs = append(r.addrs, addr)
	return nil
}

func TestAddrBus(t *testing.T) {
	rec := &addrRecorder{}
	b := &addrBus{Bus: rec, addr: 0x3D}

	require.NoError(t, b.Tx(0x3C, []byte{0}, nil))
	assert.Equal(t, []uint16{0x3D}, rec.addrs)
	assert.Equal(t, "addrRecorder", b.String())
}
