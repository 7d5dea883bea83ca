package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
	"github.com/relabs-tech/lsm6dsv/internal/sensors"
)

type fakeRegisterDevice struct {
	regs     map[uint8]uint8
	writes   []registerWrite
	reinits  int
	readErr  error
	sample   imu.Sample
	regInfos []sensors.RegisterInfo
}

func newFakeRegisterDevice() *fakeRegisterDevice {
	return &fakeRegisterDevice{
		regs: map[uint8]uint8{0x0F: 0x70, 0x10: 0x06, 0x12: 0x44},
		regInfos: []sensors.RegisterInfo{
			{Address: "0x0F", Name: "WHO_AM_I", Access: "R"},
			{Address: "0x10", Name: "CTRL1", Access: "RW"},
		},
	}
}

func (f *fakeRegisterDevice) Source() string { return "LSM6DSV16X@0x6A" }

func (f *fakeRegisterDevice) ReadRegister(reg uint8) (uint8, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.regs[reg], nil
}

func (f *fakeRegisterDevice) WriteRegister(reg, value uint8) error {
	f.writes = append(f.writes, registerWrite{addr: reg, value: value})
	f.regs[reg] = value
	return nil
}

func (f *fakeRegisterDevice) ReadAllRegisters() (map[uint8]uint8, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[uint8]uint8, len(f.regs))
	for k, v := range f.regs {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRegisterDevice) RegisterMap() []sensors.RegisterInfo { return f.regInfos }
func (f *fakeRegisterDevice) Reinitialize() error                { f.reinits++; return nil }
func (f *fakeRegisterDevice) ReadSample() (imu.Sample, error) {
	if f.readErr != nil {
		return imu.Sample{}, f.readErr
	}
	return f.sample, nil
}

func mustRanges(t *testing.T, s string) []config.RegisterRange {
	t.Helper()
	r, err := config.ParseRegisterRanges(s)
	require.NoError(t, err)
	return r
}

func TestRegisterDebugRead(t *testing.T) {
	dev := newFakeRegisterDevice()
	srv := NewRegisterDebugServer(dev, nil)

	resp := srv.handle(RegisterCmd{Action: "read", Address: "0x0f"})
	assert.Equal(t, "register_data", resp.Type)
	assert.Equal(t, "0x0F", resp.Address)
	assert.Equal(t, "0x70", resp.Value)

	resp = srv.handle(RegisterCmd{Action: "read", Address: "zz"})
	assert.Equal(t, "error", resp.Type)

	resp = srv.handle(RegisterCmd{Action: "read"})
	assert.Equal(t, "error", resp.Type)

	dev.readErr = errors.New("bus down")
	resp = srv.handle(RegisterCmd{Action: "read", Address: "0x0F"})
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Message, "bus down")
}

func TestRegisterDebugReadAll(t *testing.T) {
	srv := NewRegisterDebugServer(newFakeRegisterDevice(), nil)

	resp := srv.handle(RegisterCmd{Action: "read_all"})
	require.Equal(t, "register_data", resp.Type)
	assert.Equal(t, map[string]string{"0x0F": "0x70", "0x10": "0x06", "0x12": "0x44"}, resp.Registers)
}

func TestRegisterDebugWriteGuard(t *testing.T) {
	tests := []struct {
		name    string
		ranges  string
		addr    string
		allowed bool
	}{
		{"read only by default", "", "0x10", false},
		{"inside range", "0x10-0x17", "0x15", true},
		{"range edge", "0x10-0x17", "0x17", true},
		{"outside range", "0x10-0x17", "0x0F", false},
		{"single register", "0x10-0x11,0x19", "0x19", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeRegisterDevice()
			srv := NewRegisterDebugServer(dev, mustRanges(t, tt.ranges))

			resp := srv.handle(RegisterCmd{Action: "write", Address: tt.addr, Value: "0x5A"})
			if tt.allowed {
				assert.Equal(t, "register_data", resp.Type)
				assert.Equal(t, "write successful", resp.Message)
				assert.Len(t, dev.writes, 1)
			} else {
				assert.Equal(t, "error", resp.Type)
				assert.Contains(t, resp.Message, "not in allowed write ranges")
				assert.Empty(t, dev.writes)
			}
		})
	}
}

func TestRegisterDebugWriteBadValue(t *testing.T) {
	dev := newFakeRegisterDevice()
	srv := NewRegisterDebugServer(dev, mustRanges(t, "0x10-0x17"))

	resp := srv.handle(RegisterCmd{Action: "write", Address: "0x10", Value: "0x100"})
	assert.Equal(t, "error", resp.Type)
	assert.Empty(t, dev.writes)
}

func TestRegisterDebugInit(t *testing.T) {
	dev := newFakeRegisterDevice()
	srv := NewRegisterDebugServer(dev, nil)

	resp := srv.handle(RegisterCmd{Action: "init"})
	assert.Equal(t, "status", resp.Type)
	assert.Equal(t, "initialized", resp.Status)
	assert.Equal(t, 1, dev.reinits)
}

func TestRegisterDebugUnknownAction(t *testing.T) {
	srv := NewRegisterDebugServer(newFakeRegisterDevice(), nil)

	assert.Equal(t, "error", srv.handle(RegisterCmd{Action: "set_spi_speed"}).Type)
	assert.Equal(t, "error", srv.handle(RegisterCmd{}).Type)
}

func TestRegisterDebugExportImport(t *testing.T) {
	src := newFakeRegisterDevice()
	srv := NewRegisterDebugServer(src, nil)

	resp := srv.handle(RegisterCmd{Action: "export_config"})
	require.Equal(t, "export_config", resp.Type)
	assert.True(t, strings.HasSuffix(resp.Filename, "_registers.yaml"))

	var snap RegisterSnapshot
	require.NoError(t, yaml.Unmarshal([]byte(resp.Config), &snap))
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, "LSM6DSV16X@0x6A", snap.Device)
	assert.Equal(t, "0x70", snap.Registers["0x0F"])

	dst := newFakeRegisterDevice()
	dst.regs[0x10] = 0
	dstSrv := NewRegisterDebugServer(dst, mustRanges(t, "0x10-0x17"))

	resp = dstSrv.handle(RegisterCmd{Action: "import_config", Config: resp.Config})
	require.Equal(t, "status", resp.Type, resp.Message)
	assert.Equal(t, "imported", resp.Status)
	assert.Equal(t, []string{"0x0F"}, resp.Skipped)
	assert.Equal(t, []registerWrite{{0x10, 0x06}, {0x12, 0x44}}, dst.writes)
}

func TestPlanImport(t *testing.T) {
	ranges := []config.RegisterRange{{Lo: 0x10, Hi: 0x17}}

	writes, skipped, err := planImport([]byte("version: 1\nregisters:\n  \"0x17\": \"0x02\"\n  \"0x10\": \"0x46\"\n  \"0x28\": \"0x00\"\n"), ranges)
	require.NoError(t, err)
	assert.Equal(t, []registerWrite{{0x10, 0x46}, {0x17, 0x02}}, writes)
	assert.Equal(t, []string{"0x28"}, skipped)

	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "registers: [unclosed"},
		{"wrong version", "version: 2\nregisters: {}\n"},
		{"bad address", "version: 1\nregisters:\n  nope: \"0x00\"\n"},
		{"bad value", "version: 1\nregisters:\n  \"0x10\": \"0x1FF\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := planImport([]byte(tt.doc), ranges)
			assert.Error(t, err)
		})
	}
}

func TestRegisterDebugWebSocket(t *testing.T) {
	dev := newFakeRegisterDevice()
	srv := NewRegisterDebugServer(dev, nil)
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var first RegisterResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "register_map", first.Type)
	assert.Len(t, first.RegisterMap, 2)

	require.NoError(t, conn.WriteJSON(RegisterCmd{Action: "read", Address: "0x12"}))
	var resp RegisterResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "0x44", resp.Value)
}

func TestRegisterDebugIMUData(t *testing.T) {
	dev := newFakeRegisterDevice()
	dev.sample = imu.Sample{Source: "LSM6DSV16X@0x6A", Az: 9.81}
	srv := NewRegisterDebugServer(dev, nil)

	rec := httptest.NewRecorder()
	srv.HandleIMUData(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"LSM6DSV16X@0x6A"`)

	dev.readErr = errors.New("bus down")
	rec = httptest.NewRecorder()
	srv.HandleIMUData(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "bus down")
}
