package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relabs-tech/lsm6dsv/internal/imu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestSampleBeforeFirst(t *testing.T) {
	l := &latestSample{}
	rec := httptest.NewRecorder()
	l.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLatestSampleServesLast(t *testing.T) {
	l := &latestSample{}
	l.set(imu.Sample{Source: "a", Ax: 1})
	l.set(imu.Sample{Source: "b", Ax: 2, AccelRange: "RANGE_4G"})

	rec := httptest.NewRecorder()
	l.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got imu.Sample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "b", got.Source)
	assert.Equal(t, 2.0, got.Ax)
	assert.Equal(t, "RANGE_4G", got.AccelRange)
}

func TestClientID(t *testing.T) {
	assert.Equal(t, "fixed", clientID("fixed", "web"))

	a := clientID("", "web")
	b := clientID("", "web")
	assert.Regexp(t, `^lsm6dsv-web-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}

func TestFormatSample(t *testing.T) {
	line := formatSample(imu.Sample{Ax: 0.5, Gz: -1.25, TempC: 31.5, AccelRange: "RANGE_2G", GyroRange: "RANGE_125_DPS"})
	assert.Contains(t, line, "ax=   0.500")
	assert.Contains(t, line, "gz=  -1.250")
	assert.Contains(t, line, "t= 31.50°C")
	assert.Contains(t, line, "(RANGE_2G, RANGE_125_DPS)")
}

func TestFormatTemperature(t *testing.T) {
	assert.Equal(t, "24.38", string(formatTemperature(24.375)))
}
