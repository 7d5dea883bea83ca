package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
)

// latestSample keeps the most recent sample and serves it as JSON.
type latestSample struct {
	mu   sync.RWMutex
	s    imu.Sample
	have bool
}

func (l *latestSample) set(s imu.Sample) {
	l.mu.Lock()
	l.s = s
	l.have = true
	l.mu.Unlock()
}

func (l *latestSample) get() (imu.Sample, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.s, l.have
}

func (l *latestSample) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, ok := l.get()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func RunWeb() error {
	cfg := config.Get()
	latest := &latestSample{}

	// 1) Connect to MQTT broker
	client, err := connectMQTT(cfg, cfg.MQTTClientIDWeb, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// 2) Keep the latest sample
	if err := subscribeSamples(client, cfg, "web", latest.set); err != nil {
		return err
	}

	// 3) JSON API endpoint: latest sample
	http.Handle("/api/imu", latest)

	// 4) Static files from ./web as the root
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
