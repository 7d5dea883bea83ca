// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/lsm6dsv/internal/app"
	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./lsm6dsv_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting LSM6DSV register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	ranges, err := config.ParseRegisterRanges(cfg.RegisterDebugAllowedRanges)
	if err != nil {
		log.Fatalf("invalid REGISTER_DEBUG_ALLOWED_RANGES: %v", err)
	}
	if len(ranges) == 0 {
		log.Println("REGISTER_DEBUG_ALLOWED_RANGES is empty: register writes are disabled")
	}

	log.Println("Initializing IMU manager...")
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Fatalf("IMU initialization failed: %v", err)
	}
	defer imuManager.Close()
	log.Printf("%s available", imuManager.Source())

	srv := app.NewRegisterDebugServer(imuManager, ranges)

	http.HandleFunc("/ws", srv.HandleWS)

	// API endpoint for live IMU data
	http.HandleFunc("/api/imu", srv.HandleIMUData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
