// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownSignals returns a channel that receives SIGINT and SIGTERM, and a
// func that stops the delivery.
func shutdownSignals() (<-chan os.Signal, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh, func() { signal.Stop(sigCh) }
}

// tickUntil calls fn on every tick until stop fires or fn fails.
func tickUntil(name string, stop <-chan os.Signal, tick <-chan time.Time, fn func(time.Time) error) error {
	for {
		select {
		case sig := <-stop:
			log.Printf("%s: %v received, shutting down", name, sig)
			return nil
		case t := <-tick:
			if err := fn(t); err != nil {
				return err
			}
		}
	}
}
