// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/lsm6dsv/internal/config"
	"github.com/relabs-tech/lsm6dsv/internal/imu"
	"github.com/relabs-tech/lsm6dsv/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// registerDevice is the part of sensors.IMUManager the debugger uses.
type registerDevice interface {
	Source() string
	ReadRegister(reg uint8) (uint8, error)
	WriteRegister(reg, value uint8) error
	ReadAllRegisters() (map[uint8]uint8, error)
	RegisterMap() []sensors.RegisterInfo
	Reinitialize() error
	ReadSample() (imu.Sample, error)
}

var _ registerDevice = (*sensors.IMUManager)(nil)

// RegisterCmd is a command received on the debugger websocket.
type RegisterCmd struct {
	Action  string `json:"action"` // get_map, read, read_all, write, init, export_config, import_config
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
	Config  string `json:"config,omitempty"` // YAML snapshot for import_config
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "export_config", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Skipped     []string               `json:"skipped,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterSnapshot is the YAML document produced by export_config and
// accepted by import_config.
type RegisterSnapshot struct {
	Version   int               `yaml:"version"`
	Device    string            `yaml:"device"`
	Timestamp string            `yaml:"timestamp"`
	Registers map[string]string `yaml:"registers"` // hex address -> hex value
}

const registerSnapshotVersion = 1

// RegisterDebugServer serves the register debugger for one device. Writes
// are refused outside the allowed ranges.
type RegisterDebugServer struct {
	dev    registerDevice
	ranges []config.RegisterRange
}

func NewRegisterDebugServer(dev registerDevice, ranges []config.RegisterRange) *RegisterDebugServer {
	return &RegisterDebugServer{dev: dev, ranges: ranges}
}

// HandleWS handles the WebSocket connection for register debugging.
func (srv *RegisterDebugServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Send register map on connection
	if err := conn.WriteJSON(srv.registerMap()); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}
		if err := conn.WriteJSON(srv.handle(cmd)); err != nil {
			log.Printf("register_debug: websocket write error: %v", err)
			break
		}
	}
}

// handle routes one command.
func (srv *RegisterDebugServer) handle(cmd RegisterCmd) RegisterResponse {
	switch cmd.Action {
	case "get_map":
		return srv.registerMap()
	case "read":
		return srv.handleRead(cmd)
	case "read_all":
		return srv.handleReadAll()
	case "write":
		return srv.handleWrite(cmd)
	case "init":
		return srv.handleInit()
	case "export_config":
		return srv.handleExportConfig()
	case "import_config":
		return srv.handleImportConfig(cmd)
	case "":
		return errorResponse("missing or invalid action field")
	default:
		return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func (srv *RegisterDebugServer) registerMap() RegisterResponse {
	return RegisterResponse{
		Type:        "register_map",
		Device:      srv.dev.Source(),
		RegisterMap: srv.dev.RegisterMap(),
	}
}

func (srv *RegisterDebugServer) handleRead(cmd RegisterCmd) RegisterResponse {
	if cmd.Address == "" {
		return errorResponse("missing addr field")
	}
	addr, err := parseByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}

	value, err := srv.dev.ReadRegister(addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}

	return RegisterResponse{
		Type:      "register_data",
		Device:    srv.dev.Source(),
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (srv *RegisterDebugServer) handleReadAll() RegisterResponse {
	registers, err := srv.dev.ReadAllRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("read all error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    srv.dev.Source(),
		Registers: hexMap(registers),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (srv *RegisterDebugServer) handleWrite(cmd RegisterCmd) RegisterResponse {
	if cmd.Address == "" || cmd.Value == "" {
		return errorResponse("missing addr or value field")
	}
	addr, err := parseByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := parseByte(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}
	if !config.RegisterWritable(addr, srv.ranges) {
		return errorResponse(fmt.Sprintf("register %s not in allowed write ranges", hexByte(addr)))
	}

	if err := srv.dev.WriteRegister(addr, value); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}
	log.Printf("register_debug: wrote %s = %s", hexByte(addr), hexByte(value))

	return RegisterResponse{
		Type:      "register_data",
		Device:    srv.dev.Source(),
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
}

func (srv *RegisterDebugServer) handleInit() RegisterResponse {
	if err := srv.dev.Reinitialize(); err != nil {
		return errorResponse(fmt.Sprintf("reinit error: %v", err))
	}
	return RegisterResponse{
		Type:    "status",
		Device:  srv.dev.Source(),
		Status:  "initialized",
		Message: "IMU reinitialized successfully",
	}
}

func (srv *RegisterDebugServer) handleExportConfig() RegisterResponse {
	registers, err := srv.dev.ReadAllRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	now := time.Now()
	snap := RegisterSnapshot{
		Version:   registerSnapshotVersion,
		Device:    srv.dev.Source(),
		Timestamp: now.Format(time.RFC3339),
		Registers: hexMap(registers),
	}
	out, err := yaml.Marshal(snap)
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	return RegisterResponse{
		Type:     "export_config",
		Device:   snap.Device,
		Message:  "config exported",
		Config:   string(out),
		Filename: fmt.Sprintf("lsm6dsv_%s_registers.yaml", now.Format("20060102_150405")),
	}
}

func (srv *RegisterDebugServer) handleImportConfig(cmd RegisterCmd) RegisterResponse {
	if cmd.Config == "" {
		return errorResponse("missing config field")
	}
	writes, skipped, err := planImport([]byte(cmd.Config), srv.ranges)
	if err != nil {
		return errorResponse(fmt.Sprintf("import error: %v", err))
	}
	for _, w := range writes {
		if err := srv.dev.WriteRegister(w.addr, w.value); err != nil {
			return errorResponse(fmt.Sprintf("import error at %s: %v", hexByte(w.addr), err))
		}
	}
	log.Printf("register_debug: imported %d registers, skipped %d", len(writes), len(skipped))

	return RegisterResponse{
		Type:    "status",
		Device:  srv.dev.Source(),
		Status:  "imported",
		Message: fmt.Sprintf("imported %d registers, skipped %d", len(writes), len(skipped)),
		Skipped: skipped,
	}
}

type registerWrite struct {
	addr, value uint8
}

// planImport parses a YAML snapshot and returns the writes to apply in
// address order. Registers outside ranges are reported in skipped.
func planImport(data []byte, ranges []config.RegisterRange) (writes []registerWrite, skipped []string, err error) {
	var snap RegisterSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if snap.Version != registerSnapshotVersion {
		return nil, nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	for a, v := range snap.Registers {
		addr, err := parseByte(a)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid address %q", a)
		}
		value, err := parseByte(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid value %q for %s", v, a)
		}
		if !config.RegisterWritable(addr, ranges) {
			skipped = append(skipped, hexByte(addr))
			continue
		}
		writes = append(writes, registerWrite{addr: addr, value: value})
	}
	sort.Slice(writes, func(i, j int) bool { return writes[i].addr < writes[j].addr })
	sort.Strings(skipped)
	return writes, skipped, nil
}

// HandleIMUData serves a live IMU reading via REST API.
func (srv *RegisterDebugServer) HandleIMUData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	s, err := srv.dev.ReadSample()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(s)
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{
		Type:    "error",
		Message: message,
	}
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	return uint8(v), err
}

func hexByte(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}

func hexMap(registers map[uint8]uint8) map[string]string {
	out := make(map[string]string, len(registers))
	for addr, value := range registers {
		out[hexByte(addr)] = hexByte(value)
	}
	return out
}
