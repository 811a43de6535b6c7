package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Shipped defaults. The flag layer in cmd/scanlink uses the same values, so
// a bare invocation behaves exactly like a fully specified one.
const (
	DefaultDevice      = "/dev/ttyUSB0"
	DefaultBaudRate    = 115200
	DefaultMotorPWM    = 1023
	DefaultEndpoint    = "192.168.1.204:8002"
	DefaultListenAddr  = ":8090"
	DefaultDBPath      = "scanlink.db"
	DefaultLogInterval = 60 * time.Second
)

// CaptureConfig represents the file-backed configuration for the capture
// daemon. Fields omitted from the JSON file keep their defaults via the Get*
// methods, so partial configs are safe.
type CaptureConfig struct {
	// Sensor params
	Device   *string `json:"device,omitempty"`
	BaudRate *int    `json:"baud_rate,omitempty"`
	MotorPWM *int    `json:"motor_pwm,omitempty"`

	// Uplink params
	Endpoint *string `json:"endpoint,omitempty"`

	// Monitor params
	ListenAddr  *string `json:"listen_addr,omitempty"`
	LogInterval *string `json:"log_interval,omitempty"` // duration string like "60s"

	// Storage params
	DBPath     *string `json:"db_path,omitempty"`
	DisableDB  *bool   `json:"disable_db,omitempty"`
	RecordPath *string `json:"record_path,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }

// EmptyCaptureConfig returns a CaptureConfig with all fields set to nil.
// Use LoadCaptureConfig to load actual values from a file.
func EmptyCaptureConfig() *CaptureConfig {
	return &CaptureConfig{}
}

// DefaultCaptureConfig returns a CaptureConfig with every field explicitly
// set to its shipped default.
func DefaultCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		Device:      ptrString(DefaultDevice),
		BaudRate:    ptrInt(DefaultBaudRate),
		MotorPWM:    ptrInt(DefaultMotorPWM),
		Endpoint:    ptrString(DefaultEndpoint),
		ListenAddr:  ptrString(DefaultListenAddr),
		LogInterval: ptrString(DefaultLogInterval.String()),
		DBPath:      ptrString(DefaultDBPath),
		DisableDB:   ptrBool(false),
	}
}

// LoadCaptureConfig loads a CaptureConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadCaptureConfig(path string) (*CaptureConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyCaptureConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *CaptureConfig) Validate() error {
	// MotorPWM rides in a 10-bit field on the wire.
	if c.MotorPWM != nil {
		if *c.MotorPWM < 0 || *c.MotorPWM > 1023 {
			return fmt.Errorf("motor_pwm must be between 0 and 1023, got %d", *c.MotorPWM)
		}
	}

	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}

	if c.Endpoint != nil && *c.Endpoint != "" {
		if _, _, err := net.SplitHostPort(*c.Endpoint); err != nil {
			return fmt.Errorf("invalid endpoint '%s': %w", *c.Endpoint, err)
		}
	}

	// Validate LogInterval can be parsed if set
	if c.LogInterval != nil && *c.LogInterval != "" {
		if _, err := time.ParseDuration(*c.LogInterval); err != nil {
			return fmt.Errorf("invalid log_interval '%s': %w", *c.LogInterval, err)
		}
	}

	return nil
}

// GetDevice returns the device value or the default.
func (c *CaptureConfig) GetDevice() string {
	if c.Device == nil || *c.Device == "" {
		return DefaultDevice
	}
	return *c.Device
}

// GetBaudRate returns the baud_rate value or the default.
func (c *CaptureConfig) GetBaudRate() int {
	if c.BaudRate == nil || *c.BaudRate <= 0 {
		return DefaultBaudRate
	}
	return *c.BaudRate
}

// GetMotorPWM returns the motor_pwm value or the default.
func (c *CaptureConfig) GetMotorPWM() uint16 {
	if c.MotorPWM == nil || *c.MotorPWM < 0 || *c.MotorPWM > 1023 {
		return DefaultMotorPWM
	}
	return uint16(*c.MotorPWM)
}

// GetEndpoint returns the endpoint value or the default.
func (c *CaptureConfig) GetEndpoint() string {
	if c.Endpoint == nil || *c.Endpoint == "" {
		return DefaultEndpoint
	}
	return *c.Endpoint
}

// GetListenAddr returns the listen_addr value or the default.
func (c *CaptureConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return *c.ListenAddr
}

// GetLogInterval parses and returns the LogInterval as a time.Duration.
func (c *CaptureConfig) GetLogInterval() time.Duration {
	if c.LogInterval == nil || *c.LogInterval == "" {
		return DefaultLogInterval
	}
	d, err := time.ParseDuration(*c.LogInterval)
	if err != nil {
		return DefaultLogInterval // default on parse error
	}
	return d
}

// GetDBPath returns the db_path value or the default.
func (c *CaptureConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetDisableDB returns the disable_db value or the default.
func (c *CaptureConfig) GetDisableDB() bool {
	if c.DisableDB == nil {
		return false
	}
	return *c.DisableDB
}

// GetRecordPath returns the record_path value, or empty when recording is off.
func (c *CaptureConfig) GetRecordPath() string {
	if c.RecordPath == nil {
		return ""
	}
	return *c.RecordPath
}
