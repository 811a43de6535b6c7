package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultCaptureConfig(t *testing.T) {
	cfg := DefaultCaptureConfig()

	// Test that defaults are set via pointers
	if cfg.Device == nil || *cfg.Device != "/dev/ttyUSB0" {
		t.Errorf("Expected Device /dev/ttyUSB0, got %v", cfg.Device)
	}
	if cfg.BaudRate == nil || *cfg.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %v", cfg.BaudRate)
	}
	if cfg.MotorPWM == nil || *cfg.MotorPWM != 1023 {
		t.Errorf("Expected MotorPWM 1023, got %v", cfg.MotorPWM)
	}
	if cfg.Endpoint == nil || *cfg.Endpoint != "192.168.1.204:8002" {
		t.Errorf("Expected Endpoint 192.168.1.204:8002, got %v", cfg.Endpoint)
	}
	if cfg.DisableDB == nil || *cfg.DisableDB != false {
		t.Errorf("Expected DisableDB false, got %v", cfg.DisableDB)
	}

	// Test getter methods
	if cfg.GetDevice() != "/dev/ttyUSB0" {
		t.Errorf("GetDevice() = %s, want /dev/ttyUSB0", cfg.GetDevice())
	}
	if cfg.GetMotorPWM() != 1023 {
		t.Errorf("GetMotorPWM() = %d, want 1023", cfg.GetMotorPWM())
	}
	if cfg.GetListenAddr() != ":8090" {
		t.Errorf("GetListenAddr() = %s, want :8090", cfg.GetListenAddr())
	}
	if cfg.GetLogInterval() != 60*time.Second {
		t.Errorf("GetLogInterval() = %v, want 60s", cfg.GetLogInterval())
	}
}

func TestEmptyCaptureConfigFallsBackToDefaults(t *testing.T) {
	cfg := EmptyCaptureConfig()

	if cfg.GetDevice() != DefaultDevice {
		t.Errorf("GetDevice() = %s, want %s", cfg.GetDevice(), DefaultDevice)
	}
	if cfg.GetBaudRate() != DefaultBaudRate {
		t.Errorf("GetBaudRate() = %d, want %d", cfg.GetBaudRate(), DefaultBaudRate)
	}
	if cfg.GetMotorPWM() != DefaultMotorPWM {
		t.Errorf("GetMotorPWM() = %d, want %d", cfg.GetMotorPWM(), DefaultMotorPWM)
	}
	if cfg.GetEndpoint() != DefaultEndpoint {
		t.Errorf("GetEndpoint() = %s, want %s", cfg.GetEndpoint(), DefaultEndpoint)
	}
	if cfg.GetDBPath() != DefaultDBPath {
		t.Errorf("GetDBPath() = %s, want %s", cfg.GetDBPath(), DefaultDBPath)
	}
	if cfg.GetDisableDB() != false {
		t.Errorf("GetDisableDB() = %v, want false", cfg.GetDisableDB())
	}
	if cfg.GetRecordPath() != "" {
		t.Errorf("GetRecordPath() = %q, want empty", cfg.GetRecordPath())
	}
}

func TestLoadCaptureConfig(t *testing.T) {
	// Create temporary directory
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	// Write a partial config; untouched fields keep their defaults
	testJSON := `{
  "motor_pwm": 512,
  "endpoint": "10.0.0.7:9000",
  "log_interval": "5s",
  "disable_db": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Load the config
	cfg, err := LoadCaptureConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.MotorPWM == nil || *cfg.MotorPWM != 512 {
		t.Errorf("Expected MotorPWM 512, got %v", cfg.MotorPWM)
	}
	if cfg.Endpoint == nil || *cfg.Endpoint != "10.0.0.7:9000" {
		t.Errorf("Expected Endpoint 10.0.0.7:9000, got %v", cfg.Endpoint)
	}
	if cfg.GetLogInterval() != 5*time.Second {
		t.Errorf("GetLogInterval() = %v, want 5s", cfg.GetLogInterval())
	}
	if cfg.GetDisableDB() != true {
		t.Errorf("GetDisableDB() = %v, want true", cfg.GetDisableDB())
	}

	// Omitted fields fall back
	if cfg.GetDevice() != DefaultDevice {
		t.Errorf("GetDevice() = %s, want %s", cfg.GetDevice(), DefaultDevice)
	}
	if cfg.GetListenAddr() != DefaultListenAddr {
		t.Errorf("GetListenAddr() = %s, want %s", cfg.GetListenAddr(), DefaultListenAddr)
	}
}

func TestLoadCaptureConfigMissing(t *testing.T) {
	_, err := LoadCaptureConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadCaptureConfigRequiresJSONExtension(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadCaptureConfig(configPath)
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), ".json") {
		t.Errorf("Expected extension error, got: %v", err)
	}
}

func TestLoadCaptureConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	// Write invalid JSON
	invalidJSON := `{
  "motor_pwm": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadCaptureConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *CaptureConfig
		wantErr bool
	}{
		{
			name:    "empty config is valid",
			cfg:     EmptyCaptureConfig(),
			wantErr: false,
		},
		{
			name:    "defaults are valid",
			cfg:     DefaultCaptureConfig(),
			wantErr: false,
		},
		{
			name:    "motor pwm above range",
			cfg:     &CaptureConfig{MotorPWM: ptrInt(2000)},
			wantErr: true,
		},
		{
			name:    "motor pwm negative",
			cfg:     &CaptureConfig{MotorPWM: ptrInt(-1)},
			wantErr: true,
		},
		{
			name:    "motor pwm zero is allowed",
			cfg:     &CaptureConfig{MotorPWM: ptrInt(0)},
			wantErr: false,
		},
		{
			name:    "zero baud rate",
			cfg:     &CaptureConfig{BaudRate: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "endpoint without port",
			cfg:     &CaptureConfig{Endpoint: ptrString("192.168.1.204")},
			wantErr: true,
		},
		{
			name:    "unparseable log interval",
			cfg:     &CaptureConfig{LogInterval: ptrString("sixty seconds")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetMotorPWMOutOfRangeFallsBack(t *testing.T) {
	cfg := &CaptureConfig{MotorPWM: ptrInt(4096)}
	if got := cfg.GetMotorPWM(); got != DefaultMotorPWM {
		t.Errorf("GetMotorPWM() = %d, want default %d", got, DefaultMotorPWM)
	}
}

func TestGetLogIntervalUnparseableFallsBack(t *testing.T) {
	bad := "not-a-duration"
	cfg := &CaptureConfig{LogInterval: &bad}
	if got := cfg.GetLogInterval(); got != DefaultLogInterval {
		t.Errorf("GetLogInterval() = %v, want default %v", got, DefaultLogInterval)
	}
}
