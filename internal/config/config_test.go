package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Session.TimeoutMS != 5000 {
		t.Errorf("expected default timeout_ms 5000, got %d", cfg.Session.TimeoutMS)
	}
	if cfg.Session.Inflight != 16 {
		t.Errorf("expected default inflight 16, got %d", cfg.Session.Inflight)
	}
	if cfg.Session.WireCompression != CompressionNone {
		t.Errorf("expected default wire_compression none, got %s", cfg.Session.WireCompression)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
	// Default() leaves host empty; Validate() must be run after filling it in.
	cfg.Session.Host = "localhost:9100"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config (with host set) to validate, got %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	yaml := `
session:
  host: "localhost:9100"
  token: "TOKEN"
  timeout_ms: 3000
  inflight: 8
  wire_compression: lz4
codec:
  mode: encode
  bitrate: 2000000
  gop: 60
logging:
  level: "debug"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "vtremote.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Session.Host != "localhost:9100" {
		t.Errorf("expected host localhost:9100, got %s", cfg.Session.Host)
	}
	if cfg.Session.Inflight != 8 {
		t.Errorf("expected inflight 8, got %d", cfg.Session.Inflight)
	}
	if cfg.Session.WireCompression != CompressionLZ4 {
		t.Errorf("expected wire_compression lz4, got %s", cfg.Session.WireCompression)
	}
	if cfg.Codec.Bitrate != 2000000 {
		t.Errorf("expected bitrate 2000000, got %d", cfg.Codec.Bitrate)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/vtremote.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestValidateMissingHost(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing host")
	}
}

func TestValidateTimeoutOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Session.Host = "localhost:9100"
	cfg.Session.TimeoutMS = 99
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for timeout_ms=99")
	}
	cfg.Session.TimeoutMS = 60001
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for timeout_ms=60001")
	}
}

func TestValidateInflightOutOfRangeForEncode(t *testing.T) {
	cfg := Default()
	cfg.Session.Host = "localhost:9100"
	cfg.Codec.Mode = "encode"
	cfg.Session.Inflight = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for inflight=0 on an encoder")
	}
	cfg.Session.Inflight = 129
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for inflight=129 on an encoder")
	}
}

func TestValidateInflightIgnoredForDecode(t *testing.T) {
	cfg := Default()
	cfg.Session.Host = "localhost:9100"
	cfg.Codec.Mode = "decode"
	cfg.Session.Inflight = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("decode mode should not validate inflight, got %v", err)
	}
}

func TestValidateBadMode(t *testing.T) {
	cfg := Default()
	cfg.Session.Host = "localhost:9100"
	cfg.Codec.Mode = "transcode"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown codec.mode")
	}
}

func TestValidateBadWireCompression(t *testing.T) {
	cfg := Default()
	cfg.Session.Host = "localhost:9100"
	cfg.Session.WireCompression = "gzip"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown wire_compression")
	}
}

func TestValidateZstdIsNotImplemented(t *testing.T) {
	cfg := Default()
	cfg.Session.Host = "localhost:9100"
	cfg.Session.WireCompression = CompressionZstd
	err := cfg.Validate()
	if !vterr.Is(err, vterr.NotImplemented) {
		t.Fatalf("expected NotImplemented, got %v", err)
	}
}
