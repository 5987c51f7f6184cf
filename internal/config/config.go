package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/davelindo/videotoolbox-remote/internal/vterr"
)

// Config holds the complete client configuration for a VTRemote session.
type Config struct {
	Session SessionConfig `yaml:"session"`
	Codec   CodecConfig   `yaml:"codec"`
	Logging LogConfig     `yaml:"logging"`
}

// WireCompression selects optional per-plane payload compression, per
// spec.md section 4.4's "wire_compression" option.
type WireCompression string

const (
	CompressionNone WireCompression = "none"
	CompressionLZ4  WireCompression = "lz4"
	CompressionZstd WireCompression = "zstd" // advertised but rejected at init
)

// WireValue returns the on-wire CONFIGURE option string ("0"/"1"/"2").
func (c WireCompression) WireValue() string {
	switch c {
	case CompressionLZ4:
		return "1"
	case CompressionZstd:
		return "2"
	default:
		return "0"
	}
}

// SessionConfig covers the transport and handshake knobs shared by encoder
// and decoder sessions (spec.md section 6).
type SessionConfig struct {
	Host            string          `yaml:"host"`
	Token           string          `yaml:"token"`
	TimeoutMS       int             `yaml:"timeout_ms"`
	Inflight        int             `yaml:"inflight"` // encoder only
	WireCompression WireCompression `yaml:"wire_compression"`
}

// CodecConfig is the encode option table from spec.md section 4.4. Mode is
// always emitted as a CONFIGURE option and PixFmt selects CONFIGURE's
// pix_fmt byte; every other field is emitted as a CONFIGURE option only
// when its source value is non-default, matching the original's per-field
// "was this touched" guards.
type CodecConfig struct {
	Mode   string `yaml:"mode"` // "encode" | "decode", required
	PixFmt string `yaml:"pix_fmt"`

	Bitrate         int64   `yaml:"bitrate"`
	MaxRate         int64   `yaml:"maxrate"`
	GOP             int     `yaml:"gop"`
	MaxBFrames      int     `yaml:"max_b_frames"`
	Flags           int     `yaml:"flags"`
	GlobalQuality   int     `yaml:"global_quality"`
	QMin            *int    `yaml:"qmin"`
	QMax            *int    `yaml:"qmax"`
	Profile         *int    `yaml:"profile"`
	Level           int     `yaml:"level"`
	Entropy         *int    `yaml:"entropy"`
	AllowSW         bool    `yaml:"allow_sw"`
	RequireSW       bool    `yaml:"require_sw"`
	Realtime        *int    `yaml:"realtime"`
	FramesBefore    bool    `yaml:"frames_before"`
	FramesAfter     bool    `yaml:"frames_after"`
	PrioSpeed       *int    `yaml:"prio_speed"`
	PowerEfficient  *int    `yaml:"power_efficient"`
	SpatialAQ       *int    `yaml:"spatial_aq"`
	MaxRefFrames    int     `yaml:"max_ref_frames"`
	MaxSliceBytes   *int    `yaml:"max_slice_bytes"`
	ConstantBitRate bool    `yaml:"constant_bit_rate"`
	AlphaQuality    float64 `yaml:"alpha_quality"`
	ColorRange      int     `yaml:"color_range"`
	Colorspace      int     `yaml:"colorspace"`
	ColorPrimaries  int     `yaml:"color_primaries"`
	ColorTRC        int     `yaml:"color_trc"`
	SARNum          int     `yaml:"sar_num"`
	SARDen          int     `yaml:"sar_den"`
	A53CC           *int    `yaml:"a53_cc"`
}

// LogConfig selects the slog handler level.
type LogConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// Load reads config from a YAML file, applying defaults for missing values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid values, per spec.md's ranges:
// timeout_ms 100..60000, inflight 1..128.
func (c *Config) Validate() error {
	if c.Session.Host == "" {
		return fmt.Errorf("session.host is required")
	}
	if c.Session.TimeoutMS < 100 || c.Session.TimeoutMS > 60000 {
		return fmt.Errorf("session.timeout_ms must be 100..60000, got %d", c.Session.TimeoutMS)
	}
	if c.Codec.Mode != "encode" && c.Codec.Mode != "decode" {
		return fmt.Errorf("codec.mode must be 'encode' or 'decode', got %q", c.Codec.Mode)
	}
	if c.Codec.Mode == "encode" {
		if c.Session.Inflight < 1 || c.Session.Inflight > 128 {
			return fmt.Errorf("session.inflight must be 1..128, got %d", c.Session.Inflight)
		}
	}
	switch c.Session.WireCompression {
	case CompressionNone, CompressionLZ4, "":
	case CompressionZstd:
		return vterr.New(vterr.NotImplemented, "session.wire_compression=zstd is advertised but not implemented by this client")
	default:
		return fmt.Errorf("session.wire_compression must be none|lz4|zstd, got %q", c.Session.WireCompression)
	}
	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %q", c.Logging.Level)
	}
	return nil
}
