package config

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			TimeoutMS:       5000,
			Inflight:        16,
			WireCompression: CompressionNone,
		},
		Codec: CodecConfig{
			Mode: "encode",
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
