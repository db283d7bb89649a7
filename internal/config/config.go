package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	UploadDir     string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxImageBytes int64  `mapstructure:"max_image_bytes" yaml:"max_image_bytes"`

	// SendPerMinute caps how many messages one user may send per minute.
	SendPerMinute int `mapstructure:"send_per_minute" yaml:"send_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "driftchat.db",
		LogLevel:          "info",
		JWTSecret:         "",
		JWTIssuer:         "driftchat",
		JWTAudience:       "driftchat",
		JWTTTL:            7 * 24 * time.Hour,
		UploadDir:         "uploads",
		MaxImageBytes:     5 << 20,
		SendPerMinute:     60,
	}
}
