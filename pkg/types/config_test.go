package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{DataDir: "/tmp/data", StylesDir: "/tmp/styles"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "minimal config is valid",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty data dir returns ErrInvalidConfig",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty styles dir returns ErrInvalidConfig",
			mutate:  func(c *Config) { c.StylesDir = "" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "replace mode is valid",
			mutate:  func(c *Config) { c.ApplyMode = ApplyReplace },
			wantErr: nil,
		},
		{
			name:    "unknown mode returns ErrInvalidMode",
			mutate:  func(c *Config) { c.ApplyMode = "merge" },
			wantErr: ErrInvalidMode,
		},
		{
			name:    "upper-case log level is accepted",
			mutate:  func(c *Config) { c.LogLevel = "DEBUG" },
			wantErr: nil,
		},
		{
			name:    "unknown log level returns ErrInvalidConfig",
			mutate:  func(c *Config) { c.LogLevel = "chatty" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative current image returns ErrInvalidConfig",
			mutate:  func(c *Config) { c.CurrentImage = -1 },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
