package logger

import (
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config is valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "debug config is valid",
			config:  DebugConfig(),
			wantErr: false,
		},
		{
			name:    "invalid level",
			config:  &Config{Level: "loud", Format: TextFormat, Output: StderrOutput},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  &Config{Level: InfoLevel, Format: "xml", Output: StderrOutput},
			wantErr: true,
		},
		{
			name:    "invalid output",
			config:  &Config{Level: InfoLevel, Format: TextFormat, Output: "syslog"},
			wantErr: true,
		},
		{
			name:    "file output without path",
			config:  &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(nil)
	if err != nil {
		t.Fatalf("NewLogger(nil) returned error: %v", err)
	}
	if l == nil {
		t.Fatal("expected logger instance")
	}

	if _, err := NewLogger(&Config{Level: "nope"}); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestLoggerChaining(t *testing.T) {
	l := Nop()

	chained := l.WithComponent("matcher").
		WithField("offer_code", "ABC123").
		WithFields(Fields{"sailings": 4})

	if chained == nil {
		t.Fatal("expected chained logger")
	}

	// Must not panic when emitting through a chained entry.
	chained.Debug("tier evaluated")
	chained.Infof("matched %d sailings", 4)
}

func TestGlobalLogger(t *testing.T) {
	orig := GetGlobalLogger()
	defer SetGlobalLogger(orig)

	replacement := Nop()
	SetGlobalLogger(replacement)

	if GetGlobalLogger() != replacement {
		t.Error("expected global logger to be replaced")
	}
}
