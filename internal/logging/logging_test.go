package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := map[string]struct {
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		"default": {level: "", want: zapcore.InfoLevel},
		"debug":   {level: "debug", want: zapcore.DebugLevel},
		"upper":   {level: " WARN ", want: zapcore.WarnLevel},
		"invalid": {level: "loud", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			logger, err := New(tc.level)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for level %q", tc.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !logger.Core().Enabled(tc.want) {
				t.Fatalf("expected level %s to be enabled", tc.want)
			}
			if tc.want > zapcore.DebugLevel && logger.Core().Enabled(tc.want-1) {
				t.Fatalf("expected level below %s to be disabled", tc.want)
			}
		})
	}
}
