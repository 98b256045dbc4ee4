package server

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		env     map[string]string
		name    string
		args    []string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			want: Config{
				Addr: DefaultAddr, DBPath: DefaultDBPath, LogLevel: "info", LogFormat: "text",
				WriteRate: DefaultWriteRate, WriteWindow: DefaultWriteWindow,
			},
		},
		{
			name: "env overrides default",
			env:  map[string]string{"LIFTLOG_DB": "/var/lib/liftlog.db", "LIFTLOG_LOG_FORMAT": "json"},
			want: Config{
				Addr: DefaultAddr, DBPath: "/var/lib/liftlog.db", LogLevel: "info", LogFormat: "json",
				WriteRate: DefaultWriteRate, WriteWindow: DefaultWriteWindow,
			},
		},
		{
			name: "flag overrides env",
			env:  map[string]string{"LIFTLOG_ADDR": ":9000"},
			args: []string{"-addr", ":9100", "-write-rate", "0", "-write-window", "10s"},
			want: Config{
				Addr: ":9100", DBPath: DefaultDBPath, LogLevel: "info", LogFormat: "text",
				WriteRate: 0, WriteWindow: 10 * time.Second,
			},
		},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: true},
		{name: "negative rate", args: []string{"-write-rate", "-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string { return tt.env[key] }

			cfg, err := ParseConfig("liftlog-server", tt.args, getenv)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := Config{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = Config{LogLevel: "loud"}.NewLogger(&buf)
	assert.Error(t, err)
	_, err = Config{LogLevel: "info", LogFormat: "xml"}.NewLogger(&buf)
	assert.Error(t, err)
}
