package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// newServeTestCmd builds a fresh serve command so parsed flags do not leak
// between tests.
func newServeTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "serve"}
	addConfigFlags(cmd)
	addServeFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func clearCalcEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CALC_CONFIG", "CALC_PROMPT", "CALC_COLOR", "CALC_LOG_LEVEL", "CALC_HOST", "CALC_BANNER",
		"CALC_MAX_LINE_LENGTH", "CALC_PORT", "CALC_GRPC_PORT", "CALC_HISTORY_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServeConfigLayering(t *testing.T) {
	tomlConfig := "max_line_length = 256\n\n[server]\nport = 9200\nhistory_limit = 7\n"

	tests := []struct {
		name         string
		env          map[string]string
		config       string
		args         []string
		port         int
		grpcPort     int
		host         string
		historyLimit int
		maxLine      int
	}{
		{
			name: "defaults",
			port: 8787, grpcPort: 8788, host: "0.0.0.0", historyLimit: 1000, maxLine: 1024,
		},
		{
			name:   "config file",
			config: tomlConfig,
			port:   9200, grpcPort: 8788, host: "0.0.0.0", historyLimit: 7, maxLine: 256,
		},
		{
			name:   "env over config file",
			config: tomlConfig,
			env:    map[string]string{"CALC_PORT": "9300", "CALC_HISTORY_LIMIT": "5", "CALC_HOST": "127.0.0.1"},
			port:   9300, grpcPort: 8788, host: "127.0.0.1", historyLimit: 5, maxLine: 256,
		},
		{
			name:   "flags over env",
			config: tomlConfig,
			env:    map[string]string{"CALC_PORT": "9300", "CALC_GRPC_PORT": "9301"},
			args:   []string{"--port", "9400", "--host", "localhost", "--max-line-length", "64"},
			port:   9400, grpcPort: 9301, host: "localhost", historyLimit: 7, maxLine: 64,
		},
		{
			name: "history limit left alone without the flag",
			env:  map[string]string{"CALC_HISTORY_LIMIT": "3"},
			port: 8787, grpcPort: 8788, host: "0.0.0.0", historyLimit: 3, maxLine: 1024,
		},
		{
			name: "zero history limit flag means unbounded",
			env:  map[string]string{"CALC_HISTORY_LIMIT": "3"},
			args: []string{"--history-limit", "0"},
			port: 8787, grpcPort: 8788, host: "0.0.0.0", historyLimit: 0, maxLine: 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCalcEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := tt.args
			if tt.config != "" {
				args = append([]string{"--config", writeConfig(t, "calc.toml", tt.config)}, args...)
			}

			cfg, err := serveConfig(newServeTestCmd(t, args...))
			if err != nil {
				t.Fatalf("serveConfig: %v", err)
			}
			if cfg.Server.Port != tt.port || cfg.Server.GRPCPort != tt.grpcPort || cfg.Server.Host != tt.host {
				t.Errorf("server %+v, want port %d grpc %d host %s", cfg.Server, tt.port, tt.grpcPort, tt.host)
			}
			if cfg.Server.HistoryLimit != tt.historyLimit {
				t.Errorf("history limit %d, want %d", cfg.Server.HistoryLimit, tt.historyLimit)
			}
			if cfg.MaxLineLength != tt.maxLine {
				t.Errorf("max line length %d, want %d", cfg.MaxLineLength, tt.maxLine)
			}
		})
	}
}

func TestServeConfigEnvSelectsConfigFile(t *testing.T) {
	clearCalcEnv(t)
	t.Setenv("CALC_CONFIG", writeConfig(t, "calc.yaml", "server:\n  grpcPort: 9500\n"))

	cfg, err := serveConfig(newServeTestCmd(t))
	if err != nil {
		t.Fatalf("serveConfig: %v", err)
	}
	if cfg.Server.GRPCPort != 9500 {
		t.Errorf("grpc port %d, want 9500", cfg.Server.GRPCPort)
	}
}

func TestServeConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"port out of range", nil, []string{"--port", "70000"}},
		{"negative history limit from env", map[string]string{"CALC_HISTORY_LIMIT": "-2"}, nil},
		{"bad env integer", map[string]string{"CALC_GRPC_PORT": "grpc"}, nil},
		{"missing config file", nil, []string{"--config", "does-not-exist.toml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCalcEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := serveConfig(newServeTestCmd(t, tt.args...)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
