package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"citemap/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Scholar.BaseURL = "https://scholar.invalid"
	cfgVal.Scholar.MinDelay = 0
	cfgVal.Scholar.MaxDelay = 0
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "error"

	cfg := &cfgVal
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

// rewriteConfig persists mutations made to env.cfg since setup.
func (env *cliTestEnv) rewriteConfig(t *testing.T) {
	t.Helper()
	writeTestConfig(t, env.configPath, env.cfg)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ncache_dir = %q\nlog_dir = %q\nresults_dir = %q\n\n"+
			"[scholar]\nbase_url = %q\napi_key = %q\nmin_delay = %d\nmax_delay = %d\n\n"+
			"[logging]\nformat = %q\nlevel = %q\n",
		cfg.Paths.CacheDir,
		cfg.Paths.LogDir,
		cfg.Paths.ResultsDir,
		cfg.Scholar.BaseURL,
		cfg.Scholar.APIKey,
		cfg.Scholar.MinDelay,
		cfg.Scholar.MaxDelay,
		cfg.Logging.Format,
		cfg.Logging.Level,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
