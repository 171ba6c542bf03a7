package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ALEX_API_BASE", "")
	t.Setenv("ALEX_MIC_DEVICE", "")
	t.Setenv("ALEX_CONFIG_DIR", "")

	cfg := Load("")
	if cfg.APIBase != "http://127.0.0.1:9090" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.MicDevice != "hw:2,0" {
		t.Errorf("MicDevice = %q", cfg.MicDevice)
	}
	if cfg.ConfigDir == "" {
		t.Error("expected a default config dir")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ALEX_API_BASE", "http://10.0.0.5:9090")
	t.Setenv("ALEX_API_TOKEN", "tok")
	t.Setenv("ALEX_MIC_DEVICE", "hw:1,0")
	t.Setenv("ALEX_CONFIG_DIR", "/var/lib/alex")

	cfg := Load("")
	if cfg.APIBase != "http://10.0.0.5:9090" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.APIToken != "tok" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.MicDevice != "hw:1,0" {
		t.Errorf("MicDevice = %q", cfg.MicDevice)
	}
	if cfg.ConfigDir != "/var/lib/alex" {
		t.Errorf("ConfigDir = %q", cfg.ConfigDir)
	}
}
