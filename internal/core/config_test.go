package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConfig_Address(t *testing.T) {
	cfg := &Config{Hostname: "127.0.0.1", Port: 12345}

	addr := cfg.Address()
	expected := "127.0.0.1:12345"
	if diff := cmp.Diff(expected, addr); diff != "" {
		t.Errorf("Address() generated the wrong address; diff:\n%s", diff)
	}
}

func TestDefaultConfig(t *testing.T) {
	def := DefaultConfig()
	if def.MaxConnections != 64 {
		t.Errorf("DefaultConfig() MaxConnections = %d, want 64", def.MaxConnections)
	}
	if def.LogLevel != "info" {
		t.Errorf("DefaultConfig() LogLevel = %s, want info", def.LogLevel)
	}
}
