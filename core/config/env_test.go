package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/supportchat/core/config"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")

	if err := os.WriteFile(first, []byte("SC_TEST_A=one\nSC_TEST_B=first\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(second, []byte("SC_TEST_B=second\nSC_TEST_LIST= a, ,b ,c\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("SC_TEST_C", "process")

	env, err := config.LoadEnv(first, filepath.Join(dir, "missing.env"), second)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"SC_TEST_A", "one"},
		{"SC_TEST_B", "second"},
		{"SC_TEST_C", "process"},
		{"SC_TEST_UNSET", ""},
	}
	for _, tt := range tests {
		if got := env.Get(tt.key); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if got := env.List("SC_TEST_LIST"); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("got list %v", got)
	}
	if got := env.List("SC_TEST_UNSET"); got != nil {
		t.Errorf("got list %v for unset key, want nil", got)
	}
}

func TestEnv_ProcessOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SC_TEST_OVERRIDE=file\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("SC_TEST_OVERRIDE", "process")

	env, err := config.LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := env.Get("SC_TEST_OVERRIDE"); got != "process" {
		t.Errorf("got %q, want process", got)
	}
}

func TestLoadEnv_Unreadable(t *testing.T) {
	dir := t.TempDir()

	if _, err := config.LoadEnv(dir); err == nil {
		t.Error("expected error when the env path is a directory")
	}
}
