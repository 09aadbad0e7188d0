package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestPersistentFlagsRegistered(t *testing.T) {
	for _, name := range []string{"bundle", "bundle-path", "config", "json"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s not registered", name)
		}
	}
}

func TestCommandFlagDefaults(t *testing.T) {
	tests := []struct {
		command string
		flag    string
		def     string
	}{
		{"apply", "file", "-"},
		{"apply", "write", "false"},
		{"apply", "delete-mode", ""},
		{"check", "strict", "false"},
		{"list", "limit", "0"},
	}

	for _, tt := range tests {
		cmd, _, err := rootCmd.Find([]string{tt.command})
		if err != nil {
			t.Fatalf("command %s not registered: %v", tt.command, err)
		}
		var f *pflag.Flag
		if f = cmd.Flags().Lookup(tt.flag); f == nil {
			t.Errorf("%s: flag --%s not registered", tt.command, tt.flag)
			continue
		}
		if f.DefValue != tt.def {
			t.Errorf("%s --%s default = %q, want %q", tt.command, tt.flag, f.DefValue, tt.def)
		}
	}
}

func TestEveryCommandRegistered(t *testing.T) {
	want := []string{"apply", "bundles", "check", "get", "guide", "init", "list", "mcp", "version"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %s not registered on root", name)
		}
	}
}
