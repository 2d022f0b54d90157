package main

import (
	"math"
	"testing"

	"github.com/spf13/cobra"
)

func TestParseRange(t *testing.T) {
	name, vals, err := parseRange("t_drain=1:3:3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if name != "t_drain" || len(vals) != 3 || math.Abs(vals[1]-2) > 1e-12 {
		t.Errorf("unexpected range %s %v", name, vals)
	}

	for _, bad := range []string{"t_drain", "t_drain=1:2", "t_drain=a:2:3", "t_drain=1:2:0"} {
		if _, _, err := parseRange(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestBuildConfigFlagsOverridePreset(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	addModelFlags(cmd)
	for flag, v := range map[string]string{"preset": "one_dim", "blobs": "7", "t-drain": "3", "labels": "same"} {
		if err := cmd.Flags().Set(flag, v); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if cfg.Name != "one_dim" || cfg.Grid.Ny != 1 {
		t.Errorf("preset not applied: %+v", cfg.Grid)
	}
	if cfg.NumBlobs != 7 || cfg.Drain.Time != 3 || cfg.Labels.Mode != "same" {
		t.Errorf("flags not applied: blobs=%d drain=%v labels=%s", cfg.NumBlobs, cfg.Drain, cfg.Labels.Mode)
	}
	// Unset flags keep the preset's value, not the flag default.
	if cfg.Grid.Nx != 100 || !cfg.Run.SpeedUp {
		t.Errorf("unset flags should not override the preset")
	}

	if err := cmd.Flags().Set("preset", "missing"); err != nil {
		t.Fatal(err)
	}
	if _, err := buildConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestSetupLogging(t *testing.T) {
	if err := setupLogging("debug"); err != nil {
		t.Errorf("debug level rejected: %v", err)
	}
	if err := setupLogging("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
