package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ehr/anesthesia/internal/config"
	"github.com/ehr/anesthesia/internal/platform/snapshot"
)

func runCalc(t *testing.T, args ...string) map[string]interface{} {
	t.Helper()
	cmd := calcCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("calc %v: %v", args, err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	return got
}

func TestCalc_BMI(t *testing.T) {
	got := runCalc(t, "bmi", "--weight", "70", "--height", "70")
	if got["bmi"] != 22.1 || got["category"] != "Normal" {
		t.Errorf("unexpected output %v", got)
	}
}

func TestCalc_Weight(t *testing.T) {
	got := runCalc(t, "weight", "--value", "165", "--from", "lbs", "--to", "kg")
	if got["value"] != 74.8 || got["unit"] != "kg" {
		t.Errorf("unexpected output %v", got)
	}
}

func TestCalc_WeightRejectsUnknownUnit(t *testing.T) {
	cmd := calcCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"weight", "--value", "1", "--from", "st"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestCalc_Age(t *testing.T) {
	got := runCalc(t, "age", "--dob", "2000-06-15", "--on", "2024-06-14")
	if got["age"] != float64(23) {
		t.Errorf("unexpected output %v", got)
	}
}

func TestCalc_NPO(t *testing.T) {
	got := runCalc(t, "npo", "--hours", "10")
	if got["isValid"] != true || got["warning"] != "NPO time (10h) exceeds recommended maximum (8h)" {
		t.Errorf("unexpected output %v", got)
	}
}

func TestCalc_Aldrete(t *testing.T) {
	got := runCalc(t, "aldrete", "--vitals", "2", "--ambulation", "2", "--nv", "2", "--pain", "1", "--consciousness", "1", "--color", "1")
	if got["total"] != float64(9) || got["isReadyForDischarge"] != true {
		t.Errorf("unexpected output %v", got)
	}
}

func TestNewSnapshotBackend(t *testing.T) {
	ctx := context.Background()

	b, closeFn, err := newSnapshotBackend(ctx, &config.Config{SnapshotBackend: config.SnapshotMemory}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if _, ok := b.(*snapshot.MemoryBackend); !ok {
		t.Errorf("expected memory backend, got %T", b)
	}

	if _, _, err := newSnapshotBackend(ctx, &config.Config{SnapshotBackend: config.SnapshotPostgres}, nil); err == nil {
		t.Error("expected error for postgres backend without a pool")
	}
	if _, _, err := newSnapshotBackend(ctx, &config.Config{SnapshotBackend: "disk"}, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}
