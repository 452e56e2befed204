package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTraceCommand(t *testing.T) {
	tests := []struct {
		name        string
		traces      []string
		config      string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "single trace",
			traces:      []string{"short1.rep"},
			wantContain: []string{"TRACE", "short1", "Default"},
		},
		{
			name:        "several traces",
			traces:      []string{"short1.rep", "realloc.rep", "churn.rep"},
			config:      "coarse",
			wantContain: []string{"short1", "realloc", "churn", "Coarse"},
		},
		{
			name:    "unknown config",
			traces:  []string{"short1.rep"},
			config:  "huge",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			if tt.config != "" {
				preset = tt.config
			}
			var args []string
			for _, name := range tt.traces {
				args = append(args, testTracePath(t, name))
			}

			out, err := captureOutput(t, func() error {
				return runTrace(context.Background(), args)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runTrace() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\nOutput: %s", want, out)
				}
			}
		})
	}
}

func TestTraceCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true

	out, err := captureOutput(t, func() error {
		return runTrace(context.Background(), []string{testTracePath(t, "short1.rep")})
	})
	if err != nil {
		t.Fatalf("runTrace() error = %v", err)
	}

	var reports []TraceReport
	assertJSON(t, out, &reports)
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if r.Trace != "short1" || r.Ops != 12 {
		t.Errorf("report = %+v", r)
	}
	if r.Utilization <= 0 || r.Utilization > 1 {
		t.Errorf("utilization = %v", r.Utilization)
	}
	if r.Stats.AllocCalls != 6 {
		t.Errorf("AllocCalls = %d, want 6", r.Stats.AllocCalls)
	}
}

func TestTraceCommand_Exhausted(t *testing.T) {
	resetFlags(t)
	traceLimit = 8 << 10

	_, err := captureOutput(t, func() error {
		return runTrace(context.Background(), []string{testTracePath(t, "short1.rep")})
	})
	if err == nil {
		t.Fatal("expected exhaustion error with an 8 KiB region")
	}
}

func TestTraceThenCheck(t *testing.T) {
	resetFlags(t)
	traceRegionFile = filepath.Join(t.TempDir(), "heap.seg")

	_, err := captureOutput(t, func() error {
		return runTrace(context.Background(), []string{testTracePath(t, "realloc.rep")})
	})
	if err != nil {
		t.Fatalf("runTrace() error = %v", err)
	}

	out, err := captureOutput(t, func() error {
		return runCheck([]string{traceRegionFile})
	})
	if err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	if !strings.Contains(out, "OK") || !strings.Contains(out, "in 0 blocks") {
		t.Errorf("unexpected check output:\n%s", out)
	}

	jsonOut = true
	out, err = captureOutput(t, func() error {
		return runCheck([]string{traceRegionFile})
	})
	if err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	var rep CheckReport
	assertJSON(t, out, &rep)
	if rep.LiveBlocks != 0 || rep.FreeBlocks != 1 {
		t.Errorf("check report = %+v", rep)
	}
}

func TestTraceCommand_RegionFileNeedsOneTrace(t *testing.T) {
	resetFlags(t)
	traceRegionFile = filepath.Join(t.TempDir(), "heap.seg")

	err := runTrace(context.Background(), []string{
		testTracePath(t, "short1.rep"),
		testTracePath(t, "realloc.rep"),
	})
	if err == nil {
		t.Fatal("expected an error for two traces with --region-file")
	}
}

func TestCheck_NotARegion(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "garbage.seg")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a region ", 100)), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := captureOutput(t, func() error {
		return runCheck([]string{path})
	})
	if err == nil {
		t.Fatal("expected an error for a non-region file")
	}
}
