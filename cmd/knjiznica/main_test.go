package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelRouterSplitsByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(&levelRouter{
		stdout: slog.NewTextHandler(&stdout, nil),
		stderr: slog.NewTextHandler(&stderr, nil),
	}).With("component", "test")

	logger.Info("book borrowed")
	logger.Warn("slow request")
	logger.Error("ledger inconsistency")
	logger.Debug("hidden")

	if !strings.Contains(stdout.String(), "book borrowed") || !strings.Contains(stdout.String(), "slow request") {
		t.Errorf("expected INFO and WARN on stdout, got %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "ledger inconsistency") {
		t.Error("ERROR must not go to stdout")
	}
	if !strings.Contains(stderr.String(), "ledger inconsistency") || !strings.Contains(stderr.String(), "component=test") {
		t.Errorf("expected ERROR with attrs on stderr, got %q", stderr.String())
	}
	if strings.Contains(stdout.String()+stderr.String(), "hidden") {
		t.Error("DEBUG should be dropped")
	}
	if (&levelRouter{}).Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should not be enabled")
	}
}
