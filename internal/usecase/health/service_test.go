package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockCounter struct {
	n int
}

func (m *mockCounter) ChunkCount() int { return m.n }

func TestCheck_Healthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockCounter{n: 42})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected healthy, got %s", report.Status)
	}
	if report.Checks["engine"] != CheckOK || report.Checks["database"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
	if report.Chunks != 42 {
		t.Errorf("expected 42 chunks, got %d", report.Chunks)
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockCounter{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("expected degraded, got %s", report.Status)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("expected database error, got %v", report.Checks)
	}
}

func TestCheck_NoDatabaseConfigured(t *testing.T) {
	svc := New(nil, &mockCounter{n: 1})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected healthy without a database, got %s", report.Status)
	}
	if _, ok := report.Checks["database"]; ok {
		t.Error("database check should be absent when not configured")
	}
}
