package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deixis/actionrun/internal/runner"
)

func TestNewRecord_Status(t *testing.T) {
	res := &runner.Result{RunID: "id-1", Command: "bash", Args: []string{"entrypoint.sh"}, ExitCode: 7}
	tests := []struct {
		name    string
		err     error
		want    Status
		summary string
	}{
		{"success", nil, Success, "exited 0"},
		{"exit", &runner.ExitStatusError{Command: "bash", Code: 7}, Exit, "exited 7"},
		{"signal", &runner.SignaledError{Command: "bash", Signal: "SIGTERM", Number: 15}, Signal, "terminated by SIGTERM"},
		{"launch", &runner.LaunchError{Command: "bash", Err: errors.New("boom")}, Launch, "failed to start: launching bash: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord(res, tt.err)
			if r.Status != tt.want {
				t.Errorf("Status = %q, want %q", r.Status, tt.want)
			}
			if tt.want == Signal {
				r.Signal = "SIGTERM"
			}
			if tt.want == Success {
				r.ExitCode = 0
			}
			if got := r.Summary(); got != tt.summary {
				t.Errorf("Summary = %q, want %q", got, tt.summary)
			}
			if got := r.CommandLine(); got != "bash entrypoint.sh" {
				t.Errorf("CommandLine = %q", got)
			}
		})
	}
}

func TestStatusOf_Wrapped(t *testing.T) {
	err := errors.Join(errors.New("context"), &runner.ExitStatusError{Code: 3})
	if got := StatusOf(err); got != Exit {
		t.Errorf("StatusOf(wrapped) = %q, want %q", got, Exit)
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	s := NewDiskStore(dir)
	rec := &Record{
		ID:       "run-1",
		Command:  "bash",
		Args:     []string{"entrypoint.sh"},
		Status:   Exit,
		ExitCode: 2,
		Started:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
	}
	if err := s.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "run-1.json")); err != nil {
		t.Fatalf("record file missing: %v", err)
	}

	got, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ExitCode != 2 || got.Status != Exit || !got.Started.Equal(rec.Started) || got.Duration != rec.Duration {
		t.Errorf("Load = %+v, want %+v", got, rec)
	}
}

func TestDiskStore_LazyTempDir(t *testing.T) {
	s := NewDiskStore("")
	dir, err := s.Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	again, _ := s.Dir()
	if again != dir {
		t.Errorf("Dir changed from %q to %q", dir, again)
	}
}

func TestDiskStore_LoadInvalid(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	for _, id := range []string{"", "missing", "../escape"} {
		if _, err := s.Load(id); err == nil {
			t.Errorf("Load(%q) succeeded, want error", id)
		}
	}
}

// countingStore records calls so tests can observe delegation.
type countingStore struct {
	records map[string]*Record
	loads   int
}

func (c *countingStore) Save(r *Record) error {
	if c.records == nil {
		c.records = map[string]*Record{}
	}
	c.records[r.ID] = r
	return nil
}

func (c *countingStore) Load(id string) (*Record, error) {
	c.loads++
	if r, ok := c.records[id]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func TestLRUStore_EvictsOldest(t *testing.T) {
	back := &countingStore{}
	s := NewLRUStore(2, back)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(&Record{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	// b and c are cached.
	if _, err := s.Load("c"); err != nil {
		t.Fatal(err)
	}
	if back.loads != 0 {
		t.Errorf("backing loads = %d, want 0", back.loads)
	}

	// a was evicted and must come from the backing store.
	if _, err := s.Load("a"); err != nil {
		t.Fatal(err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1", back.loads)
	}

	// Promoting a evicted b (the least recently used).
	if _, err := s.Load("b"); err != nil {
		t.Fatal(err)
	}
	if back.loads != 2 {
		t.Errorf("backing loads = %d, want 2", back.loads)
	}
}

func TestLRUStore_MissingRecord(t *testing.T) {
	s := NewLRUStore(0, &countingStore{})
	if _, err := s.Load("nope"); err == nil {
		t.Error("expected error for missing record")
	}
}
