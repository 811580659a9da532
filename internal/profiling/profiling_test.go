package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for range 3 {
		Track("test.op")()
	}
	if got := Calls("test.op"); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if _, ok := Snapshot()["test.op"]; !ok {
		t.Fatal("snapshot missing test.op")
	}
	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatal("ResetFrame should clear totals")
	}
}

func TestTopNOrdering(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["slow"] = entry{total: 4200 * time.Microsecond, calls: 1}
	frameTotals["fast"] = entry{total: 2 * time.Millisecond, calls: 3}
	frameTotals["tiny"] = entry{total: time.Microsecond, calls: 1}
	mu.Unlock()

	got := TopN(2)
	if got != "slow:4.2ms, fast:2ms x3" {
		t.Fatalf("TopN = %q", got)
	}
	if !strings.Contains(TopN(10), "tiny:0ms") {
		t.Fatalf("TopN(10) should list every entry: %q", TopN(10))
	}
	ResetFrame()
}
