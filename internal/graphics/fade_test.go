package graphics

import (
	"testing"
	"time"
)

func TestCrossFadeProgress(t *testing.T) {
	start := time.Unix(100, 0)
	f := crossFade{start: start, duration: 400 * time.Millisecond}
	cases := []struct {
		at   time.Duration
		want float32
	}{
		{-time.Second, 0},
		{0, 0},
		{100 * time.Millisecond, 0.25},
		{200 * time.Millisecond, 0.5},
		{400 * time.Millisecond, 1},
		{time.Hour, 1},
	}
	for _, tc := range cases {
		if got := f.progress(start.Add(tc.at)); got != tc.want {
			t.Errorf("progress at %v = %v, want %v", tc.at, got, tc.want)
		}
	}
	if f.done(start.Add(399*time.Millisecond)) || !f.done(start.Add(400*time.Millisecond)) {
		t.Fatal("done boundary wrong")
	}
}

func TestZeroDurationFadeIsImmediate(t *testing.T) {
	f := crossFade{start: time.Now()}
	if f.progress(f.start) != 1 || !f.done(f.start) {
		t.Fatal("zero-length fade should complete immediately")
	}
}
