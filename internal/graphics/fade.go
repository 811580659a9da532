package graphics

import "time"

// crossFade tracks one LOD transition. A zero duration completes at once.
type crossFade struct {
	start    time.Time
	duration time.Duration
}

// progress returns how far the new mesh has faded in, in [0, 1].
func (f crossFade) progress(now time.Time) float32 {
	if f.duration <= 0 {
		return 1
	}
	p := float32(now.Sub(f.start)) / float32(f.duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (f crossFade) done(now time.Time) bool {
	return f.progress(now) >= 1
}
