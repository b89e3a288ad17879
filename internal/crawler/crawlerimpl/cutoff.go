package crawlerimpl

import (
	"math/rand"
	"time"
)

// ScrollPolicy decides how far to scroll and how long to dwell afterwards.
// Both grow with the consecutive empty streak: the longer no new content
// shows up, the harder we push before giving up on the timeline.
type ScrollPolicy struct {
	// BaseDistance is the scroll length in pixels with an empty streak of 0.
	BaseDistance int

	// BackoffStep is added once per consecutive empty cycle.
	BackoffStep int

	// Jitter returns a bounded random pixel offset. Injected so tests can
	// pin it to zero and assert exact distances.
	Jitter func() int

	// BaseDwell is the floor of the post-scroll wait. Zero means the two
	// second default.
	BaseDwell time.Duration
}

// DefaultJitter returns a 100-200px offset drawn from r.
func DefaultJitter(r *rand.Rand) func() int {
	return func() int {
		return 100 + r.Intn(101)
	}
}

// Distance is non-decreasing in emptyStreak for a fixed jitter.
func (p ScrollPolicy) Distance(emptyStreak int) int {
	jitter := 0
	if p.Jitter != nil {
		jitter = p.Jitter()
	}
	return p.BaseDistance + p.BackoffStep*emptyStreak + jitter
}

// WaitTime scales linearly with the scroll distance: a 850px scroll adds
// half a second of dwell on top of the floor.
func (p ScrollPolicy) WaitTime(distance int) time.Duration {
	floor := p.BaseDwell
	if floor == 0 {
		floor = 2000 * time.Millisecond
	}
	return floor + time.Duration(distance)*500*time.Millisecond/850
}
