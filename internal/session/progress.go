package session

// Response-time buckets, in seconds.
const (
	SlowAfter = 3.0
	FastBelow = 1.5
)

// Attempt is one scored answer in a multi-attempt session.
type Attempt struct {
	Correct      bool
	ResponseTime float64
	// AtRisk is the scorer's verdict. It is ignored for correct answers.
	AtRisk bool
}

// Tally accumulates attempt statistics for a session.
type Tally struct {
	Attempts  int
	Correct   int
	AtRisk    int
	Slow      int
	Fast      int
	Moderate  int
	TotalTime float64
}

// Record adds an attempt to the tally.
func (t *Tally) Record(a Attempt) {
	t.Attempts++
	t.TotalTime += a.ResponseTime
	if a.Correct {
		t.Correct++
	} else if a.AtRisk {
		t.AtRisk++
	}
	switch {
	case a.ResponseTime > SlowAfter:
		t.Slow++
	case a.ResponseTime < FastBelow:
		t.Fast++
	default:
		t.Moderate++
	}
}

// AverageTime is the mean response time, or 0 with no attempts.
func (t *Tally) AverageTime() float64 {
	if t.Attempts == 0 {
		return 0
	}
	return t.TotalTime / float64(t.Attempts)
}

// SpeedCategory names the bucket holding a strict majority over each of
// the other two; anything else is "Moderate".
func (t *Tally) SpeedCategory() string {
	switch {
	case t.Slow > t.Fast && t.Slow > t.Moderate:
		return "Slow"
	case t.Fast > t.Slow && t.Fast > t.Moderate:
		return "Fast"
	default:
		return "Moderate"
	}
}
