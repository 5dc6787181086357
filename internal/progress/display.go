// Package progress turns enhanced management events into progress displays:
// Renderer follows a single session, Aggregator sums any number of them.
package progress

// MbpsDivisor converts bytes/second to the megabits/second figure shown to
// users (2^20 bits).
const MbpsDivisor = 131072

// Display is a progress sink. Totals and positions are in bytes.
type Display interface {
	// SetTotal switches the display to a known total.
	SetTotal(total int64)
	// SetProgress moves the current position.
	SetProgress(n int64)
	// Increment advances the activity counter used while no total is known.
	Increment()
	SetTitle(title string)
	// Finish marks the display complete at 100%.
	Finish()
}
