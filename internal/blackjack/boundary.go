package blackjack

import "time"

// Scheduler runs a callback once after a delay. Scheduling a key that is
// already pending replaces it, and Cancel is safe for keys that already
// fired or were never scheduled.
type Scheduler interface {
	ScheduleOnce(delay time.Duration, key string, fn func())
	Cancel(key string)
}

// Notifier receives engine events.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

type nopScheduler struct{}

func (nopScheduler) ScheduleOnce(time.Duration, string, func()) {}
func (nopScheduler) Cancel(string)                              {}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// ActionTimeoutKey is the scheduler key for a table's action deadline.
func ActionTimeoutKey(tableID string) string {
	return "bj_action_timeout:" + tableID
}

// NextRoundKey is the scheduler key for a table's next-round delay.
func NextRoundKey(tableID string) string {
	return "bj_next_round:" + tableID
}
