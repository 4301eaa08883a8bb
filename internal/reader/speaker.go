package reader

import "time"

// Speaker is the speech-synthesis capability the reader drives.
//
// Implementations are process-wide: CancelAll stops whatever is being spoken,
// no matter who started it. onEnd and onError may be called from any goroutine,
// including synchronously from within Speak. A cancelled utterance should not
// invoke either callback; the Machine ignores stale callbacks regardless.
type Speaker interface {
	Speak(text string, onEnd func(), onError func(error))
	CancelAll()
}

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls. Swapped out in tests.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns a Clock backed by time.AfterFunc.
func SystemClock() Clock {
	return systemClock{}
}
