package resource

import "time"

// Observer is told about every backend round trip of a Resource.
type Observer interface {
	// FetchDone reports a list, attempts is 2 when it was retried.
	FetchDone(key string, attempts int, err error, took time.Duration)
	CommandDone(key, op string, err error, took time.Duration)
	// StaleDiscarded reports a list response dropped because a newer request was issued.
	StaleDiscarded(key string)
}

type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) FetchDone(string, int, error, time.Duration)      {}
func (NopObserver) CommandDone(string, string, error, time.Duration) {}
func (NopObserver) StaleDiscarded(string)                            {}
