package hilt

import (
	"time"
)

// Observers receive timing and outcome data for metrics. They run
// synchronously on the calling goroutine and must not block.

type ResolveObserver func(key string, duration time.Duration, err error)

type ProvideObserver func(key string)

// ConstructObserver is called once per singleton, with its position in the
// construction record.
type ConstructObserver func(key string, seq uint64)

// StartObserver and StopObserver are called for every recorded component the
// walks visit, including ones without hooks.
type StartObserver func(key string, duration time.Duration, err error)

type StopObserver func(key string, duration time.Duration, err error)
