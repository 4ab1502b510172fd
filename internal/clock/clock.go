package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so timestamp generation and interval waits
// can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func New() Clock { return systemClock{} }

var Module = fx.Module("clock", fx.Provide(New))
