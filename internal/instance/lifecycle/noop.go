package lifecycle

import (
	"context"
	"sync/atomic"

	"sbos/internal/instance"
)

// Noop starts nothing. Applications are expected to be run externally with
// the key returned by registration.
type Noop struct {
	next atomic.Int64
}

func (n *Noop) Start(context.Context, string, string, string) (instance.Handle, error) {
	return instance.Handle{PID: -int(n.next.Add(1))}, nil
}

func (n *Noop) Stop(context.Context, instance.Handle) error {
	return nil
}
