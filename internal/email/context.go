package email

import (
	"context"
	"time"
)

func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// Keep request values (logger) but not the request's cancellation.
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
