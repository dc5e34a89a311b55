package email

import (
	"context"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendFrom(ctx context.Context, recipient, subject, body, sender string) error
}

// UserLookup resolves recipients by user id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (dbgen.User, error)
}
