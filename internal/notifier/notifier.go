// Package notifier delivers planner messages to the user.
package notifier

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=mocks/mock.go
type Notifier interface {
	// Send delivers a message with a bold title and a plain body.
	Send(ctx context.Context, title, body string) error
}
