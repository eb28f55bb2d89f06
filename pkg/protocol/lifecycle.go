package protocol

import "context"

// Service is a long running host component started by a command.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
