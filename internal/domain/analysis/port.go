package analysis

import (
	"context"
	"errors"
)

// ErrBackendRejected marks a failure reported by the model service itself
// (bad request, quota, 5xx) as opposed to a transport-level failure.
// Backend implementations wrap their API errors with it so the invoker can
// classify the call status without knowing the client library.
var ErrBackendRejected = errors.New("backend rejected request")

// Backend is one text-generation service instance. Generate blocks until
// the model responds or ctx expires; the returned text is raw and may be
// arbitrarily malformed.
type Backend interface {
	ID() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Repository port for persisting consensus runs.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	LatestByProject(ctx context.Context, projectID string) (*Record, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
}

// Archive stores the raw council output of a run for later inspection.
// Implementations are best-effort; callers log and move on when Put fails.
type Archive interface {
	Put(ctx context.Context, key string, payload []byte) (string, error)
}
