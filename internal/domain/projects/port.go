package projects

import "context"

// Repository port (persistence).
type Repository interface {
	SaveBatch(ctx context.Context, batch []Project) (int, error)
	Get(ctx context.Context, id string) (*Project, error)
	Latest(ctx context.Context, limit int) ([]Project, error)
	Unanalyzed(ctx context.Context, limit int) ([]Project, error)
	MarkAnalyzed(ctx context.Context, id string, score float64, verdict string) error
	Summary(ctx context.Context, sinceDays int) (Summary, error)
}

// Source port: an upstream feed of newly-listed protocols.
type Source interface {
	Name() string
	Discover(ctx context.Context) ([]Project, error)
}
