package devtools

import (
	"context"
	"time"

	"pydojo/internal/progress"
)

type Seeder interface {
	Names() []string
	Resolve(name string) (Scenario, bool)
	Seed(ctx context.Context, store progress.Store, name string, now time.Time) (progress.Record, error)
	SetState(ctx context.Context, cacheDir string, state string) error
}

var _ Seeder = (*Manager)(nil)
