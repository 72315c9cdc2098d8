package health

import "context"

// StoragePinger checks blog store availability.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexCounter reports the similarity index size.
type IndexCounter interface {
	Count(ctx context.Context) (int, error)
}
