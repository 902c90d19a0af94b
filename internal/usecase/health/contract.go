package health

import "context"

// DBPinger checks key-value store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CompletionChecker checks completion provider availability.
type CompletionChecker interface {
	HealthCheck(ctx context.Context) error
}
