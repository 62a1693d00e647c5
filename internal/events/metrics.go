package events

import (
	"context"

	"github.com/mandi-labs/backend-mandi/internal/obs"
)

// MetricsNotifier counts emitted events per topic. It never fails, so a
// metrics outage cannot surface as a notifier error.
type MetricsNotifier struct{}

// Notify implements Notifier.
func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	if obs.DomainEventTotal != nil {
		obs.DomainEventTotal.WithLabelValues(event.Topic).Inc()
	}
	return nil
}
