package forum

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/fansite/forum/internal/models"
)

type metrics struct {
	likeToggles     metric.Int64Counter
	edits           metric.Int64Counter
	editRejections  metric.Int64Counter
	spoilersCleared metric.Int64Counter
}

func newMetrics(m metric.Meter) *metrics {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			return noop.Int64Counter{}
		}
		return c
	}
	return &metrics{
		likeToggles:     counter("forum_like_toggles_total", "Like toggles by target kind and resulting state"),
		edits:           counter("forum_edits_total", "Accepted edits by target kind"),
		editRejections:  counter("forum_edit_rejections_total", "Rejected edits by target kind and reason"),
		spoilersCleared: counter("forum_spoilers_cleared_total", "Expired spoiler tags cleared by the lazy sweep"),
	}
}

func (m *metrics) liked(ctx context.Context, kind models.TargetKind, liked bool) {
	m.likeToggles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.Bool("liked", liked),
	))
}

func (m *metrics) edited(ctx context.Context, kind models.TargetKind) {
	m.edits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func (m *metrics) rejected(ctx context.Context, kind models.TargetKind, err error) {
	m.editRejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("reason", rejectionReason(err)),
	))
}

func (m *metrics) swept(ctx context.Context, kind models.TargetKind, n int64) {
	if n == 0 {
		return
	}
	m.spoilersCleared.Add(ctx, n, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrEditWindowExpired):
		return "window_expired"
	case errors.Is(err, ErrMaxEditsReached):
		return "max_edits"
	case errors.Is(err, ErrNoChange):
		return "no_change"
	case errors.Is(err, ErrEditConflict):
		return "conflict"
	default:
		return "other"
	}
}
