package forum

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fansite/forum/internal/models"
)

// SpoilerLifecycle clears expired spoiler tags lazily, right before reads and
// writes. There is no scheduler: a row nobody touches keeps its stale flag in
// storage until the sweep-spoilers command runs, but served views never show
// an expired spoiler.
type SpoilerLifecycle struct {
	store   Store
	clock   Clock
	logger  *zap.Logger
	metrics *metrics
}

// Sweep clears expired spoilers on the table of kind.
// Failures are logged and swallowed so the surrounding read proceeds.
func (s *SpoilerLifecycle) Sweep(ctx context.Context, kind models.TargetKind) {
	cleared, err := s.store.SweepExpiredSpoilers(ctx, kind, s.clock.Now())
	if err != nil {
		s.logger.Warn("Spoiler sweep failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return
	}
	if cleared > 0 {
		s.logger.Debug("Cleared expired spoilers",
			zap.String("kind", string(kind)),
			zap.Int64("rows", cleared))
		s.metrics.swept(ctx, kind, cleared)
	}
}

// SpoilerActive reports whether a spoiler tag still applies at now
func SpoilerActive(isSpoiler bool, expiresAt *time.Time, now time.Time) bool {
	return isSpoiler && expiresAt != nil && !now.After(*expiresAt)
}

type spoilerFields struct {
	IsSpoiler  bool
	SpoilerFor *string
	ExpiresAt  *time.Time
}

// resolveSpoiler validates a spoiler request and turns a duration into an absolute expiry
func resolveSpoiler(in SpoilerInput, now time.Time, sanitizer *Sanitizer) (spoilerFields, error) {
	if !in.IsSpoiler {
		return spoilerFields{}, nil
	}

	label := sanitizer.Plain(in.SpoilerFor)
	if label == "" {
		return spoilerFields{}, invalid("spoilerFor", "is required for spoilers")
	}
	if len([]rune(label)) > MaxSpoilerForLength {
		return spoilerFields{}, invalid("spoilerFor", "must be at most %d characters", MaxSpoilerForLength)
	}

	latest := now.AddDate(0, 0, MaxSpoilerDays)
	var expiresAt time.Time
	switch {
	case in.SpoilerDurationDays != 0:
		if in.SpoilerDurationDays < 1 || in.SpoilerDurationDays > MaxSpoilerDays {
			return spoilerFields{}, invalid("spoilerDurationDays", "must be between 1 and %d", MaxSpoilerDays)
		}
		expiresAt = now.AddDate(0, 0, in.SpoilerDurationDays)
	case in.SpoilerExpiresAt != nil:
		expiresAt = in.SpoilerExpiresAt.UTC()
		if !expiresAt.After(now) {
			return spoilerFields{}, invalid("spoilerExpiresAt", "must be in the future")
		}
		if expiresAt.After(latest) {
			return spoilerFields{}, invalid("spoilerExpiresAt", "must be within %d days", MaxSpoilerDays)
		}
	default:
		return spoilerFields{}, invalid("spoilerDurationDays", "is required for spoilers")
	}

	return spoilerFields{IsSpoiler: true, SpoilerFor: &label, ExpiresAt: &expiresAt}, nil
}

func (v *TopicView) expireSpoiler(now time.Time) {
	if v.IsSpoiler && !SpoilerActive(v.IsSpoiler, v.SpoilerExpiresAt, now) {
		v.IsSpoiler = false
		v.SpoilerFor = nil
		v.SpoilerExpiresAt = nil
	}
}

func (v *CommentView) expireSpoiler(now time.Time) {
	if v.IsSpoiler && !SpoilerActive(v.IsSpoiler, v.SpoilerExpiresAt, now) {
		v.IsSpoiler = false
		v.SpoilerFor = nil
		v.SpoilerExpiresAt = nil
	}
}
