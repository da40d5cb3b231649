package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/pro-power/polishr-sub001/internal/middleware"
	"github.com/pro-power/polishr-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// DedupWindow is the trailing window within which repeat views from the
// same visitor are not counted again.
const DedupWindow = 24 * time.Hour

// asyncTimeout bounds detached recording work so abandoned requests
// cannot pin goroutines.
const asyncTimeout = 5 * time.Second

// RequestMeta carries the request attributes persisted with every
// analytics event.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referer   string
}

// MetaFromRequest extracts analytics metadata from an inbound request.
// Values are copied out of fasthttp's reusable buffers so the meta stays
// valid on goroutines that outlive the handler.
func MetaFromRequest(c *fiber.Ctx) RequestMeta {
	return RequestMeta{
		IP:        utils.CopyString(c.IP()),
		UserAgent: utils.CopyString(c.Get("User-Agent")),
		Referer:   utils.CopyString(c.Get("Referer")),
	}
}

// EventStore is the persistence surface the recorder needs. The
// repository layer satisfies it.
type EventStore interface {
	HasViewSince(ctx context.Context, userID uint, visitorID string, since time.Time) (bool, error)
	CreateView(ctx context.Context, view *models.ProfileView) error
	CreateClick(ctx context.Context, click *models.ProjectClick) error
	IncrementClickCount(ctx context.Context, projectID uint) error
}

// Recorder writes analytics events. All operations are best-effort:
// failures are logged and never surfaced to the primary request path.
type Recorder struct {
	store  EventStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder returns a Recorder backed by the given event store.
func NewRecorder(store EventStore) *Recorder {
	return &Recorder{
		store:  store,
		logger: middleware.Logger,
		now:    time.Now,
	}
}

// RecordProfileView records a view of the given user's profile unless
// the same visitor already produced one within the trailing dedup
// window. The check-then-insert is not atomic: concurrent identical
// requests may both insert, which is accepted for a display heuristic.
func (r *Recorder) RecordProfileView(ctx context.Context, userID uint, meta RequestMeta) error {
	visitorID := Fingerprint(meta.IP, meta.UserAgent)

	seen, err := r.store.HasViewSince(ctx, userID, visitorID, r.now().Add(-DedupWindow))
	if err != nil {
		return err
	}
	if seen {
		ViewsDeduplicated.Inc()
		return nil
	}

	view := &models.ProfileView{
		UserID:      userID,
		VisitorID:   visitorID,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
		Referer:     meta.Referer,
		DeviceType:  DeviceType(meta.UserAgent),
		BrowserType: BrowserType(meta.UserAgent),
	}
	if err := r.store.CreateView(ctx, view); err != nil {
		return err
	}
	ViewsRecorded.Inc()
	return nil
}

// RecordProfileViewAsync fires RecordProfileView on a detached goroutine
// with its own timeout context. Errors and panics are logged and
// discarded so the caller's response is never failed or delayed.
func (r *Recorder) RecordProfileViewAsync(userID uint, meta RequestMeta) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("profile view recording panicked", slog.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := r.RecordProfileView(ctx, userID, meta); err != nil {
			EventsDropped.WithLabelValues("view").Inc()
			r.logger.Error("failed to record profile view",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// RecordProjectClick unconditionally inserts a click event, then bumps
// the project's denormalized counter. If the increment fails after the
// insert succeeds the counter under-reports by one; the event log is
// the source of truth and RecomputeClickCount corrects drift.
func (r *Recorder) RecordProjectClick(ctx context.Context, projectID uint, clickType string, meta RequestMeta) error {
	click := &models.ProjectClick{
		ProjectID:   projectID,
		VisitorID:   Fingerprint(meta.IP, meta.UserAgent),
		ClickType:   clickType,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
		Referer:     meta.Referer,
		DeviceType:  DeviceType(meta.UserAgent),
		BrowserType: BrowserType(meta.UserAgent),
	}
	if err := r.store.CreateClick(ctx, click); err != nil {
		EventsDropped.WithLabelValues("click").Inc()
		return err
	}
	ClicksRecorded.WithLabelValues(clickType).Inc()

	if err := r.store.IncrementClickCount(ctx, projectID); err != nil {
		// Counter drift, not data loss. Logged and left to reconciliation.
		r.logger.Warn("click recorded but counter increment failed",
			slog.Uint64("project_id", uint64(projectID)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
