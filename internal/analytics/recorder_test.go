package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pro-power/polishr-sub001/internal/middleware"
	"github.com/pro-power/polishr-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventStoreStub struct {
	mu sync.Mutex

	hasViewSinceFn func(ctx context.Context, userID uint, visitorID string, since time.Time) (bool, error)
	incrementFn    func(ctx context.Context, projectID uint) error

	views  []*models.ProfileView
	clicks []*models.ProjectClick
}

func (s *eventStoreStub) HasViewSince(ctx context.Context, userID uint, visitorID string, since time.Time) (bool, error) {
	if s.hasViewSinceFn != nil {
		return s.hasViewSinceFn(ctx, userID, visitorID, since)
	}
	return false, nil
}

func (s *eventStoreStub) CreateView(_ context.Context, view *models.ProfileView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, view)
	return nil
}

func (s *eventStoreStub) CreateClick(_ context.Context, click *models.ProjectClick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, click)
	return nil
}

func (s *eventStoreStub) IncrementClickCount(ctx context.Context, projectID uint) error {
	if s.incrementFn != nil {
		return s.incrementFn(ctx, projectID)
	}
	return nil
}

func newTestRecorder(store EventStore) *Recorder {
	return &Recorder{store: store, logger: middleware.Logger, now: time.Now}
}

func TestRecordProfileView_NewVisitor(t *testing.T) {
	t.Parallel()

	store := &eventStoreStub{}
	rec := newTestRecorder(store)

	meta := RequestMeta{IP: "1.2.3.4", UserAgent: "Mozilla/5.0 (iPhone) Mobile Safari", Referer: "https://news.site"}
	require.NoError(t, rec.RecordProfileView(context.Background(), 7, meta))

	require.Len(t, store.views, 1)
	view := store.views[0]
	assert.Equal(t, uint(7), view.UserID)
	assert.Equal(t, Fingerprint("1.2.3.4", meta.UserAgent), view.VisitorID)
	assert.Equal(t, DeviceMobile, view.DeviceType)
	assert.Equal(t, BrowserSafari, view.BrowserType)
	assert.Equal(t, "https://news.site", view.Referer)
}

func TestRecordProfileView_DedupWithinWindow(t *testing.T) {
	t.Parallel()

	store := &eventStoreStub{
		hasViewSinceFn: func(_ context.Context, _ uint, _ string, _ time.Time) (bool, error) {
			return true, nil
		},
	}
	rec := newTestRecorder(store)

	err := rec.RecordProfileView(context.Background(), 7, RequestMeta{IP: "1.2.3.4", UserAgent: "ua"})
	require.NoError(t, err)
	assert.Empty(t, store.views, "a repeat visitor within the window records nothing")
}

func TestRecordProfileView_DedupWindowBound(t *testing.T) {
	t.Parallel()

	var gotSince time.Time
	store := &eventStoreStub{
		hasViewSinceFn: func(_ context.Context, _ uint, _ string, since time.Time) (bool, error) {
			gotSince = since
			return false, nil
		},
	}
	rec := newTestRecorder(store)
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	require.NoError(t, rec.RecordProfileView(context.Background(), 1, RequestMeta{IP: "a", UserAgent: "b"}))
	assert.Equal(t, fixed.Add(-DedupWindow), gotSince)
}

func TestRecordProfileView_StoreError(t *testing.T) {
	t.Parallel()

	store := &eventStoreStub{
		hasViewSinceFn: func(_ context.Context, _ uint, _ string, _ time.Time) (bool, error) {
			return false, errors.New("db down")
		},
	}
	rec := newTestRecorder(store)

	err := rec.RecordProfileView(context.Background(), 1, RequestMeta{IP: "a", UserAgent: "b"})
	assert.Error(t, err)
}

func TestRecordProjectClick(t *testing.T) {
	t.Parallel()

	var incremented []uint
	store := &eventStoreStub{
		incrementFn: func(_ context.Context, projectID uint) error {
			incremented = append(incremented, projectID)
			return nil
		},
	}
	rec := newTestRecorder(store)

	meta := RequestMeta{IP: "5.6.7.8", UserAgent: "Mozilla/5.0 Chrome/124.0 Safari/537.36"}
	require.NoError(t, rec.RecordProjectClick(context.Background(), 42, models.ClickTypeDemo, meta))

	require.Len(t, store.clicks, 1)
	assert.Equal(t, uint(42), store.clicks[0].ProjectID)
	assert.Equal(t, models.ClickTypeDemo, store.clicks[0].ClickType)
	assert.Equal(t, []uint{42}, incremented)
}

func TestRecordProjectClick_IncrementFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := &eventStoreStub{
		incrementFn: func(_ context.Context, _ uint) error {
			return errors.New("counter unavailable")
		},
	}
	rec := newTestRecorder(store)

	// The click event is the source of truth; counter drift is tolerated.
	err := rec.RecordProjectClick(context.Background(), 42, models.ClickTypeRepo, RequestMeta{IP: "a", UserAgent: "b"})
	require.NoError(t, err)
	assert.Len(t, store.clicks, 1)
}
