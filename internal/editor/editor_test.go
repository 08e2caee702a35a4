package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketdev/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	saves  []Draft
}

func (r *recorder) emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) SavePage(_ context.Context, _ uint, d Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, d)
	return nil
}

func (r *recorder) savedDrafts() []Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Draft(nil), r.saves...)
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestSession(t *testing.T, rec *recorder, saver Saver) *Session {
	t.Helper()
	if saver == nil {
		saver = rec
	}
	s := NewSession(context.Background(), Draft{Title: "Home", Slug: "home"}, Options{
		PageID:       1,
		Saver:        saver,
		Preview: func(d Draft, width float64) string {
			if width > 0 {
				return fmt.Sprintf("<p data-width=%q>%s</p>", strconv.FormatFloat(width, 'f', -1, 64), d.Content)
			}
			return "<p>" + d.Content + "</p>"
		},
		Emit:         rec.emit,
		SaveDelay:    60 * time.Millisecond,
		PreviewDelay: 20 * time.Millisecond,
	})
	t.Cleanup(s.Close)
	return s
}

func TestInsertAtCursor(t *testing.T) {
	b := NewBuffer("<p>héllo</p>")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	inserted, hl := b.InsertAtCursor(Range{Start: 3, End: 8}, "<SiteName></SiteName>")
	assert.Equal(t, "<p><SiteName></SiteName></p>", b.String())
	assert.Equal(t, Range{Start: 3, End: 24}, inserted)
	assert.Equal(t, inserted, hl.Range)
	assert.Equal(t, now.Add(3*time.Second), hl.ExpiresAt)
	assert.True(t, hl.Active(now.Add(2999*time.Millisecond)))
	assert.False(t, hl.Active(now.Add(3*time.Second)))
}

func TestInsertAtCursorClampsSelection(t *testing.T) {
	b := NewBuffer("abc")
	r, _ := b.InsertAtCursor(Range{Start: 10, End: -4}, "X")
	assert.Equal(t, "X", b.String())
	assert.Equal(t, Range{Start: 0, End: 1}, r)

	b = NewBuffer("abc")
	r, _ = b.InsertAtCursor(Range{Start: 3, End: 3}, "d")
	assert.Equal(t, "abcd", b.String())
	assert.True(t, Range{Start: 3, End: 4} == r)
}

func TestDebouncerRunsOnlyLastCall(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls int32
	var last atomic.Value
	for i := 0; i < 5; i++ {
		i := i
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			last.Store(i)
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 4, last.Load())
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	ran := false
	d.Trigger(func() { ran = true })
	assert.True(t, d.Pending())
	assert.True(t, d.Cancel())
	assert.False(t, d.Flush())
	assert.False(t, ran)

	d.Trigger(func() { ran = true })
	assert.True(t, d.Flush())
	assert.True(t, ran)
	assert.False(t, d.Pending())
}

func TestSaveQueueLastSubmissionWins(t *testing.T) {
	var mu sync.Mutex
	var results []SaveResult
	q := NewSaveQueue(context.Background(), func(res SaveResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	})
	defer q.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	var firstCtxErr error
	q.Submit(func(ctx context.Context) error {
		close(started)
		<-release
		firstCtxErr = ctx.Err()
		return nil
	})
	<-started

	var written []string
	write := func(label string) SaveFunc {
		return func(context.Context) error {
			mu.Lock()
			written = append(written, label)
			mu.Unlock()
			return nil
		}
	}
	q.Submit(write("second"))
	last := q.Submit(write("third"))
	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, last, results[0].Seq)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, firstCtxErr, context.Canceled)
	assert.Equal(t, []string{"third"}, written)
}

func TestRapidEditsProduceOneSave(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	for _, content := range []string{"<p>a</p>", "<p>ab</p>", "<p>abc</p>"} {
		require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: content}))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.ofType(EventSaved)) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	saves := rec.savedDrafts()
	require.Len(t, saves, 1)
	assert.Equal(t, "<p>abc</p>", saves[0].Content)

	previews := rec.ofType(EventPreview)
	require.NotEmpty(t, previews)
	assert.Equal(t, "<p><p>abc</p></p>", previews[len(previews)-1].HTML)
}

func TestEmptyContentSkipsAutoSave(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: ""}))
	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, rec.savedDrafts())
}

func TestInvalidDraftBlocksSave(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "Invalid Slug!", Content: "<p>x</p>"}))
	invalid := rec.ofType(EventInvalid)
	require.Len(t, invalid, 1)
	assert.Contains(t, invalid[0].Fields, "slug")

	_, err := s.SaveNow()
	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, rec.savedDrafts())
	assert.Equal(t, "Invalid Slug!", s.Draft().Slug)
}

func TestFixedDraftClearsFieldErrors(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: "<p>x</p>"}))
	assert.Empty(t, rec.ofType(EventValid), "already valid drafts should not emit valid")

	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "Bad Slug", Content: "<p>x</p>"}))
	require.Len(t, rec.ofType(EventInvalid), 1)

	// 内容为空时不会自动保存，但字段错误仍然需要清除
	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: ""}))
	valid := rec.ofType(EventValid)
	require.Len(t, valid, 1)
	assert.Empty(t, valid[0].Fields)

	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: "<p>y</p>"}))
	assert.Len(t, rec.ofType(EventValid), 1)
}

func TestResizeRerendersPreviewAtWidth(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	s.SetWidth(800)
	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: "a"}))
	require.Eventually(t, func() bool { return len(rec.ofType(EventPreview)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, `<p data-width="800">a</p>`, rec.ofType(EventPreview)[0].HTML)

	require.NoError(t, s.Resize(640))
	require.Eventually(t, func() bool { return len(rec.ofType(EventPreview)) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, `<p data-width="640">a</p>`, rec.ofType(EventPreview)[1].HTML)

	s.Close()
	assert.ErrorIs(t, s.Resize(100), ErrSessionClosed)
}

func TestSaveNowCancelsPendingSave(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: "<p>now</p>"}))
	_, err := s.SaveNow()
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(rec.ofType(EventSaved)) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	assert.Len(t, rec.savedDrafts(), 1)
}

func TestSaveFailuresAreDistinguished(t *testing.T) {
	rec := &recorder{}
	calls := 0
	saver := SaverFunc(func(context.Context, uint, Draft) error {
		calls++
		if calls == 1 {
			return &RejectedError{Err: service.ErrSlugTaken}
		}
		return errors.New("database is locked")
	})
	s := newTestSession(t, rec, saver)

	_, err := s.SaveNow()
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.ofType(EventSaveFailed)) == 1 }, time.Second, 5*time.Millisecond)

	_, err = s.SaveNow()
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.ofType(EventSaveFailed)) == 2 }, time.Second, 5*time.Millisecond)

	failures := rec.ofType(EventSaveFailed)
	assert.True(t, failures[0].Rejected)
	assert.Contains(t, failures[0].Error, "slug already used")
	assert.False(t, failures[1].Rejected)
	assert.Empty(t, rec.ofType(EventSaved))
}

func TestInsertEmitsHighlightAndSchedulesSave(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)

	require.NoError(t, s.Insert(Range{}, "<Tiers></Tiers>"))
	highlights := rec.ofType(EventHighlight)
	require.Len(t, highlights, 1)
	assert.Equal(t, Range{Start: 0, End: 15}, highlights[0].Highlight.Range)

	require.Eventually(t, func() bool { return len(rec.savedDrafts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "<Tiers></Tiers>", rec.savedDrafts()[0].Content)
}

func TestClosedSessionRejectsChanges(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, rec, nil)
	require.NoError(t, s.Change(Draft{Title: "Home", Slug: "home", Content: "<p>x</p>"}))
	s.Close()
	s.Close()

	assert.ErrorIs(t, s.Change(Draft{}), ErrSessionClosed)
	_, err := s.SaveNow()
	assert.ErrorIs(t, err, ErrSessionClosed)

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, rec.savedDrafts())
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode("Code")
	require.NoError(t, err)
	assert.True(t, mode.ShowsCode())
	assert.False(t, mode.ShowsPreview())

	mode, err = ParseViewMode("")
	require.NoError(t, err)
	assert.Equal(t, ViewSplit, mode)
	assert.True(t, mode.ShowsCode() && mode.ShowsPreview())

	_, err = ParseViewMode("fullscreen")
	assert.Error(t, err)
}
