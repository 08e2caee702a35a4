package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/marketdev/internal/service"
	"go.uber.org/zap"
)

const (
	DefaultSaveDelay    = 2 * time.Second
	DefaultPreviewDelay = 500 * time.Millisecond
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("editor session closed")

// Draft is the editable state of one page.
type Draft struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Draft   bool   `json:"draft"`
}

// Input converts the draft for the page service.
func (d Draft) Input() service.PageInput {
	return service.PageInput{Title: d.Title, Slug: d.Slug, Content: d.Content, Draft: d.Draft}
}

// saveable reports whether auto-save may fire: title, slug and content are all non-empty.
func (d Draft) saveable() bool {
	return strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Slug) != "" && d.Content != ""
}

// EventType names a message sent from a session to its editor.
type EventType string

const (
	EventPreview    EventType = "preview"
	EventSaved      EventType = "saved"
	EventSaveFailed EventType = "save_failed"
	EventInvalid    EventType = "invalid"
	EventValid      EventType = "valid"
	EventHighlight  EventType = "highlight"
)

// Event is emitted to the connected editor.
type Event struct {
	Type      EventType         `json:"type"`
	Seq       uint64            `json:"seq,omitempty"`
	HTML      string            `json:"html,omitempty"`
	Error     string            `json:"error,omitempty"`
	Rejected  bool              `json:"rejected,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Content   string            `json:"content,omitempty"`
	Highlight *Highlight        `json:"highlight,omitempty"`
}

// Saver persists a draft.
type Saver interface {
	SavePage(ctx context.Context, pageID uint, draft Draft) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, pageID uint, draft Draft) error

func (f SaverFunc) SavePage(ctx context.Context, pageID uint, draft Draft) error {
	return f(ctx, pageID, draft)
}

// Options configures a Session.
type Options struct {
	PageID uint
	Saver  Saver
	// Preview 渲染草稿，width 为编辑器预览区的像素宽度，未知时为 0
	Preview      func(d Draft, width float64) string
	Emit         func(Event)
	SaveDelay    time.Duration
	PreviewDelay time.Duration
	Logger       *zap.Logger
}

// Session is one editor's view of one page. Sessions are independent of each
// other and must be closed.
type Session struct {
	opts Options

	mu      sync.Mutex
	draft   Draft
	buffer  *Buffer
	width   float64
	invalid bool
	closed  bool
	save    *Debouncer
	preview *Debouncer
	queue   *SaveQueue
	logger  *zap.Logger
}

// NewSession starts a session on initial.
func NewSession(ctx context.Context, initial Draft, opts Options) *Session {
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = DefaultSaveDelay
	}
	if opts.PreviewDelay <= 0 {
		opts.PreviewDelay = DefaultPreviewDelay
	}
	if opts.Emit == nil {
		opts.Emit = func(Event) {}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		opts:    opts,
		draft:   initial,
		buffer:  NewBuffer(initial.Content),
		save:    NewDebouncer(opts.SaveDelay),
		preview: NewDebouncer(opts.PreviewDelay),
		logger:  logger.With(zap.Uint("page_id", opts.PageID)),
	}
	s.queue = NewSaveQueue(ctx, s.onSaveResult)
	return s
}

// Draft returns the current state.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Change replaces the draft. It always schedules a preview; it schedules a
// save only when the draft validates and has content.
func (s *Session) Change(d Draft) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.draft = d
	s.buffer.Set(d.Content)
	s.mu.Unlock()

	s.schedulePreview(d)

	if err := service.ValidatePage(d.Input()); err != nil {
		s.save.Cancel()
		s.emitInvalid(err)
		return nil
	}
	s.markValid()
	if !d.saveable() {
		s.save.Cancel()
		return nil
	}
	s.save.Trigger(func() { s.submit(d) })
	return nil
}

// SaveNow cancels the pending debounced save and saves the current draft
// immediately. Invalid drafts are not saved.
func (s *Session) SaveNow() (uint64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	d := s.draft
	s.mu.Unlock()

	s.save.Cancel()
	if err := service.ValidatePage(d.Input()); err != nil {
		s.emitInvalid(err)
		return 0, err
	}
	s.markValid()
	return s.submit(d), nil
}

// SetWidth records the width of the editor's preview pane for later renders.
func (s *Session) SetWidth(width float64) {
	if width < 0 {
		width = 0
	}
	s.mu.Lock()
	s.width = width
	s.mu.Unlock()
}

// Resize records a new preview pane width and re-renders the current draft
// without scheduling a save.
func (s *Session) Resize(width float64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if width < 0 {
		width = 0
	}
	s.width = width
	d := s.draft
	s.mu.Unlock()

	s.schedulePreview(d)
	return nil
}

// Insert places text at sel in the content and treats the result as an edit.
func (s *Session) Insert(sel Range, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	_, highlight := s.buffer.InsertAtCursor(sel, text)
	d := s.draft
	d.Content = s.buffer.String()
	s.mu.Unlock()

	s.opts.Emit(Event{Type: EventHighlight, Content: d.Content, Highlight: &highlight})
	return s.Change(d)
}

// Close stops both timers and cancels outstanding saves.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.save.Cancel()
	s.preview.Cancel()
	s.queue.Close()
}

func (s *Session) submit(d Draft) uint64 {
	pageID := s.opts.PageID
	return s.queue.Submit(func(ctx context.Context) error {
		if s.opts.Saver == nil {
			return errors.New("no saver configured")
		}
		return s.opts.Saver.SavePage(ctx, pageID, d)
	})
}

func (s *Session) schedulePreview(d Draft) {
	if s.opts.Preview == nil {
		return
	}
	s.preview.Trigger(func() {
		s.mu.Lock()
		width := s.width
		s.mu.Unlock()
		s.opts.Emit(Event{Type: EventPreview, HTML: s.opts.Preview(d, width)})
	})
}

func (s *Session) onSaveResult(res SaveResult) {
	if res.Err == nil {
		s.opts.Emit(Event{Type: EventSaved, Seq: res.Seq})
		return
	}
	if errors.Is(res.Err, context.Canceled) {
		return
	}

	rejected := IsRejected(res.Err)
	if rejected {
		s.logger.Info("page save rejected", zap.Uint64("seq", res.Seq), zap.Error(res.Err))
	} else {
		s.logger.Error("page save failed", zap.Uint64("seq", res.Seq), zap.Error(res.Err))
	}
	ev := Event{Type: EventSaveFailed, Seq: res.Seq, Error: res.Err.Error(), Rejected: rejected}
	var verr *service.ValidationError
	if errors.As(res.Err, &verr) {
		ev.Fields = verr.Fields
	}
	s.opts.Emit(ev)
}

func (s *Session) emitInvalid(err error) {
	s.mu.Lock()
	s.invalid = true
	s.mu.Unlock()

	ev := Event{Type: EventInvalid, Error: err.Error()}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		ev.Fields = verr.Fields
	}
	s.opts.Emit(ev)
}

// markValid 在草稿从无效恢复为有效时通知编辑器清除字段错误
func (s *Session) markValid() {
	s.mu.Lock()
	was := s.invalid
	s.invalid = false
	s.mu.Unlock()
	if was {
		s.opts.Emit(Event{Type: EventValid})
	}
}
