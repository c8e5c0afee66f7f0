package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transport carries one user message to the assistant and returns its reply.
type Transport interface {
	Send(ctx context.Context, text string) (string, error)
}

// Persister stores the full conversation. Failures never reach the user.
type Persister interface {
	SaveHistory(ctx context.Context, messages []Message) error
}

// Option configures a Session.
type Option func(*Session)

// WithPersister enables history persistence after each successful reply.
func WithPersister(p Persister) Option {
	return func(s *Session) { s.persister = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithNotify registers a callback run after every state change. It runs on
// the goroutine that made the change and must not block.
func WithNotify(fn func()) Option {
	return func(s *Session) { s.notify = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// WithPersistTimeout bounds each persistence attempt.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Session) { s.persistTimeout = d }
}

// WithRequestTimeout bounds each chat request. Zero leaves it unbounded.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) { s.requestTimeout = d }
}

// WithGreeting replaces the opening assistant message. An empty greeting
// starts the session with no messages.
func WithGreeting(text string) Option {
	return func(s *Session) { s.greeting = text }
}

// Session is one conversation. Submissions are rejected, not queued, while a
// reply is outstanding, which keeps every reply directly after the message
// that caused it.
type Session struct {
	transport      Transport
	persister      Persister
	logger         *zap.Logger
	notify         func()
	now            func() time.Time
	newID          func() string
	greeting       string
	persistTimeout time.Duration
	requestTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	messages []Message
	awaiting bool
	closed   bool

	wg sync.WaitGroup
}

func NewSession(t Transport, opts ...Option) *Session {
	s := &Session{
		transport:      t,
		logger:         zap.NewNop(),
		now:            time.Now,
		newID:          uuid.NewString,
		greeting:       Greeting,
		persistTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.greeting != "" {
		s.messages = append(s.messages, s.newMessageLocked(s.greeting, SenderAssistant))
	}
	return s
}

// State returns a snapshot of the conversation.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Messages:         slices.Clone(s.messages),
		AwaitingResponse: s.awaiting,
	}
}

// Submit appends a user message and sends it. It reports false, changing
// nothing, when text is blank, a reply is outstanding, or the session is
// closed. The text is sent exactly as given.
func (s *Session) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	if s.closed || s.awaiting {
		s.mu.Unlock()
		return false
	}
	s.messages = append(s.messages, s.newMessageLocked(text, SenderUser))
	s.awaiting = true
	s.wg.Add(1)
	s.mu.Unlock()

	s.changed()
	go s.exchange(text)
	return true
}

func (s *Session) exchange(text string) {
	defer s.wg.Done()

	ctx := s.ctx
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	reply, err := s.send(ctx, text)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var snapshot []Message
	if err != nil {
		s.logger.Warn("chat request failed", zap.Error(err))
		s.messages = append(s.messages, s.newMessageLocked(FallbackNotice, SenderAssistant))
	} else {
		s.messages = append(s.messages, s.newMessageLocked(reply, SenderAssistant))
		if s.persister != nil {
			snapshot = slices.Clone(s.messages)
			s.wg.Add(1)
		}
	}
	s.awaiting = false
	s.mu.Unlock()

	s.changed()
	if snapshot != nil {
		go s.persist(snapshot)
	}
}

func (s *Session) send(ctx context.Context, text string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chat transport panicked: %v", r)
		}
	}()
	return s.transport.Send(ctx, text)
}

func (s *Session) persist(messages []Message) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("chat history persister panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, s.persistTimeout)
	defer cancel()

	if err := s.persister.SaveHistory(ctx, messages); err != nil {
		if s.ctx.Err() != nil {
			s.logger.Debug("chat history save abandoned", zap.Error(err))
			return
		}
		s.logger.Warn("failed to save chat history", zap.Int("messages", len(messages)), zap.Error(err))
		return
	}
	s.logger.Debug("chat history saved", zap.Int("messages", len(messages)))
}

// Close abandons any outstanding request and pending persistence. Later
// submissions are rejected. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Wait blocks until the outstanding request and persistence goroutines have
// returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// newMessageLocked builds a message with an id not yet used in this session.
func (s *Session) newMessageLocked(text string, sender Sender) Message {
	base := s.newID()
	id := base
	for i := 1; s.hasIDLocked(id); i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	return Message{
		ID:        id,
		Text:      text,
		Sender:    sender,
		Timestamp: s.now().UTC().Format(TimestampLayout),
	}
}

func (s *Session) hasIDLocked(id string) bool {
	for _, m := range s.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) changed() {
	if s.notify != nil {
		s.notify()
	}
}
