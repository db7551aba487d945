package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Sender delivers text back to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, markdown bool) error
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Pipeline      Pipeline
	Sender        Sender
	Greeting      string
	LinkLabel     string
	MaxConcurrent int
	MaxPending    int
	Logger        *logrus.Logger
}

const (
	defaultMaxConcurrent = 4
	defaultMaxPending    = 8
)

// Dispatcher runs pipelines for incoming chat messages. Messages of one chat
// are processed one at a time in arrival order; different chats run in
// parallel up to MaxConcurrent.
type Dispatcher struct {
	pipeline   Pipeline
	sender     Sender
	greeting   string
	linkLabel  string
	maxPending int
	slots      *semaphore.Weighted
	logger     *logrus.Logger

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[int64]*session
	closed   bool
}

type session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	pending []string
	running bool
}

// NewDispatcher validates opts and builds a Dispatcher.
func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	if opts.Pipeline == nil {
		return nil, eris.New("pipeline is required")
	}
	if opts.Sender == nil {
		return nil, eris.New("sender is required")
	}

	greeting := strings.TrimSpace(opts.Greeting)
	if greeting == "" {
		greeting = DefaultMessages().Greeting
	}

	linkLabel := strings.TrimSpace(markdownEntities.Replace(opts.LinkLabel))
	if linkLabel == "" {
		linkLabel = DefaultMessages().SearchLink
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	maxPending := opts.MaxPending
	if maxPending <= 0 {
		maxPending = defaultMaxPending
	}

	root, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		pipeline:   opts.Pipeline,
		sender:     opts.Sender,
		greeting:   greeting,
		linkLabel:  linkLabel,
		maxPending: maxPending,
		slots:      semaphore.NewWeighted(int64(maxConcurrent)),
		logger:     opts.Logger,
		root:       root,
		cancel:     cancel,
		sessions:   make(map[int64]*session),
	}, nil
}

// OnTextMessage queues text for chatID. It never blocks on the pipeline.
func (d *Dispatcher) OnTextMessage(_ context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	s, ok := d.sessions[chatID]
	if !ok {
		ctx, cancel := context.WithCancel(d.root)
		s = &session{ctx: ctx, cancel: cancel}
		d.sessions[chatID] = s
	}

	if len(s.pending) >= d.maxPending {
		d.logWarn(logrus.Fields{"chat_id": chatID, "pending": len(s.pending)}, "chat queue full, dropping message")
		return
	}

	s.pending = append(s.pending, text)
	if !s.running {
		s.running = true
		d.wg.Add(1)
		go d.drain(chatID, s)
	}
}

// OnStartCommand sends the greeting.
func (d *Dispatcher) OnStartCommand(ctx context.Context, chatID int64) {
	if err := d.sender.SendText(ctx, chatID, d.greeting, false); err != nil {
		d.logError(logrus.Fields{"chat_id": chatID}, err, "sending greeting")
	}
}

// OnStopCommand tears the chat session down: the running pipeline is
// cancelled, queued messages are dropped and nothing more is sent.
func (d *Dispatcher) OnStopCommand(_ context.Context, chatID int64) {
	d.mu.Lock()
	s, ok := d.sessions[chatID]
	if ok {
		delete(d.sessions, chatID)
		s.pending = nil
	}
	d.mu.Unlock()

	if ok {
		s.cancel()
	}
}

// Close cancels every session and waits for running pipelines to return.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.sessions = make(map[int64]*session)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) drain(chatID int64, s *session) {
	defer d.wg.Done()

	for {
		text, ok := d.next(chatID, s)
		if !ok {
			return
		}
		d.process(s.ctx, chatID, text)
	}
}

// next pops the oldest pending message. When the queue is empty or the session
// was cancelled the session is retired.
func (d *Dispatcher) next(chatID int64, s *session) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.ctx.Err() != nil || len(s.pending) == 0 {
		s.running = false
		s.pending = nil
		if d.sessions[chatID] == s {
			delete(d.sessions, chatID)
		}
		s.cancel()
		return "", false
	}

	text := s.pending[0]
	s.pending = s.pending[1:]
	return text, true
}

func (d *Dispatcher) process(ctx context.Context, chatID int64, text string) {
	if err := d.slots.Acquire(ctx, 1); err != nil {
		return
	}
	result := d.pipeline.Run(ctx, text)
	d.slots.Release(1)

	if ctx.Err() != nil {
		return
	}

	message, markdown := renderResult(result, d.linkLabel)
	if err := d.sender.SendText(ctx, chatID, message, markdown); err != nil {
		d.logError(logrus.Fields{"chat_id": chatID, "result": result.Kind.String()}, err, "sending pipeline result")
	}
}

// markdownEntities strips the characters that open an entity in Telegram's
// legacy Markdown.
var markdownEntities = strings.NewReplacer("_", "", "*", "", "`", "", "[", "", "]", "")

// renderResult turns a Result into chat text. Replies keep the model's
// Markdown and get the storefront search link appended as an inline link,
// so the underscores in its query never reach the Markdown parser.
func renderResult(result Result, linkLabel string) (string, bool) {
	if !result.IsReply() {
		return result.Text, false
	}
	if result.AuxiliaryLink == "" {
		return result.Text, true
	}
	return result.Text + "\n\n[" + linkLabel + "](" + result.AuxiliaryLink + ")", true
}

func (d *Dispatcher) logWarn(fields logrus.Fields, message string) {
	if d.logger == nil {
		return
	}
	d.logger.WithFields(fields).Warn(message)
}

func (d *Dispatcher) logError(fields logrus.Fields, err error, message string) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
}
