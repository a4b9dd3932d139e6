// Package dictation runs the hold-to-talk state machine: hotkey down starts
// a capture, hotkey up sends the clip for transcription, and the corrected
// text is shown, copied and typed into the window that had focus.
//
// All transitions happen on the goroutine running Service.Run. Everything
// else communicates with it through Post.
package dictation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dictator/pkg/audio"
	"dictator/pkg/dictionary"
	"dictator/pkg/language"
	"dictator/pkg/observe"
	"dictator/pkg/transcribe"
)

// Overlay texts.
const (
	FailureMessage    = "Transcription failed. Please try again."
	NoSpeechMessage   = "No speech recognized."
	MicrophoneMessage = "Recording failed. Check the microphone."
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDisplay   = 3 * time.Second
	defaultQueueSize = 64
)

var (
	// ErrQueueFull is returned by Post when the command queue has no room.
	ErrQueueFull = errors.New("dictation: command queue full")
	// ErrStopped is returned by Post after Run has returned.
	ErrStopped = errors.New("dictation: service stopped")
)

// Session is one hotkey press: its language, injection target and start
// time. It is owned by the Run goroutine.
type Session struct {
	ID       string
	Language language.Language
	Target   Window
	Started  time.Time
}

// Config wires a Service. Recorder and Transcriber are required.
type Config struct {
	Recorder    Recorder
	Transcriber transcribe.Transcriber
	Dictionary  *dictionary.Dictionary
	Presenter   Presenter
	Clipboard   Clipboard
	Injector    Injector
	Store       LanguageStore

	// Language is active at startup.
	Language language.Language
	// Timeout bounds each transcription call.
	Timeout time.Duration
	// DisplayDuration is how long an overlay message stays up.
	DisplayDuration time.Duration
	QueueSize       int

	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// Service is the dictation state machine.
type Service struct {
	recorder    Recorder
	transcriber transcribe.Transcriber
	dict        *dictionary.Dictionary
	presenter   Presenter
	clipboard   Clipboard
	injector    Injector
	store       LanguageStore
	timeout     time.Duration
	display     time.Duration
	log         *slog.Logger
	metrics     *observe.Metrics

	queue   chan Message
	done    chan struct{}
	started atomic.Bool
	state   atomic.Int32
	wg      sync.WaitGroup

	// Owned by the Run goroutine.
	lang       language.Language
	session    *Session
	cancelCall context.CancelFunc
	overlaySeq uint64
	hideTimer  *time.Timer

	// Callbacks, invoked on the Run goroutine. Set them before Run.
	OnStateChange func(from, to State)
	OnError       func(error)
}

// New creates a Service in the Idle state.
func New(cfg Config) (*Service, error) {
	if cfg.Recorder == nil {
		return nil, fmt.Errorf("dictation: recorder is required")
	}
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("dictation: transcriber is required")
	}
	s := &Service{
		recorder:    cfg.Recorder,
		transcriber: cfg.Transcriber,
		dict:        cfg.Dictionary,
		presenter:   cfg.Presenter,
		clipboard:   cfg.Clipboard,
		injector:    cfg.Injector,
		store:       cfg.Store,
		timeout:     cfg.Timeout,
		display:     cfg.DisplayDuration,
		log:         cfg.Logger,
		metrics:     cfg.Metrics,
		lang:        cfg.Language,
	}
	if s.dict == nil {
		s.dict = dictionary.Default()
	}
	if s.presenter == nil {
		s.presenter = nopPresenter{}
	}
	if s.clipboard == nil {
		s.clipboard = nopClipboard{}
	}
	if s.injector == nil {
		s.injector = nopInjector{}
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.display <= 0 {
		s.display = defaultDisplay
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if !s.lang.Valid() {
		s.lang = language.English
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	s.queue = make(chan Message, size)
	s.done = make(chan struct{})
	return s, nil
}

// State returns the current state. Safe from any goroutine.
func (s *Service) State() State {
	return State(s.state.Load())
}

// Post enqueues m without blocking.
func (s *Service) Post(m Message) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.queue <- m:
		return nil
	default:
		s.log.Warn("command queue full, dropping message", "message", fmt.Sprintf("%T", m))
		return ErrQueueFull
	}
}

// deliver blocks until the loop accepts m or has stopped.
func (s *Service) deliver(m Message) {
	select {
	case s.queue <- m:
	case <-s.done:
	}
}

// Run consumes the command queue until Exit (returns nil) or ctx is done
// (returns ctx.Err()). It may be called once.
func (s *Service) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("dictation: Run called twice")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		close(s.done)
		s.wg.Wait()
	}()

	s.presenter.ShowState(Idle)
	s.presenter.ShowLanguage(s.lang)
	s.log.Info("dictation ready", "language", s.lang, "provider", s.transcriber.Name())

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case m := <-s.queue:
			if _, ok := m.(Exit); ok {
				s.shutdown()
				s.log.Info("dictation stopped")
				return nil
			}
			s.handle(ctx, m)
		}
	}
}

func (s *Service) handle(ctx context.Context, m Message) {
	switch m := m.(type) {
	case HotkeyDown:
		s.hotkeyDown(ctx)
	case HotkeyUp:
		s.hotkeyUp(ctx)
	case transcribed:
		s.finish(m)
	case hideOverlay:
		if m.seq == s.overlaySeq {
			s.presenter.HideMessage()
		}
	case SelectLanguage:
		s.selectLanguage(m.Language)
	case SetDefault:
		s.setDefault()
	default:
		s.log.Warn("unknown message", "message", fmt.Sprintf("%T", m))
	}
}

func (s *Service) hotkeyDown(ctx context.Context) {
	switch s.State() {
	case Recording:
		return
	case Transcribing:
		s.log.Info("hotkey ignored while transcribing", "session", s.session.ID)
		return
	}

	target := s.injector.Capture()
	if err := s.recorder.Start(); err != nil {
		s.log.Error("start recording", "err", err)
		s.report(err)
		s.showMessage(MicrophoneMessage)
		return
	}
	s.session = &Session{
		ID:       uuid.NewString(),
		Language: s.lang,
		Target:   target,
		Started:  time.Now(),
	}
	s.metrics.RecordSession(ctx, s.lang.String())
	s.log.Info("recording started", "session", s.session.ID, "language", s.lang, "target", windowTitle(target))
	s.setState(Recording)
}

func (s *Service) hotkeyUp(ctx context.Context) {
	if s.State() != Recording {
		return
	}
	sess := s.session
	clip, err := s.recorder.Stop()
	if err != nil {
		s.log.Error("stop recording", "session", sess.ID, "err", err)
		s.session = nil
		s.report(err)
		s.showMessage(MicrophoneMessage)
		s.setState(Idle)
		return
	}
	s.setState(Transcribing)
	s.metrics.RecordClip(ctx, clip.Duration)
	s.log.Info("recording stopped", "session", sess.ID, "duration", clip.Duration, "bytes", len(clip.WAV))

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancelCall = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		start := time.Now()
		text, err := s.transcriber.Transcribe(callCtx, clip.WAV, sess.Language)
		s.deliver(transcribed{session: sess, text: text, err: err, elapsed: time.Since(start)})
	}()
}

// finish dispatches a session result and returns to Idle.
func (s *Service) finish(r transcribed) {
	if r.session != s.session {
		s.log.Warn("dropping result for stale session", "session", r.session.ID)
		return
	}
	if s.cancelCall != nil {
		s.cancelCall()
		s.cancelCall = nil
	}
	s.session = nil
	sess := r.session
	provider := s.transcriber.Name()
	ctx := context.Background()

	switch {
	case r.err != nil:
		s.metrics.RecordTranscription(ctx, provider, observe.StatusError, r.elapsed)
		s.log.Warn("transcription failed", "session", sess.ID, "provider", provider, "elapsed", r.elapsed, "err", r.err)
		s.report(r.err)
		s.showMessage(FailureMessage)
	default:
		text := s.dict.Correct(r.text, sess.Language)
		if text == "" {
			s.metrics.RecordTranscription(ctx, provider, observe.StatusEmpty, r.elapsed)
			s.log.Info("no speech recognized", "session", sess.ID, "elapsed", r.elapsed)
			s.showMessage(NoSpeechMessage)
			break
		}
		s.metrics.RecordTranscription(ctx, provider, observe.StatusOK, r.elapsed)
		s.log.Info("transcription complete", "session", sess.ID, "elapsed", r.elapsed, "chars", len(text))
		s.showMessage(text)
		if err := s.clipboard.WriteText(text); err != nil {
			s.log.Warn("write clipboard", "session", sess.ID, "err", err)
		}
		if sess.Target != nil {
			if err := s.injector.Inject(sess.Target, text); err != nil {
				s.log.Warn("inject text", "session", sess.ID, "target", windowTitle(sess.Target), "err", err)
				s.report(err)
			}
		}
	}
	s.setState(Idle)
}

func (s *Service) selectLanguage(lang language.Language) {
	if !lang.Valid() {
		s.log.Warn("ignoring invalid language", "language", int(lang))
		return
	}
	s.lang = lang
	s.presenter.ShowLanguage(lang)
	s.log.Info("language set", "language", lang)
}

func (s *Service) setDefault() {
	if s.store == nil {
		s.log.Warn("no configuration store, default language not saved")
		return
	}
	if err := s.store.SaveDefaultLanguage(s.lang); err != nil {
		s.log.Error("save default language", "err", err)
		s.report(err)
		return
	}
	s.log.Info("default language set", "language", s.lang)
}

// shutdown abandons any session in progress.
func (s *Service) shutdown() {
	switch s.State() {
	case Recording:
		if err := s.recorder.Cancel(); err != nil && !errors.Is(err, audio.ErrNotRecording) {
			s.log.Warn("cancel recording", "err", err)
		}
	case Transcribing:
		if s.cancelCall != nil {
			s.cancelCall()
			s.cancelCall = nil
		}
	}
	if s.hideTimer != nil {
		s.hideTimer.Stop()
	}
	s.session = nil
	s.setState(Idle)
	s.presenter.HideMessage()
}

// showMessage puts text on the overlay and schedules its removal. A later
// message supersedes the pending hide of an earlier one.
func (s *Service) showMessage(text string) {
	s.presenter.ShowMessage(text)
	s.overlaySeq++
	seq := s.overlaySeq
	if s.hideTimer != nil {
		s.hideTimer.Stop()
	}
	s.hideTimer = time.AfterFunc(s.display, func() { s.deliver(hideOverlay{seq: seq}) })
}

func (s *Service) setState(to State) {
	from := State(s.state.Swap(int32(to)))
	if from == to {
		return
	}
	s.presenter.ShowState(to)
	if s.OnStateChange != nil {
		s.OnStateChange(from, to)
	}
}

func (s *Service) report(err error) {
	if s.OnError != nil {
		s.OnError(err)
	}
}

func windowTitle(w Window) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(w.Title())
}
