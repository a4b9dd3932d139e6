package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrAlreadyRecording is returned by Start while a capture is running.
	ErrAlreadyRecording = errors.New("audio: already recording")
	// ErrNotRecording is returned by Stop and Cancel when idle.
	ErrNotRecording = errors.New("audio: not recording")
)

// Clip is a finished capture serialized as WAV.
type Clip struct {
	WAV      []byte
	Samples  int
	Duration time.Duration
}

// Recorder runs one capture goroutine at a time against a Source.
type Recorder struct {
	src Source
	log *slog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan error
	buf     Buffer
}

// NewRecorder returns a Recorder reading from src.
func NewRecorder(src Source, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{src: src, log: log}
}

// Start clears the buffer and begins capturing in a new goroutine.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRecording
	}
	if err := r.src.Start(); err != nil {
		return fmt.Errorf("start input stream: %w", err)
	}

	r.buf.Reset()
	r.stop = make(chan struct{})
	r.done = make(chan error, 1)
	r.running = true

	go r.captureLoop(&r.buf, r.stop, r.done)
	return nil
}

// Recording reports whether a capture goroutine is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop ends the capture, waits for the goroutine to exit and returns the
// buffered audio as a WAV clip. A device read error that ended the capture
// early is returned instead of the clip.
func (r *Recorder) Stop() (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return Clip{}, ErrNotRecording
	}
	if err := r.halt(); err != nil {
		return Clip{}, err
	}

	samples := r.buf.Samples()
	wavBytes, err := EncodeWAV(samples, SampleRate)
	if err != nil {
		return Clip{}, err
	}
	clip := Clip{WAV: wavBytes, Samples: len(samples), Duration: r.buf.Duration()}
	r.log.Debug("capture stopped", "samples", clip.Samples, "chunks", r.buf.Chunks(), "duration", clip.Duration)
	return clip, nil
}

// Cancel ends the capture and discards the buffered audio.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return ErrNotRecording
	}
	err := r.halt()
	r.buf.Reset()
	return err
}

// halt must be called with mu held.
func (r *Recorder) halt() error {
	close(r.stop)
	loopErr := <-r.done
	r.running = false
	if err := r.src.Stop(); err != nil {
		r.log.Warn("stop input stream", "err", err)
	}
	return loopErr
}

func (r *Recorder) captureLoop(buf *Buffer, stop <-chan struct{}, done chan<- error) {
	for {
		select {
		case <-stop:
			done <- nil
			return
		default:
		}

		chunk, err := r.src.Read()
		if err != nil {
			// Park until Stop so the caller still observes a single exit.
			<-stop
			done <- err
			return
		}
		buf.Append(chunk)
	}
}
