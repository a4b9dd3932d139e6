package audio

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// Source is a blocking supplier of fixed-size sample chunks.
type Source interface {
	// Start begins delivery of samples.
	Start() error
	// Read blocks until the next chunk is available. The returned slice is
	// reused by the next call.
	Read() ([]int16, error)
	// Stop pauses delivery; Start may be called again afterwards.
	Stop() error
	// Close releases the source.
	Close() error
}

// Device is the default PortAudio input device.
type Device struct {
	stream *portaudio.Stream
	frames []int16
	log    *slog.Logger
}

var _ Source = (*Device)(nil)

// OpenDevice initialises PortAudio and opens the default input as a mono
// 16 kHz int16 stream. The stream is not started.
func OpenDevice(log *slog.Logger) (*Device, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	frames := make([]int16, ChunkSize)
	stream, err := portaudio.OpenDefaultStream(Channels, 0, float64(SampleRate), len(frames), frames)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	return &Device{stream: stream, frames: frames, log: log}, nil
}

// Start starts the input stream.
func (d *Device) Start() error {
	return d.stream.Start()
}

// Read fills the device buffer with the next chunk. Input overflow is
// logged and the chunk kept.
func (d *Device) Read() ([]int16, error) {
	if err := d.stream.Read(); err != nil {
		if err != portaudio.InputOverflowed {
			return nil, fmt.Errorf("read input stream: %w", err)
		}
		d.log.Debug("portaudio input overflowed")
	}
	return d.frames, nil
}

// Stop stops the input stream.
func (d *Device) Stop() error {
	return d.stream.Stop()
}

// Close closes the stream and terminates PortAudio.
func (d *Device) Close() error {
	err := d.stream.Close()
	portaudio.Terminate()
	return err
}
