// Package audio captures microphone input and frames it as WAV clips.
//
// Capture is fixed at mono 16-bit PCM, 16 kHz, read in 1024-sample chunks.
// A Recorder owns one Buffer and one capture goroutine at a time; the
// goroutine is the only writer of the buffer and Stop waits for it to exit
// before the buffer is read.
package audio

import "time"

const (
	// SampleRate is the capture rate in Hz.
	SampleRate = 16000
	// Channels is the capture channel count.
	Channels = 1
	// BitDepth is the sample width in bits.
	BitDepth = 16
	// ChunkSize is the number of samples pulled from the device per read.
	ChunkSize = 1024
)

// Buffer accumulates captured samples in arrival order. It has no upper
// bound. Buffer is not safe for concurrent use.
type Buffer struct {
	samples []int16
	chunks  int
}

// Append copies chunk onto the end of the buffer.
func (b *Buffer) Append(chunk []int16) {
	if len(chunk) == 0 {
		return
	}
	b.samples = append(b.samples, chunk...)
	b.chunks++
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.samples = b.samples[:0]
	b.chunks = 0
}

// Samples returns the buffered samples. The slice is only valid until the
// next Append or Reset.
func (b *Buffer) Samples() []int16 { return b.samples }

// Len returns the number of buffered samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Chunks returns how many non-empty chunks were appended.
func (b *Buffer) Chunks() int { return b.chunks }

// Duration is the playback length of the buffered samples.
func (b *Buffer) Duration() time.Duration {
	return SamplesDuration(len(b.samples))
}

// SamplesDuration converts a mono sample count at SampleRate to a duration.
func SamplesDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / SampleRate
}
