package audio

import (
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/google/uuid"

	"github.com/gsequencer/ags/notation"
)

// AudioSignal is a stream of mono buffers owned by a recycling. The
// template signal of a recycling carries the buffer mixed each tick;
// other signals are streamed per note or per run.
type AudioSignal struct {
	mu   sync.RWMutex
	uuid uuid.UUID

	format     *goaudio.Format
	bufferSize int

	recycling *Recycling
	recallID  *RecallID
	note      *notation.Note

	stream  []*goaudio.FloatBuffer
	current int
}

// NewAudioSignal returns signal with one zeroed buffer.
func NewAudioSignal(samplerate, bufferSize int) *AudioSignal {
	s := &AudioSignal{
		uuid: uuid.New(),
		format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  samplerate,
		},
		bufferSize: bufferSize,
	}
	s.stream = append(s.stream, s.newBuffer())
	return s
}

func (s *AudioSignal) newBuffer() *goaudio.FloatBuffer {
	return &goaudio.FloatBuffer{
		Format: s.format,
		Data:   make([]float64, s.bufferSize),
	}
}

// UUID of signal.
func (s *AudioSignal) UUID() uuid.UUID {
	return s.uuid
}

// Format of signal buffers.
func (s *AudioSignal) Format() *goaudio.Format {
	return s.format
}

// BufferSize of signal buffers.
func (s *AudioSignal) BufferSize() int {
	return s.bufferSize
}

// Recycling returns owning recycling.
func (s *AudioSignal) Recycling() *Recycling {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recycling
}

// RecallID returns run the signal is streamed for. Nil for template
// signals.
func (s *AudioSignal) RecallID() *RecallID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recallID
}

// SetRecallID binds signal to run.
func (s *AudioSignal) SetRecallID(id *RecallID) {
	s.mu.Lock()
	s.recallID = id
	s.mu.Unlock()
}

// Note returns note the signal is streamed for.
func (s *AudioSignal) Note() *notation.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.note
}

// SetNote sets note the signal is streamed for.
func (s *AudioSignal) SetNote(n *notation.Note) {
	s.mu.Lock()
	s.note = n
	s.mu.Unlock()
}

// Buffer returns current buffer of the stream. Nil once stream is over.
func (s *AudioSignal) Buffer() *goaudio.FloatBuffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current >= len(s.stream) {
		return nil
	}
	return s.stream[s.current]
}

// Append adds a copy of data as buffers at the end of stream.
func (s *AudioSignal) Append(data []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(data) > 0 {
		b := s.newBuffer()
		n := copy(b.Data, data)
		data = data[n:]
		s.stream = append(s.stream, b)
	}
}

// Length returns number of buffers in stream.
func (s *AudioSignal) Length() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stream)
}

// Current returns index of current buffer.
func (s *AudioSignal) Current() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Next moves stream to the next buffer. Returns false if the stream is
// over.
func (s *AudioSignal) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.stream) {
		s.current++
	}
	return s.current < len(s.stream)
}

// Rewind moves stream to its first buffer.
func (s *AudioSignal) Rewind() {
	s.mu.Lock()
	s.current = 0
	s.mu.Unlock()
}

// Clear zeroes current buffer.
func (s *AudioSignal) Clear() {
	if b := s.Buffer(); b != nil {
		for i := range b.Data {
			b.Data[i] = 0
		}
	}
}

// MixInto adds current buffer of s to current buffer of dst.
func (s *AudioSignal) MixInto(dst *AudioSignal) {
	src := s.Buffer()
	out := dst.Buffer()
	if src == nil || out == nil {
		return
	}
	n := len(src.Data)
	if len(out.Data) < n {
		n = len(out.Data)
	}
	for i := 0; i < n; i++ {
		out.Data[i] += src.Data[i]
	}
}
