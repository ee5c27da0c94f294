package main

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedBitDepth is returned for bit depths other than 16 and 32.
var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// wavSink encodes interleaved float frames into a wav file.
type wavSink struct {
	file     *os.File
	encoder  *wav.Encoder
	buffer   *goaudio.IntBuffer
	bitDepth int
}

func newWavSink(path string, sampleRate, numChannels, bitDepth int) (*wavSink, error) {
	if bitDepth != 16 && bitDepth != 32 {
		return nil, fmt.Errorf("%d: %w", bitDepth, ErrUnsupportedBitDepth)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &wavSink{
		file:     f,
		encoder:  wav.NewEncoder(f, sampleRate, bitDepth, numChannels, 1),
		bitDepth: bitDepth,
		buffer: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// write encodes channels as one interleaved block. Samples are clipped
// to [-1, 1].
func (s *wavSink) write(channels [][]float64) error {
	if len(channels) == 0 {
		return nil
	}
	max := float64(int64(1)<<uint(s.bitDepth-1) - 1)
	frames := len(channels[0])
	data := make([]int, 0, frames*len(channels))
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			v := ch[i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			data = append(data, int(v*max))
		}
	}
	s.buffer.Data = data
	return s.encoder.Write(s.buffer)
}

// close flushes encoder and closes the file.
func (s *wavSink) close() error {
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
