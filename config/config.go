// Package config provides the key/value configuration surface read by the
// engine: soundcard parameters and generic segmentation.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Sections and keys.
const (
	Soundcard = "soundcard"
	Generic   = "generic"

	BufferSizeKey      = "buffer-size"
	SamplerateKey      = "samplerate"
	BPMKey             = "bpm"
	PcmChannelsKey     = "pcm-channels"
	SegmentationKey    = "segmentation"
	UpdateUITimeoutKey = "update-ui-timeout"
)

// Defaults.
const (
	DefaultBufferSize      = 512
	DefaultSamplerate      = 44100
	DefaultBPM             = 120.0
	DefaultPcmChannels     = 2
	DefaultSegmentation    = "4/4"
	DefaultUpdateUITimeout = 0.125
)

// ErrInvalidSegmentation is returned when segmentation string can't be parsed.
var ErrInvalidSegmentation = errors.New("invalid segmentation")

// Config is a set of sections with plain string values.
type Config struct {
	mu       sync.RWMutex
	sections map[string]map[string]string
}

// Default returns config filled with default values.
func Default() *Config {
	return &Config{
		sections: map[string]map[string]string{
			Soundcard: {
				BufferSizeKey:  strconv.Itoa(DefaultBufferSize),
				SamplerateKey:  strconv.Itoa(DefaultSamplerate),
				BPMKey:         strconv.FormatFloat(DefaultBPM, 'f', -1, 64),
				PcmChannelsKey: strconv.Itoa(DefaultPcmChannels),
			},
			Generic: {
				SegmentationKey:    DefaultSegmentation,
				UpdateUITimeoutKey: strconv.FormatFloat(DefaultUpdateUITimeout, 'f', -1, 64),
			},
		},
	}
}

// Load reads yaml file and overlays its values on top of defaults.
func Load(path string) (*Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse overlays yaml document on top of defaults.
func Parse(b []byte) (*Config, error) {
	var doc map[string]map[string]string
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c := Default()
	for section, values := range doc {
		for k, v := range values {
			c.Set(section, k, v)
		}
	}
	return c, nil
}

// Marshal returns yaml representation of config.
func (c *Config) Marshal() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return yaml.Marshal(c.sections)
}

// Get returns value of the key in section. Empty string if not set.
func (c *Config) Get(section, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.sections[section]; ok {
		return s[key]
	}
	return ""
}

// Set assigns value to the key in section.
func (c *Config) Set(section, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sections == nil {
		c.sections = make(map[string]map[string]string)
	}
	s, ok := c.sections[section]
	if !ok {
		s = make(map[string]string)
		c.sections[section] = s
	}
	s[key] = value
}

// BufferSize returns soundcard buffer size.
func (c *Config) BufferSize() int {
	v, err := strconv.Atoi(c.Get(Soundcard, BufferSizeKey))
	if err != nil || v <= 0 {
		return DefaultBufferSize
	}
	return v
}

// Samplerate returns soundcard samplerate.
func (c *Config) Samplerate() int {
	v, err := strconv.Atoi(c.Get(Soundcard, SamplerateKey))
	if err != nil || v <= 0 {
		return DefaultSamplerate
	}
	return v
}

// PcmChannels returns number of soundcard channels.
func (c *Config) PcmChannels() int {
	v, err := strconv.Atoi(c.Get(Soundcard, PcmChannelsKey))
	if err != nil || v <= 0 {
		return DefaultPcmChannels
	}
	return v
}

// BPM returns tempo.
func (c *Config) BPM() float64 {
	v, err := strconv.ParseFloat(c.Get(Soundcard, BPMKey), 64)
	if err != nil || v <= 0 {
		return DefaultBPM
	}
	return v
}

// UpdateUITimeout returns UI refresh interval in seconds.
func (c *Config) UpdateUITimeout() float64 {
	v, err := strconv.ParseFloat(c.Get(Generic, UpdateUITimeoutKey), 64)
	if err != nil || v <= 0 {
		return DefaultUpdateUITimeout
	}
	return v
}

// Segmentation returns numerator and denominator of segmentation.
func (c *Config) Segmentation() (int, int, error) {
	return ParseSegmentation(c.Get(Generic, SegmentationKey))
}

// DelayFactor returns denominator/numerator of segmentation. Falls back
// to 1 if segmentation is invalid.
func (c *Config) DelayFactor() float64 {
	num, den, err := c.Segmentation()
	if err != nil {
		return 1
	}
	return float64(den) / float64(num)
}

// NotationDelay returns number of buffers per 1/16 note.
func (c *Config) NotationDelay() float64 {
	return Delay(c.Samplerate(), c.BufferSize(), c.BPM(), c.DelayFactor())
}

// ParseSegmentation parses slash-separated segmentation. The first
// component is numerator, the last one is denominator.
func ParseSegmentation(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSegmentation, s)
	}
	num, err := strconv.Atoi(parts[0])
	if err != nil || num <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSegmentation, s)
	}
	den, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || den <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSegmentation, s)
	}
	return num, den, nil
}

// Delay returns number of buffers per 1/16 note for provided parameters.
func Delay(samplerate, bufferSize int, bpm, delayFactor float64) float64 {
	if bufferSize == 0 || bpm == 0 || delayFactor == 0 {
		return 0
	}
	return (60.0 * (float64(samplerate) / float64(bufferSize)) / bpm) * (1.0 / 16.0) * (1.0 / delayFactor)
}
