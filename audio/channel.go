package audio

import (
	"sync"

	"github.com/google/uuid"
)

// Channel is one line of an audio, either input or output. Every channel
// has its own recycling.
type Channel struct {
	recallLists

	mu           sync.RWMutex
	uuid         uuid.UUID
	audio        *Audio
	output       bool
	pad          int
	audioChannel int
	line         int
	link         *Channel
	recycling    *Recycling
}

// newChannel is called with the audio lock held.
func newChannel(a *Audio, output bool, pad, audioChannel, line int) *Channel {
	c := &Channel{
		uuid:         uuid.New(),
		audio:        a,
		output:       output,
		pad:          pad,
		audioChannel: audioChannel,
		line:         line,
		recycling:    NewRecycling(a.samplerate, a.bufferSize),
	}
	c.recycling.setChannel(c)
	return c
}

// UUID of channel.
func (c *Channel) UUID() uuid.UUID {
	return c.uuid
}

// Audio returns owning audio.
func (c *Channel) Audio() *Audio {
	return c.audio
}

// IsOutput reports if channel is an output.
func (c *Channel) IsOutput() bool {
	return c.output
}

// Pad of channel.
func (c *Channel) Pad() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pad
}

// AudioChannel of channel.
func (c *Channel) AudioChannel() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.audioChannel
}

// Line of channel: pad * audio channels + audio channel.
func (c *Channel) Line() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.line
}

func (c *Channel) setPosition(pad, audioChannel, line int) {
	c.mu.Lock()
	c.pad = pad
	c.audioChannel = audioChannel
	c.line = line
	c.mu.Unlock()
}

// Link returns channel linked with c.
func (c *Channel) Link() *Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.link
}

// SetLink links c and other both ways. Nil unlinks.
func (c *Channel) SetLink(other *Channel) {
	c.mu.Lock()
	old := c.link
	c.link = other
	c.mu.Unlock()
	if old != nil && old != other {
		old.mu.Lock()
		if old.link == c {
			old.link = nil
		}
		old.mu.Unlock()
	}
	if other != nil {
		other.mu.Lock()
		other.link = c
		other.mu.Unlock()
	}
}

// Recycling of channel.
func (c *Channel) Recycling() *Recycling {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recycling
}

// FindRecallID returns run of channel whose context is a child of ctx.
func (c *Channel) FindRecallID(ctx *RecyclingContext) *RecallID {
	for _, id := range c.RecallIDs() {
		if child := id.RecyclingContext(); child != nil && child.Parent() == ctx {
			return id
		}
	}
	return nil
}
