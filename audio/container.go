package audio

import (
	"sync"

	"github.com/google/uuid"
)

// FindFlags select how Find matches containers. Flags are or-ed: a
// container matches if any of the requested criteria holds.
type FindFlags uint8

// Find flags.
const (
	FindByType FindFlags = 1 << iota
	FindByTemplate
	FindByRecallID
)

// Container groups the audio, audio run, channel and channel run recalls
// of one effect. It holds at most one audio level recall.
type Container struct {
	mu   sync.RWMutex
	uuid uuid.UUID

	audioType      *Type
	audioRunType   *Type
	channelType    *Type
	channelRunType *Type

	recallAudio *Recall
	audioRuns   []*Recall
	channels    []*Recall
	channelRuns []*Recall
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{
		uuid: uuid.New(),
	}
}

// UUID of container.
func (c *Container) UUID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uuid
}

// SetUUID overrides uuid.
func (c *Container) SetUUID(id uuid.UUID) {
	c.mu.Lock()
	c.uuid = id
	c.mu.Unlock()
}

// Types returns types of the four levels held by container. Types are
// recorded by the first recall added on each level.
func (c *Container) Types() (audio, audioRun, channel, channelRun *Type) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.audioType, c.audioRunType, c.channelType, c.channelRunType
}

// Add stores recall on its level and back-links it. Audio level recall
// replaces the current one and is propagated to every held peer. Channel
// run recalls are linked with their audio run and channel peers.
func (c *Container) Add(r *Recall) {
	if r == nil {
		return
	}
	switch r.Kind() {
	case KindAudio:
		c.SetRecallAudio(r)
		return
	case KindAudioRun:
		c.addAudioRun(r)
	case KindChannel:
		c.addChannel(r)
	case KindChannelRun:
		c.addChannelRun(r)
	default:
		logger.Warnf("container: can't add %v", r.Type())
		return
	}
	if old := r.Container(); old != nil && old != c {
		old.Remove(r)
	}
	r.setContainer(c)
}

// Remove unlinks recall. Audio level is cleared, list levels drop it. The
// container back-reference of recall is cleared.
func (c *Container) Remove(r *Recall) {
	if r == nil {
		return
	}
	removed := false
	c.mu.Lock()
	switch r.Kind() {
	case KindAudio:
		if c.recallAudio == r {
			c.recallAudio = nil
			removed = true
		}
	case KindAudioRun:
		c.audioRuns, removed = removeRecall(c.audioRuns, r)
	case KindChannel:
		c.channels, removed = removeRecall(c.channels, r)
	case KindChannelRun:
		c.channelRuns, removed = removeRecall(c.channelRuns, r)
	}
	c.mu.Unlock()
	if removed && r.Container() == c {
		r.setContainer(nil)
	}
}

// RecallAudio returns audio level recall.
func (c *Container) RecallAudio() *Recall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recallAudio
}

// SetRecallAudio replaces audio level recall. The previous recall loses
// its container. Every audio run, channel and channel run held gets the
// new recall as audio peer.
func (c *Container) SetRecallAudio(r *Recall) {
	c.mu.Lock()
	old := c.recallAudio
	if old == r {
		c.mu.Unlock()
		return
	}
	c.recallAudio = r
	if r != nil && c.audioType == nil {
		c.audioType = r.Type()
	}
	peers := make([]*Recall, 0, len(c.audioRuns)+len(c.channels)+len(c.channelRuns))
	peers = append(peers, c.audioRuns...)
	peers = append(peers, c.channels...)
	peers = append(peers, c.channelRuns...)
	c.mu.Unlock()

	if old != nil && old.Container() == c {
		old.setContainer(nil)
	}
	if r != nil {
		if prev := r.Container(); prev != nil && prev != c {
			prev.Remove(r)
		}
		r.setContainer(c)
	}
	for _, p := range peers {
		p.SetRecallAudio(r)
	}
}

// AudioRuns returns snapshot of audio run recalls.
func (c *Container) AudioRuns() []*Recall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.audioRuns)
}

// Channels returns snapshot of channel recalls.
func (c *Container) Channels() []*Recall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.channels)
}

// ChannelRuns returns snapshot of channel run recalls.
func (c *Container) ChannelRuns() []*Recall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.channelRuns)
}

// Recalls returns all recalls of container, audio level first.
func (c *Container) Recalls() []*Recall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var all []*Recall
	if c.recallAudio != nil {
		all = append(all, c.recallAudio)
	}
	all = append(all, c.audioRuns...)
	all = append(all, c.channels...)
	return append(all, c.channelRuns...)
}

// audio run is prepended. A run with recall id becomes the audio run peer
// of the channel runs in the same recycling context, a template becomes
// peer of the template channel runs.
func (c *Container) addAudioRun(r *Recall) {
	c.mu.Lock()
	if _, found := indexRecall(c.audioRuns, r); found {
		c.mu.Unlock()
		return
	}
	c.audioRuns = append([]*Recall{r}, c.audioRuns...)
	if c.audioRunType == nil {
		c.audioRunType = r.Type()
	}
	audio := c.recallAudio
	channelRuns := snapshot(c.channelRuns)
	c.mu.Unlock()

	r.SetRecallAudio(audio)
	if id := r.RecallID(); id != nil {
		ctx := id.RecyclingContext()
		for _, cr := range channelRuns {
			if crID := cr.RecallID(); crID != nil && sameRun(crID.RecyclingContext(), ctx) {
				cr.SetRecallAudioRun(r)
			}
		}
		return
	}
	for _, cr := range channelRuns {
		if cr.IsTemplate() {
			cr.SetRecallAudioRun(r)
		}
	}
}

// channel becomes channel peer of the channel runs of its channel.
func (c *Container) addChannel(r *Recall) {
	c.mu.Lock()
	if _, found := indexRecall(c.channels, r); found {
		c.mu.Unlock()
		return
	}
	c.channels = append([]*Recall{r}, c.channels...)
	if c.channelType == nil {
		c.channelType = r.Type()
	}
	audio := c.recallAudio
	channelRuns := snapshot(c.channelRuns)
	c.mu.Unlock()

	r.SetRecallAudio(audio)
	for _, cr := range channelRuns {
		if cr.Channel() == r.Channel() {
			cr.SetRecallChannel(r)
		}
	}
}

// channel run is linked with the channel of its channel and with the
// audio run of its recycling context or the parent context.
func (c *Container) addChannelRun(r *Recall) {
	c.mu.Lock()
	if _, found := indexRecall(c.channelRuns, r); found {
		c.mu.Unlock()
		return
	}
	c.channelRuns = append([]*Recall{r}, c.channelRuns...)
	if c.channelRunType == nil {
		c.channelRunType = r.Type()
	}
	audio := c.recallAudio
	audioRuns := snapshot(c.audioRuns)
	channels := snapshot(c.channels)
	c.mu.Unlock()

	r.SetRecallAudio(audio)
	for _, ch := range channels {
		if ch.Channel() == r.Channel() {
			r.SetRecallChannel(ch)
			break
		}
	}
	id := r.RecallID()
	var peer *Recall
	for _, ar := range audioRuns {
		arID := ar.RecallID()
		if id == nil && arID == nil ||
			id != nil && arID != nil && sameRun(id.RecyclingContext(), arID.RecyclingContext()) {
			peer = ar
			break
		}
	}
	r.SetRecallAudioRun(peer)
}

// Find returns containers starting at the first one whose recall of the
// level of typ matches any of flags. Only the first recall of each list
// level is considered.
func Find(containers []*Container, typ *Type, flags FindFlags, id *RecallID) []*Container {
	if typ == nil {
		return nil
	}
	switch typ.Kind {
	case KindAudio, KindAudioRun, KindChannel, KindChannelRun:
	default:
		logger.Debugf("container find: invalid type %v", typ)
		return nil
	}
	for i, c := range containers {
		r := c.first(typ.Kind)
		if r == nil {
			continue
		}
		if flags&FindByType != 0 && r.Type() == typ {
			return containers[i:]
		}
		if flags&FindByTemplate != 0 && r.IsTemplate() {
			return containers[i:]
		}
		if flags&FindByRecallID != 0 && r.RecallID() != nil && r.RecallID() == id {
			return containers[i:]
		}
	}
	return nil
}

func (c *Container) first(k Kind) *Recall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var list []*Recall
	switch k {
	case KindAudio:
		return c.recallAudio
	case KindAudioRun:
		list = c.audioRuns
	case KindChannel:
		list = c.channels
	case KindChannelRun:
		list = c.channelRuns
	}
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// sameRun reports if a and b are the same context or b is the parent of a.
func sameRun(a, b *RecyclingContext) bool {
	if a == nil || b == nil {
		return false
	}
	return a == b || a.Parent() == b
}

func snapshot(list []*Recall) []*Recall {
	if len(list) == 0 {
		return nil
	}
	s := make([]*Recall, len(list))
	copy(s, list)
	return s
}

func indexRecall(list []*Recall, r *Recall) (int, bool) {
	for i := range list {
		if list[i] == r {
			return i, true
		}
	}
	return -1, false
}

func removeRecall(list []*Recall, r *Recall) ([]*Recall, bool) {
	i, found := indexRecall(list, r)
	if !found {
		return list, false
	}
	return append(list[:i], list[i+1:]...), true
}
