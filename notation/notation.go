// Package notation holds notes of an audio object grouped into
// timestamped segments per audio channel.
package notation

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// DefaultOffset is the width of one notation segment in notation counter units.
const DefaultOffset uint64 = 1024

// Note spans [X0, X1) counter steps on key Y.
type Note struct {
	UUID uuid.UUID
	X0   uint64
	X1   uint64
	Y    uint32
}

// NewNote returns a note with generated uuid.
func NewNote(x0, x1 uint64, y uint32) *Note {
	return &Note{
		UUID: uuid.New(),
		X0:   x0,
		X1:   x1,
		Y:    y,
	}
}

// Notation is a segment of notes of single audio channel starting at Offset.
type Notation struct {
	UUID         uuid.UUID
	AudioChannel int
	Offset       uint64

	mu    sync.RWMutex
	notes []*Note
}

// New returns empty notation segment.
func New(audioChannel int, offset uint64) *Notation {
	return &Notation{
		UUID:         uuid.New(),
		AudioChannel: audioChannel,
		Offset:       offset,
	}
}

// SegmentOffset returns offset of the segment containing x.
func SegmentOffset(x uint64) uint64 {
	return DefaultOffset * (x / DefaultOffset)
}

// AddNote inserts note ordered by X0 then Y.
func (n *Notation) AddNote(note *Note) {
	if note == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	i := sort.Search(len(n.notes), func(i int) bool {
		return less(note, n.notes[i])
	})
	n.notes = append(n.notes, nil)
	copy(n.notes[i+1:], n.notes[i:])
	n.notes[i] = note
}

// RemoveNote removes note by identity.
func (n *Notation) RemoveNote(note *Note) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.notes {
		if n.notes[i] == note {
			n.notes = append(n.notes[:i], n.notes[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNoteAt removes the first note starting at x with key y.
func (n *Notation) RemoveNoteAt(x uint64, y uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, note := range n.notes {
		if note.X0 == x && note.Y == y {
			n.notes = append(n.notes[:i], n.notes[i+1:]...)
			return true
		}
	}
	return false
}

// Notes returns snapshot of notes.
func (n *Notation) Notes() []*Note {
	n.mu.RLock()
	defer n.mu.RUnlock()
	result := make([]*Note, len(n.notes))
	copy(result, n.notes)
	return result
}

// NotesAt returns notes starting exactly at x.
func (n *Notation) NotesAt(x uint64) []*Note {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var result []*Note
	for _, note := range n.notes {
		if note.X0 == x {
			result = append(result, note)
		} else if note.X0 > x {
			break
		}
	}
	return result
}

// FindPoint returns the last note starting at x with key y.
func (n *Notation) FindPoint(x uint64, y uint32) *Note {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var found *Note
	for _, note := range n.notes {
		if note.X0 > x {
			break
		}
		if note.X0 == x && note.Y == y {
			found = note
		}
	}
	return found
}

// FindRegion returns notes starting within [x0, x1) with key in [y0, y1).
func (n *Notation) FindRegion(x0 uint64, y0 uint32, x1 uint64, y1 uint32) []*Note {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var result []*Note
	for _, note := range n.notes {
		if note.X0 >= x1 {
			break
		}
		if note.X0 >= x0 && note.Y >= y0 && note.Y < y1 {
			result = append(result, note)
		}
	}
	return result
}

func less(a, b *Note) bool {
	if a.X0 != b.X0 {
		return a.X0 < b.X0
	}
	return a.Y < b.Y
}

// List is an ordered set of notation segments.
type List []*Notation

// Add inserts notation ordered by offset.
func (l List) Add(n *Notation) List {
	if n == nil {
		return l
	}
	i := sort.Search(len(l), func(i int) bool { return l[i].Offset > n.Offset })
	l = append(l, nil)
	copy(l[i+1:], l[i:])
	l[i] = n
	return l
}

// FindNearTimestamp returns the segment of audio channel whose offset lies
// in [offset, offset+DefaultOffset). Returns nil if not found.
func (l List) FindNearTimestamp(audioChannel int, offset uint64) *Notation {
	for _, n := range l {
		if n.AudioChannel != audioChannel {
			continue
		}
		if n.Offset >= offset && n.Offset < offset+DefaultOffset {
			return n
		}
	}
	return nil
}

// Find returns the segment that contains x for audio channel. The segment
// is created and added if it doesn't exist.
func (l List) Find(audioChannel int, x uint64) (List, *Notation) {
	offset := SegmentOffset(x)
	if n := l.FindNearTimestamp(audioChannel, offset); n != nil {
		return l, n
	}
	n := New(audioChannel, offset)
	return l.Add(n), n
}
