// Package port provides shared control endpoints of recalls.
package port

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gsequencer/ags/log"
)

var logger = log.GetLogger()

// Port is a shared control value. It's written by the UI and automation
// and read by the audio thread. All value access is lock-free.
type Port struct {
	uuid      uuid.UUID
	specifier string
	control   string
	lower     float64
	upper     float64
	def       float64
	value     uint64

	mu         sync.RWMutex
	automation *Automation
}

// Option configures port.
type Option func(*Port)

// WithRange sets lower and upper bounds of port.
func WithRange(lower, upper float64) Option {
	return func(p *Port) {
		p.lower = lower
		p.upper = upper
	}
}

// WithDefault sets default value of port.
func WithDefault(v float64) Option {
	return func(p *Port) {
		p.def = v
	}
}

// WithControl sets control port name. It's used by persistence layer.
func WithControl(control string) Option {
	return func(p *Port) {
		p.control = control
	}
}

// New returns a new port with provided specifier.
func New(specifier string, options ...Option) *Port {
	p := &Port{
		uuid:      uuid.New(),
		specifier: specifier,
		lower:     0,
		upper:     1,
	}
	for _, option := range options {
		option(p)
	}
	p.SafeWrite(p.def)
	return p
}

// UUID of the port.
func (p *Port) UUID() uuid.UUID {
	return p.uuid
}

// SetUUID overrides generated uuid. Used when port is loaded from file.
func (p *Port) SetUUID(id uuid.UUID) {
	p.uuid = id
}

// Specifier returns port name.
func (p *Port) Specifier() string {
	return p.specifier
}

// Control returns control port name.
func (p *Port) Control() string {
	return p.control
}

// Range returns lower and upper bound.
func (p *Port) Range() (float64, float64) {
	return p.lower, p.upper
}

// Default value of the port.
func (p *Port) Default() float64 {
	return p.def
}

// SafeRead returns current value.
func (p *Port) SafeRead() float64 {
	return math.Float64frombits(atomic.LoadUint64(&p.value))
}

// SafeWrite atomically replaces current value.
func (p *Port) SafeWrite(v float64) {
	atomic.StoreUint64(&p.value, math.Float64bits(v))
}

// ReadBool returns true if value is not zero.
func (p *Port) ReadBool() bool {
	return p.SafeRead() != 0
}

// WriteBool stores boolean value.
func (p *Port) WriteBool(v bool) {
	if v {
		p.SafeWrite(1)
		return
	}
	p.SafeWrite(0)
}

// ReadUint returns value truncated to unsigned integer.
func (p *Port) ReadUint() uint64 {
	v := p.SafeRead()
	if v <= 0 {
		return 0
	}
	return uint64(v)
}

// WriteUint stores unsigned integer value.
func (p *Port) WriteUint(v uint64) {
	p.SafeWrite(float64(v))
}

// Automation returns automation of port, nil if port isn't automated.
func (p *Port) Automation() *Automation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.automation
}

// SetAutomation attaches automation to the port.
func (p *Port) SetAutomation(a *Automation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.automation = a
}

// Automate writes the automation value at x. Returns false if port has no
// automation or value can't be computed.
func (p *Port) Automate(x uint64) bool {
	a := p.Automation()
	if a == nil {
		return false
	}
	v, ok := a.Value(x)
	if !ok {
		return false
	}
	p.SafeWrite(v)
	return true
}

// Acceleration is a single automation point. Y is normalized to [0, 1].
type Acceleration struct {
	X uint64
	Y float64
}

// Automation is a curve of accelerations mapped onto port range.
type Automation struct {
	mu     sync.Mutex
	lower  float64
	upper  float64
	points []Acceleration
}

// NewAutomation returns automation for provided range.
func NewAutomation(lower, upper float64) *Automation {
	return &Automation{
		lower: lower,
		upper: upper,
	}
}

// Add inserts acceleration keeping points ordered by x. Point with the
// same x is replaced.
func (a *Automation) Add(acc Acceleration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.points), func(i int) bool { return a.points[i].X >= acc.X })
	if i < len(a.points) && a.points[i].X == acc.X {
		a.points[i] = acc
		return
	}
	a.points = append(a.points, Acceleration{})
	copy(a.points[i+1:], a.points[i:])
	a.points[i] = acc
}

// Len returns number of points.
func (a *Automation) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.points)
}

// Value returns port value at x. Between two points the value is linearly
// interpolated. Automation with empty range is skipped.
func (a *Automation) Value(x uint64) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.points) == 0 {
		return 0, false
	}
	r := a.upper - a.lower
	if r == 0 {
		logger.Warn("automation: range == 0.0")
		return 0, false
	}
	i := sort.Search(len(a.points), func(i int) bool { return a.points[i].X > x })
	var y float64
	switch {
	case i == 0:
		y = a.points[0].Y
	case i == len(a.points):
		y = a.points[i-1].Y
	default:
		prev, next := a.points[i-1], a.points[i]
		t := float64(x-prev.X) / float64(next.X-prev.X)
		y = prev.Y + t*(next.Y-prev.Y)
	}
	return a.lower + y*r, true
}
