package audio

import (
	"sync"

	"github.com/google/uuid"
)

// Dependency declares that a template requires another template. It's
// resolved to the duplicate of the dependency sharing the run.
type Dependency struct {
	mu         sync.RWMutex
	uuid       uuid.UUID
	dependency *Recall
}

// NewDependency returns dependency on template.
func NewDependency(dependency *Recall) *Dependency {
	return &Dependency{
		uuid:       uuid.New(),
		dependency: dependency,
	}
}

// UUID of dependency.
func (d *Dependency) UUID() uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uuid
}

// SetUUID overrides uuid.
func (d *Dependency) SetUUID(id uuid.UUID) {
	d.mu.Lock()
	d.uuid = id
	d.mu.Unlock()
}

// Dependency returns the template recall depended on.
func (d *Dependency) Dependency() *Recall {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dependency
}

// SetDependency replaces the template recall depended on.
func (d *Dependency) SetDependency(r *Recall) {
	d.mu.Lock()
	d.dependency = r
	d.mu.Unlock()
}

// Resolve returns the duplicate of dependency bound to exactly the
// recycling context of id. Duplicates of the dependency template are
// preferred over other recalls of its type. Nil id resolves to the template
// itself. Returns nil and logs if nothing matches.
func (d *Dependency) Resolve(id *RecallID) *Recall {
	template := d.Dependency()
	if template == nil {
		logger.Warn("missing dependency")
		return nil
	}
	if id == nil {
		logger.Warn("resolving dependency without recall id")
		return template
	}
	ctx := id.RecyclingContext()
	var fallback *Recall
	for _, candidates := range candidateLists(template) {
		list := candidates
		for {
			list = FindTypeWithRecyclingContext(list, template.Type(), ctx)
			if len(list) == 0 {
				break
			}
			if list[0].Template() == template {
				return list[0]
			}
			if fallback == nil {
				fallback = list[0]
			}
			list = list[1:]
		}
	}
	if fallback == nil {
		logger.Warnf("missing dependency %v", template.Type())
	}
	return fallback
}

// RecallIDFor returns the run r resolves d in. A dependency sharing the
// orientation of r lives in the same run, otherwise in the run of the
// parent recycling context.
func (d *Dependency) RecallIDFor(r *Recall) *RecallID {
	id := r.RecallID()
	dep := d.Dependency()
	if id == nil || dep == nil {
		return id
	}
	if r.TestFlags(InputOrientated) && dep.TestFlags(InputOrientated) ||
		r.TestFlags(OutputOrientated) && dep.TestFlags(OutputOrientated) {
		return id
	}
	if parent := id.Parent(); parent != nil {
		return parent
	}
	return id
}

// candidateLists returns lists the duplicates of template can be in.
func candidateLists(template *Recall) [][]*Recall {
	if c := template.Channel(); c != nil {
		return [][]*Recall{c.Recalls(true), c.Recalls(false)}
	}
	if a := template.Audio(); a != nil {
		return [][]*Recall{a.Recalls(true), a.Recalls(false)}
	}
	if c := template.Container(); c != nil {
		return [][]*Recall{c.AudioRuns(), c.ChannelRuns()}
	}
	return nil
}
