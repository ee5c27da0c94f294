// Package file persists recall containers as XML. Every object gets its
// UUID as id attribute and cross references are written as
// xpath=//*[@id='...'] lookups. Reading is two-phased: all nodes are
// loaded first, then references are resolved by id.
package file

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/log"
)

var logger log.Logger = log.GetLogger()

// Version of the file format.
const Version = "1.0.0"

var (
	// ErrUnresolved is returned when a reference points to a missing id.
	ErrUnresolved = errors.New("unresolved reference")
	// ErrMalformed is returned for unparseable nodes.
	ErrMalformed = errors.New("malformed node")
)

const (
	xpathPrefix = "xpath=//*[@id='"
	xpathSuffix = "']"
)

// Reference returns xpath reference to id.
func Reference(id uuid.UUID) string {
	return xpathPrefix + id.String() + xpathSuffix
}

// ParseReference returns id of xpath reference.
func ParseReference(ref string) (uuid.UUID, error) {
	if !strings.HasPrefix(ref, xpathPrefix) || !strings.HasSuffix(ref, xpathSuffix) {
		return uuid.Nil, fmt.Errorf("reference %q: %w", ref, ErrMalformed)
	}
	id, err := uuid.Parse(strings.TrimSuffix(strings.TrimPrefix(ref, xpathPrefix), xpathSuffix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("reference %q: %w", ref, ErrMalformed)
	}
	return id, nil
}

type fileNode struct {
	XMLName    xml.Name        `xml:"ags-file"`
	Version    string          `xml:"version,attr"`
	Containers []containerNode `xml:"ags-recall-container"`
}

type containerNode struct {
	ID      string       `xml:"id,attr"`
	Recalls []RecallNode `xml:"ags-recall"`
}

// RecallNode is the persisted form of a recall template.
type RecallNode struct {
	ID             string           `xml:"id,attr"`
	Type           string           `xml:"type,attr"`
	Name           string           `xml:"name,attr,omitempty"`
	Version        string           `xml:"version,attr,omitempty"`
	BuildID        string           `xml:"build-id,attr,omitempty"`
	Filename       string           `xml:"filename,attr,omitempty"`
	Effect         string           `xml:"effect,attr,omitempty"`
	EffectIndex    int              `xml:"effect-index,attr"`
	Play           bool             `xml:"play,attr"`
	Flags          string           `xml:"flags,attr"`
	Ability        string           `xml:"ability-flags,attr"`
	BehaviourFlags string           `xml:"behaviour-flags,attr"`
	Channel        *ChannelNode     `xml:"ags-channel,omitempty"`
	Ports          []portNode       `xml:"ags-port"`
	Dependencies   []dependencyNode `xml:"ags-recall-dependency"`
}

// ChannelNode locates the channel of a channel level recall.
type ChannelNode struct {
	Output       bool `xml:"output,attr"`
	Pad          int  `xml:"pad,attr"`
	AudioChannel int  `xml:"audio-channel,attr"`
}

type portNode struct {
	ID        string  `xml:"id,attr"`
	Specifier string  `xml:"specifier,attr"`
	Value     float64 `xml:"value,attr"`
}

type dependencyNode struct {
	ID         string `xml:"id,attr"`
	Dependency string `xml:"dependency,attr"`
}

// Write encodes templates of containers. Recalls bound to a run are
// skipped.
func Write(w io.Writer, containers ...*audio.Container) error {
	f := fileNode{Version: Version}
	for _, c := range containers {
		cn := containerNode{ID: c.UUID().String()}
		for _, r := range c.Recalls() {
			if !r.IsTemplate() {
				logger.Debugf("file: skip %s bound to %v", r.Name(), r.RecallID())
				continue
			}
			cn.Recalls = append(cn.Recalls, writeRecall(r))
		}
		f.Containers = append(f.Containers, cn)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeRecall(r *audio.Recall) RecallNode {
	n := RecallNode{
		ID:             r.UUID().String(),
		Type:           r.Type().String(),
		Name:           r.Name(),
		Version:        r.Version(),
		BuildID:        r.BuildID(),
		Filename:       r.Filename(),
		Effect:         r.Effect(),
		EffectIndex:    r.EffectIndex(),
		Flags:          formatFlags(uint32(r.Flags())),
		Ability:        formatFlags(uint32(r.Ability())),
		BehaviourFlags: formatFlags(uint32(r.BehaviourFlags())),
		Play:           inPlayList(r),
	}
	if c := r.Channel(); c != nil {
		n.Channel = &ChannelNode{
			Output:       c.IsOutput(),
			Pad:          c.Pad(),
			AudioChannel: c.AudioChannel(),
		}
	}
	for _, p := range r.Ports() {
		n.Ports = append(n.Ports, portNode{
			ID:        p.UUID().String(),
			Specifier: p.Specifier(),
			Value:     p.SafeRead(),
		})
	}
	for _, d := range r.Dependencies() {
		dep := d.Dependency()
		if dep == nil {
			continue
		}
		n.Dependencies = append(n.Dependencies, dependencyNode{
			ID:         d.UUID().String(),
			Dependency: Reference(dep.UUID()),
		})
	}
	return n
}

// provider is an audio or channel holding recall lists.
type provider interface {
	Recalls(play bool) []*audio.Recall
	AddRecall(r *audio.Recall, play bool)
	AddRecallContainer(c *audio.Container)
	RecallContainers() []*audio.Container
}

func providerOf(r *audio.Recall) provider {
	switch p := r.Provider().(type) {
	case *audio.Audio:
		return p
	case *audio.Channel:
		return p
	}
	return nil
}

func inPlayList(r *audio.Recall) bool {
	p := providerOf(r)
	if p == nil {
		return false
	}
	for _, v := range p.Recalls(true) {
		if v == r {
			return true
		}
	}
	return false
}

// Containers returns containers of audio and its channels without
// duplicates.
func Containers(a *audio.Audio) []*audio.Container {
	seen := make(map[*audio.Container]bool)
	var result []*audio.Container
	providers := []provider{a}
	for _, c := range a.Inputs() {
		providers = append(providers, c)
	}
	for _, c := range a.Outputs() {
		providers = append(providers, c)
	}
	for _, p := range providers {
		for _, c := range p.RecallContainers() {
			if !seen[c] {
				seen[c] = true
				result = append(result, c)
			}
		}
	}
	return result
}

func formatFlags(f uint32) string {
	return "0x" + strconv.FormatUint(uint64(f), 16)
}

func parseFlags(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("flags %q: %w", s, ErrMalformed)
	}
	return uint32(v), nil
}

// Lookup returns the recall a node is read into. It may create a new
// recall or return an existing one.
type Lookup func(n RecallNode) (*audio.Recall, error)

// pending is a reference resolved after all nodes are loaded.
type pending struct {
	recall *audio.Recall
	node   dependencyNode
}

// Read decodes containers. Lookup provides recalls for nodes; ids, flags
// and port values are applied to them. Dependencies are resolved once
// every node is loaded.
func Read(r io.Reader, lookup Lookup) ([]*audio.Container, error) {
	var f fileNode
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	ids := make(map[uuid.UUID]*audio.Recall)
	var (
		containers []*audio.Container
		refs       []pending
	)
	for _, cn := range f.Containers {
		c := audio.NewContainer()
		if id, err := uuid.Parse(cn.ID); err == nil {
			c.SetUUID(id)
		}
		for _, n := range cn.Recalls {
			rec, err := readRecall(n, lookup)
			if err != nil {
				return nil, err
			}
			ids[rec.UUID()] = rec
			c.Add(rec)
			for _, d := range n.Dependencies {
				refs = append(refs, pending{recall: rec, node: d})
			}
		}
		containers = append(containers, c)
	}

	for _, p := range refs {
		if err := resolve(p, ids); err != nil {
			return nil, err
		}
	}
	logger.Debugf("file: read %d containers, resolved %d references", len(containers), len(refs))
	return containers, nil
}

func readRecall(n RecallNode, lookup Lookup) (*audio.Recall, error) {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return nil, fmt.Errorf("recall id %q: %w", n.ID, ErrMalformed)
	}
	flags, err := parseFlags(n.Flags)
	if err != nil {
		return nil, err
	}
	ability, err := parseFlags(n.Ability)
	if err != nil {
		return nil, err
	}
	behaviour, err := parseFlags(n.BehaviourFlags)
	if err != nil {
		return nil, err
	}
	r, err := lookup(n)
	if err != nil {
		return nil, fmt.Errorf("recall %s: %w", n.ID, err)
	}
	r.SetUUID(id)
	r.SetFlags(audio.Flags(flags))
	r.SetAbility(audio.Ability(ability))
	r.SetBehaviourFlags(audio.BehaviourFlags(behaviour))
	for _, pn := range n.Ports {
		p := r.FindPort(pn.Specifier)
		if p == nil {
			logger.Warnf("file: recall %s has no port %s", n.Type, pn.Specifier)
			continue
		}
		if pid, err := uuid.Parse(pn.ID); err == nil {
			p.SetUUID(pid)
		}
		p.SafeWrite(pn.Value)
	}
	return r, nil
}

// resolve binds dependency of p to the loaded recall. An existing
// dependency without target or with a target of the same type is reused.
func resolve(p pending, ids map[uuid.UUID]*audio.Recall) error {
	target, err := ParseReference(p.node.Dependency)
	if err != nil {
		return err
	}
	dep, ok := ids[target]
	if !ok {
		return fmt.Errorf("dependency of %s on %v: %w", p.recall.Type(), target, ErrUnresolved)
	}
	var d *audio.Dependency
	for _, existing := range p.recall.Dependencies() {
		if cur := existing.Dependency(); cur == nil || cur.Type() == dep.Type() {
			d = existing
			break
		}
	}
	if d == nil {
		d = audio.NewDependency(dep)
		p.recall.AddDependency(d)
	}
	d.SetDependency(dep)
	if id, err := uuid.Parse(p.node.ID); err == nil {
		d.SetUUID(id)
	}
	return nil
}
