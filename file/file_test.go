package file_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/file"
	"github.com/gsequencer/ags/machine"
	"github.com/gsequencer/ags/notation"
	"github.com/gsequencer/ags/plugin"
)

func newAudio() *audio.Audio {
	a := audio.NewAudio(
		audio.Named("synth"),
		audio.WithAudioAbility(audio.AbilityNotation),
		audio.WithAudioFlags(audio.AudioHasNotation),
		audio.WithMapping(0, 2, 60, 62),
	)
	a.SetAudioChannels(1)
	a.SetPads(true, 1)
	a.SetPads(false, 2)
	return a
}

func newSynth(t *testing.T) *audio.Audio {
	t.Helper()
	a := newAudio()
	m := machine.NewSynth(a, "", plugin.SineEffect)
	assert.Nil(t, m.MapRecall())
	return a
}

func byUUID(containers []*audio.Container) map[uuid.UUID]*audio.Recall {
	m := make(map[uuid.UUID]*audio.Recall)
	for _, c := range containers {
		for _, r := range c.Recalls() {
			m[r.UUID()] = r
		}
	}
	return m
}

func TestReference(t *testing.T) {
	id := uuid.New()
	var tests = []struct {
		ref         string
		expected    uuid.UUID
		expectedErr error
	}{
		{ref: file.Reference(id), expected: id},
		{ref: "xpath=//*[@id='" + id.String() + "']", expected: id},
		{ref: id.String(), expectedErr: file.ErrMalformed},
		{ref: "xpath=//*[@id='not-an-id']", expectedErr: file.ErrMalformed},
	}
	for _, c := range tests {
		got, err := file.ParseReference(c.ref)
		if c.expectedErr != nil {
			assert.True(t, errors.Is(err, c.expectedErr))
			continue
		}
		assert.Nil(t, err)
		assert.Equal(t, c.expected, got)
	}
}

func TestWrite(t *testing.T) {
	a := newSynth(t)
	var buf bytes.Buffer
	assert.Nil(t, file.Write(&buf, file.Containers(a)...))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `type="ags-route-audio-run"`)
	assert.Contains(t, out, `specifier="volume"`)

	// attribute values are escaped, references are checked decoded
	var refs int
	d := xml.NewDecoder(strings.NewReader(out))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if !assert.Nil(t, err) {
			return
		}
		e, ok := tok.(xml.StartElement)
		if !ok || e.Name.Local != "ags-recall-dependency" {
			continue
		}
		for _, attr := range e.Attr {
			if attr.Name.Local != "dependency" {
				continue
			}
			refs++
			assert.True(t, strings.HasPrefix(attr.Value, "xpath=//*[@id='"))
			_, err := file.ParseReference(attr.Value)
			assert.Nil(t, err)
		}
	}
	assert.True(t, refs > 0)
}

func TestRoundTripIdentity(t *testing.T) {
	a := newSynth(t)
	containers := file.Containers(a)
	originals := byUUID(containers)
	type dep struct {
		count   int
		targets []*audio.Recall
	}
	before := make(map[*audio.Recall]dep)
	for _, r := range originals {
		d := dep{count: len(r.Dependencies())}
		for _, v := range r.Dependencies() {
			d.targets = append(d.targets, v.Dependency())
		}
		before[r] = d
	}

	var buf bytes.Buffer
	assert.Nil(t, file.Write(&buf, containers...))
	read, err := file.Read(&buf, func(n file.RecallNode) (*audio.Recall, error) {
		id, err := uuid.Parse(n.ID)
		if err != nil {
			return nil, err
		}
		return originals[id], nil
	})
	assert.Nil(t, err)
	assert.Equal(t, len(containers), len(read))
	for r, d := range before {
		deps := r.Dependencies()
		if assert.Equal(t, d.count, len(deps), r.Type().String()) {
			for i, v := range deps {
				assert.True(t, d.targets[i] == v.Dependency(), r.Type().String())
			}
		}
	}
}

func TestLoad(t *testing.T) {
	a := newSynth(t)
	in := a.Inputs()[0]
	volume := audio.TemplateFindType(in.Recalls(false), recall.VolumeChannelType)
	if !assert.NotEmpty(t, volume) {
		return
	}
	volume[0].FindPort(recall.VolumePort).SafeWrite(0.5)

	var buf bytes.Buffer
	assert.Nil(t, file.Write(&buf, file.Containers(a)...))

	loaded := newAudio()
	containers, err := file.Load(&buf, loaded)
	assert.Nil(t, err)
	assert.Equal(t, len(file.Containers(a)), len(containers))
	assert.Equal(t, len(containers), len(file.Containers(loaded)))

	originals := byUUID(file.Containers(a))
	read := byUUID(containers)
	assert.Equal(t, len(originals), len(read))
	for id, r := range originals {
		if l, ok := read[id]; assert.True(t, ok) {
			assert.Equal(t, r.Type(), l.Type())
			assert.Equal(t, r.Flags(), l.Flags())
			assert.Equal(t, len(r.Dependencies()), len(l.Dependencies()))
			for _, d := range l.Dependencies() {
				target := d.Dependency()
				if assert.NotNil(t, target) {
					assert.True(t, read[target.UUID()] == target)
				}
			}
		}
	}

	loadedVolume := audio.TemplateFindType(loaded.Inputs()[0].Recalls(false), recall.VolumeChannelType)
	if assert.NotEmpty(t, loadedVolume) {
		assert.Equal(t, 0.5, loadedVolume[0].FindPort(recall.VolumePort).SafeRead())
		assert.Equal(t, volume[0].UUID(), loadedVolume[0].UUID())
	}
	assert.Equal(t, len(a.Recalls(true)), len(loaded.Recalls(true)))
	assert.Equal(t, len(in.Recalls(false)), len(loaded.Inputs()[0].Recalls(false)))

	loaded.AddNote(0, notation.NewNote(0, 4, 0))
	id := loaded.StartAudio(audio.ScopeNotation)[0]
	assert.False(t, loaded.Tick(id))
	loaded.Mix()
	var sum float64
	for _, v := range loaded.Outputs()[0].Recycling().Template().Buffer().Data {
		sum += math.Abs(v)
	}
	assert.True(t, sum > 0)
	loaded.StopAudio(audio.ScopeDefault)
}

func TestReadErrors(t *testing.T) {
	missing := uuid.New()
	var tests = []struct {
		doc         string
		expectedErr error
	}{
		{
			doc: `<ags-file version="1.0.0"><ags-recall-container id="` + uuid.New().String() + `">` +
				`<ags-recall id="` + uuid.New().String() + `" type="ags-count-beats-audio-run" flags="0x1">` +
				`<ags-recall-dependency id="` + uuid.New().String() + `" dependency="` + file.Reference(missing) + `"/>` +
				`</ags-recall></ags-recall-container></ags-file>`,
			expectedErr: file.ErrUnresolved,
		},
		{
			doc: `<ags-file version="1.0.0"><ags-recall-container id="` + uuid.New().String() + `">` +
				`<ags-recall id="` + uuid.New().String() + `" type="ags-unknown"/>` +
				`</ags-recall-container></ags-file>`,
			expectedErr: file.ErrMalformed,
		},
		{
			doc: `<ags-file version="1.0.0"><ags-recall-container id="` + uuid.New().String() + `">` +
				`<ags-recall id="broken" type="ags-delay-audio"/>` +
				`</ags-recall-container></ags-file>`,
			expectedErr: file.ErrMalformed,
		},
		{
			doc: `<ags-file version="1.0.0"><ags-recall-container id="` + uuid.New().String() + `">` +
				`<ags-recall id="` + uuid.New().String() + `" type="ags-volume-channel"/>` +
				`</ags-recall-container></ags-file>`,
			expectedErr: file.ErrMalformed,
		},
	}
	for _, c := range tests {
		_, err := file.Read(strings.NewReader(c.doc), file.RecallLookup(newAudio()))
		assert.True(t, errors.Is(err, c.expectedErr), "%v", err)
	}

	_, err := file.Read(strings.NewReader("<ags-file"), file.RecallLookup(newAudio()))
	assert.NotNil(t, err)
}
