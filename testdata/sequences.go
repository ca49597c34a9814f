// Package testdata embeds recorded hand landmark sequences used to replay
// tracker output through the gesture pipeline in tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ayusman/handsphere/internal/detector"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Step is one recorded tracker sample. A nil Frame means no hand was seen.
type Step struct {
	Offset time.Duration
	Frame  detector.Frame
}

// Sequence is a named recording.
type Sequence struct {
	Name        string
	Description string
	Steps       []Step
}

type sequenceFile struct {
	Description string `json:"description"`
	Frames      []struct {
		T      int64              `json:"t"`
		Points []detector.Point3D `json:"points"`
	} `json:"frames"`
}

// LoadSequence loads the recording called name (without the .json suffix).
func LoadSequence(name string) (*Sequence, error) {
	data, err := sequencesFS.ReadFile(path.Join("sequences", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var f sequenceFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}

	seq := &Sequence{Name: name, Description: f.Description, Steps: make([]Step, len(f.Frames))}
	for i, fr := range f.Frames {
		var frame detector.Frame
		if fr.Points != nil {
			frame = detector.Frame(fr.Points)
		}
		seq.Steps[i] = Step{Offset: time.Duration(fr.T) * time.Millisecond, Frame: frame}
	}
	return seq, nil
}

// SequenceNames lists every embedded recording.
func SequenceNames() ([]string, error) {
	entries, err := sequencesFS.ReadDir("sequences")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Replay calls fn for every step with its absolute time from start.
func (s *Sequence) Replay(start time.Time, fn func(at time.Time, f detector.Frame)) {
	for _, st := range s.Steps {
		fn(start.Add(st.Offset), st.Frame)
	}
}
