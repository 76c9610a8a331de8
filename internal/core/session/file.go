package session

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/feedback/internal/core/window"
)

// File is the on-disk form of a session definition file. A file may hold
// several YAML documents, each with a list of sessions.
type File struct {
	Sessions []Session `yaml:"sessions"`
}

// DecodeFile reads every session from a YAML stream. Unknown keys are
// rejected so typos in field names do not silently drop configuration.
func DecodeFile(r io.Reader) ([]Session, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []Session
	for doc := 0; ; doc++ {
		var f File
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		for _, s := range f.Sessions {
			if s.Window.Kind == "" {
				s.Window.Kind = window.KindNormal
			}
			out = append(out, s)
		}
	}

	return out, nil
}
