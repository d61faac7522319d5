// Package profile describes a swing as an ordered list of named phases, each
// one run-search, and evaluates them against a table.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/himanishpuri/SwingScan/pkg/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid profile")

// Op names the search a phase runs.
type Op string

const (
	OpAbove  Op = "above"
	OpWithin Op = "within"
	OpBack   Op = "back"
	OpTwo    Op = "two"
	OpMulti  Op = "multi"
)

func (o Op) valid() bool {
	switch o {
	case OpAbove, OpWithin, OpBack, OpTwo, OpMulti:
		return true
	}
	return false
}

// Profile is a named, ordered set of phases.
type Profile struct {
	Name   string  `yaml:"name"`
	Phases []Phase `yaml:"phases"`
}

// Phase is one search. End left out (or -1) means "to the end of the table"
// going forward and "down to sample 0" going back. When After names an
// earlier phase, Begin is an offset from the index that phase found.
type Phase struct {
	Name       string    `yaml:"name"`
	Op         Op        `yaml:"op"`
	Channel    string    `yaml:"channel,omitempty"`
	Channels   []string  `yaml:"channels,omitempty"`
	Begin      int       `yaml:"begin"`
	End        *int      `yaml:"end,omitempty"`
	Threshold  float64   `yaml:"threshold,omitempty"`
	Thresholds []float64 `yaml:"thresholds,omitempty"`
	Lo         float64   `yaml:"lo,omitempty"`
	Hi         float64   `yaml:"hi,omitempty"`
	Window     int       `yaml:"window"`
	After      string    `yaml:"after,omitempty"`
}

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in swing profile: a rise of ax
// above 1 g, a backward settle check, a coincident ax/ay rise, and every ax
// band between -0.5 and 1.5 g.
func Default() *Profile {
	p, err := Parse(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("profile: embedded default: %v", err))
	}
	return p
}

// Load reads and validates a YAML profile.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profile: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile from r and validates it. Unknown keys are
// rejected.
func Parse(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidProfile)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every phase can run: known op and channels, a
// positive window and an After that names an earlier phase.
func (p *Profile) Validate() error {
	if len(p.Phases) == 0 {
		return fmt.Errorf("%w: no phases", ErrInvalidProfile)
	}

	seen := make(map[string]bool, len(p.Phases))
	for i := range p.Phases {
		ph := &p.Phases[i]
		if ph.Name == "" {
			return fmt.Errorf("%w: phase %d has no name", ErrInvalidProfile, i+1)
		}
		if seen[ph.Name] {
			return fmt.Errorf("%w: duplicate phase %q", ErrInvalidProfile, ph.Name)
		}
		if err := ph.validate(); err != nil {
			return fmt.Errorf("%w: phase %q: %v", ErrInvalidProfile, ph.Name, err)
		}
		if ph.After != "" && !seen[ph.After] {
			return fmt.Errorf("%w: phase %q: after %q does not name an earlier phase", ErrInvalidProfile, ph.Name, ph.After)
		}
		seen[ph.Name] = true
	}
	return nil
}

func (ph *Phase) validate() error {
	if !ph.Op.valid() {
		return fmt.Errorf("unknown op %q", ph.Op)
	}
	if ph.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", ph.Window)
	}

	if ph.Op == OpTwo {
		if len(ph.Channels) != 2 {
			return fmt.Errorf("op two needs 2 channels, got %d", len(ph.Channels))
		}
		if len(ph.Thresholds) != 2 {
			return fmt.Errorf("op two needs 2 thresholds, got %d", len(ph.Thresholds))
		}
		for _, ch := range ph.Channels {
			if _, err := models.ParseChannel(ch); err != nil {
				return err
			}
		}
		return nil
	}

	if ph.Channel == "" {
		return fmt.Errorf("op %s needs a channel", ph.Op)
	}
	if _, err := models.ParseChannel(ph.Channel); err != nil {
		return err
	}
	return nil
}

// Phase looks a phase up by name.
func (p *Profile) Phase(name string) (Phase, bool) {
	for _, ph := range p.Phases {
		if ph.Name == name {
			return ph, true
		}
	}
	return Phase{}, false
}
