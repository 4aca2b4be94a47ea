// Package netdef reads network definitions from YAML (or JSON) documents and
// builds the networks they describe.
//
// A file may hold several documents separated by "---":
//
//	name: ring-30
//	kind: rewired
//	code: 30
//	size: 5
//	boundary: [0, 1]
//	---
//	name: toy
//	kind: logic
//	names: [a, b, c]
//	table:
//	  - inputs: [1, 2]
//	    conditions: ["11"]
//	---
//	name: pair
//	kind: threshold
//	theta: negative
//	weights: [[0, 1], [-1, 0]]
//	thresholds: [0, 0.5]
package netdef

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/boolnet/internal/automata"
	"github.com/nvandessel/boolnet/internal/logic"
	"github.com/nvandessel/boolnet/internal/network"
	"github.com/nvandessel/boolnet/internal/neterr"
	"github.com/nvandessel/boolnet/internal/threshold"
)

// Kind is the network family of a definition.
type Kind string

const (
	KindRewired   Kind = "rewired"   // Rewired elementary cellular automaton
	KindLogic     Kind = "logic"     // Truth-table network
	KindThreshold Kind = "threshold" // Weight/threshold network
)

// Definition describes one network.
type Definition struct {
	Name        string `json:"name" yaml:"name" validate:"required,max=128"`
	Kind        Kind   `json:"kind" yaml:"kind" validate:"required,oneof=rewired logic threshold"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Rewired automata.
	Code     *int    `json:"code,omitempty" yaml:"code,omitempty" validate:"omitempty,gte=0,lte=255"`
	Size     *int    `json:"size,omitempty" yaml:"size,omitempty" validate:"omitempty,gte=0"`
	Wiring   [][]int `json:"wiring,omitempty" yaml:"wiring,omitempty" validate:"omitempty,len=3"`
	Boundary []int   `json:"boundary,omitempty" yaml:"boundary,omitempty" validate:"omitempty,len=2,dive,oneof=0 1"`

	// Logic and threshold networks.
	Names []string `json:"names,omitempty" yaml:"names,omitempty" validate:"omitempty,dive,required"`

	// Logic networks.
	Table  []logic.Row     `json:"table,omitempty" yaml:"table,omitempty" validate:"required_if=Kind logic"`
	Random *Randomization `json:"random,omitempty" yaml:"random,omitempty"`

	// Threshold networks.
	Weights    [][]float64     `json:"weights,omitempty" yaml:"weights,omitempty" validate:"required_if=Kind threshold"`
	Thresholds []float64       `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Theta      threshold.Theta `json:"theta,omitempty" yaml:"theta,omitempty" validate:"omitempty,oneof=split negative positive"`
}

// Randomization redraws a network from the same seed every time the
// definition is built. Logic networks take the modes fixed, shuffled and
// free (a random table, see logic.Random) and an optional bias P. Threshold
// networks take degree and size (edge rewiring, see threshold.Rewire).
type Randomization struct {
	Mode string    `json:"mode" yaml:"mode" validate:"required,oneof=fixed shuffled free degree size"`
	P    []float64 `json:"p,omitempty" yaml:"p,omitempty" validate:"omitempty,dive,gte=0,lte=1"`
	Seed uint64    `json:"seed" yaml:"seed"`
}

var validate = validator.New()

// Validate checks the document structure. Semantic checks (wiring ranges,
// table inputs, weight values) happen in Build. Empty lists are treated as
// absent.
func (d *Definition) Validate() error {
	d.normalize()
	if err := validate.Struct(d); err != nil {
		return neterr.Configf("network definition %q: %v", d.Name, err)
	}
	switch d.Kind {
	case KindRewired:
		if d.Code == nil {
			return neterr.Configf("network definition %q: rewired networks need a code", d.Name)
		}
		if len(d.Table) > 0 || d.Random != nil || d.hasThresholdFields() || len(d.Names) > 0 {
			return neterr.Configf("network definition %q: rewired networks take no table, random, weights, thresholds, theta or names", d.Name)
		}
	case KindLogic:
		if d.hasRewiredFields() || d.hasThresholdFields() {
			return neterr.Configf("network definition %q: logic networks take no code, size, wiring, boundary, weights, thresholds or theta", d.Name)
		}
		if d.Random != nil {
			if _, err := logic.ParseConnections(d.Random.Mode); err != nil {
				return neterr.Configf("network definition %q: random: %v", d.Name, err)
			}
		}
	case KindThreshold:
		if d.hasRewiredFields() || len(d.Table) > 0 {
			return neterr.Configf("network definition %q: threshold networks take no code, size, wiring, boundary or table", d.Name)
		}
		if d.Random != nil {
			if _, err := threshold.ParseRewiring(d.Random.Mode); err != nil {
				return neterr.Configf("network definition %q: random: %v", d.Name, err)
			}
			if d.Random.P != nil {
				return neterr.Configf("network definition %q: rewiring takes no bias", d.Name)
			}
		}
	}
	return nil
}

func (d *Definition) normalize() {
	if len(d.Boundary) == 0 {
		d.Boundary = nil
	}
	if len(d.Wiring) == 0 {
		d.Wiring = nil
	}
	if len(d.Thresholds) == 0 {
		d.Thresholds = nil
	}
	if d.Random != nil && len(d.Random.P) == 0 {
		d.Random.P = nil
	}
}

func (d *Definition) hasRewiredFields() bool {
	return d.Code != nil || d.Size != nil || d.Wiring != nil || d.Boundary != nil
}

func (d *Definition) hasThresholdFields() bool {
	return d.Weights != nil || d.Thresholds != nil || d.Theta != ""
}

// Build validates the definition and constructs its network.
func (d *Definition) Build() (network.Network, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var (
		net network.Network
		err error
	)
	switch d.Kind {
	case KindRewired:
		net, err = d.buildRewired()
	case KindThreshold:
		net, err = d.buildThreshold()
	default:
		net, err = d.buildLogic()
	}
	if err != nil {
		return nil, fmt.Errorf("building %q: %w", d.Name, err)
	}
	return net, nil
}

func (d *Definition) buildRewired() (*automata.RewiredECA, error) {
	var opts []automata.Option
	if d.Size != nil {
		opts = append(opts, automata.WithSize(*d.Size))
	}
	if d.Wiring != nil {
		opts = append(opts, automata.WithWiring(d.Wiring))
	}
	if len(d.Boundary) == 2 {
		opts = append(opts, automata.WithBoundary(d.Boundary[0], d.Boundary[1]))
	}
	return automata.NewRewired(*d.Code, opts...)
}

func (d *Definition) buildLogic() (*logic.Network, error) {
	var opts []logic.Option
	if d.Names != nil {
		opts = append(opts, logic.WithNames(d.Names...))
	}
	net, err := logic.New(d.Table, opts...)
	if err != nil || d.Random == nil {
		return net, err
	}
	return logic.Random(net, d.Random.rng(), logic.Connections(d.Random.Mode), d.Random.P...)
}

func (d *Definition) buildThreshold() (*threshold.Network, error) {
	var opts []threshold.Option
	if d.Names != nil {
		opts = append(opts, threshold.WithNames(d.Names...))
	}
	if d.Theta != "" {
		opts = append(opts, threshold.WithTheta(d.Theta))
	}
	net, err := threshold.New(d.Weights, d.Thresholds, opts...)
	if err != nil || d.Random == nil {
		return net, err
	}
	return threshold.Rewire(net, d.Random.rng(), threshold.Rewiring(d.Random.Mode))
}

func (r *Randomization) rng() *rand.Rand {
	return rand.New(rand.NewPCG(r.Seed, r.Seed))
}

// Randomized returns a copy of a logic or threshold definition that is
// redrawn from seed with the given mode. The copy is renamed so its reports
// stay apart from the base network's.
func (d *Definition) Randomized(mode string, seed uint64, p []float64) (*Definition, error) {
	if d.Kind == KindRewired {
		return nil, neterr.Configf("network %q is %s; only logic and threshold networks can be randomized", d.Name, d.Kind)
	}
	out := *d
	out.Name = fmt.Sprintf("%s-random-%s-s%d", d.Name, mode, seed)
	out.Random = &Randomization{Mode: mode, P: p, Seed: seed}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fingerprint returns the hex SHA-256 of the definition's canonical YAML.
// Two definitions with the same content share a fingerprint regardless of
// formatting in the source file.
func (d *Definition) Fingerprint() string {
	data, err := yaml.Marshal(d)
	if err != nil {
		// Definition only holds plain data; Marshal cannot fail.
		panic(fmt.Sprintf("netdef: marshal definition: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ParseAll decodes every document in data. Unknown fields are rejected.
func ParseAll(data []byte) ([]*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var defs []*Definition
	for {
		var d Definition
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, neterr.Configf("parsing network definition %d: %v", len(defs)+1, err)
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, &d)
	}
	if len(defs) == 0 {
		return nil, neterr.Configf("no network definitions found")
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			return nil, neterr.Configf("duplicate network name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return defs, nil
}

// Parse decodes a single-document definition.
func Parse(data []byte) (*Definition, error) {
	defs, err := ParseAll(data)
	if err != nil {
		return nil, err
	}
	if len(defs) != 1 {
		return nil, neterr.Configf("expected one network definition, got %d", len(defs))
	}
	return defs[0], nil
}

// LoadAll reads every definition in the file at path.
func LoadAll(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network file: %w", err)
	}
	return ParseAll(data)
}

// Load reads the definition called name from the file at path. An empty name
// selects the file's only definition.
func Load(path, name string) (*Definition, error) {
	defs, err := LoadAll(path)
	if err != nil {
		return nil, err
	}
	return Select(defs, name)
}

// Select returns the definition called name. An empty name is allowed only
// when there is exactly one definition.
func Select(defs []*Definition, name string) (*Definition, error) {
	if name == "" {
		if len(defs) != 1 {
			return nil, neterr.Configf("%d networks defined; choose one by name", len(defs))
		}
		return defs[0], nil
	}
	for _, d := range defs {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, neterr.Configf("network %q not found", name)
}

// Rewired returns a definition for a nearest-neighbor rewired automaton.
// An empty boundary gives a periodic lattice.
func Rewired(name string, code, size int, boundary []int) *Definition {
	if len(boundary) == 0 {
		boundary = nil
	}
	return &Definition{
		Name:     name,
		Kind:     KindRewired,
		Code:     &code,
		Size:     &size,
		Boundary: boundary,
	}
}
