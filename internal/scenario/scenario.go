// Package scenario reads, writes and generates fleet scenarios.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// Scenario is one planning problem: a fleet, its deliveries and the
// airspace restrictions.
type Scenario struct {
	Name       string
	Width      float64
	Height     float64
	Seed       uint64 // generator seed, 0 for hand-written scenarios
	Drones     []*core.Drone
	Deliveries []*core.Delivery
	Zones      []*core.NoFlyZone
}

// Validate checks every record and id uniqueness per kind.
func (s *Scenario) Validate() error {
	var errs []error

	drones := make(map[core.DroneID]bool)
	for _, d := range s.Drones {
		if drones[d.ID] {
			errs = append(errs, fmt.Errorf("drone %d: %w", d.ID, core.ErrDuplicateID))
		}
		drones[d.ID] = true
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	deliveries := make(map[core.DeliveryID]bool)
	for _, dl := range s.Deliveries {
		if deliveries[dl.ID] {
			errs = append(errs, fmt.Errorf("delivery %d: %w", dl.ID, core.ErrDuplicateID))
		}
		deliveries[dl.ID] = true
		if err := dl.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	zones := make(map[core.ZoneID]bool)
	for _, z := range s.Zones {
		if zones[z.ID] {
			errs = append(errs, fmt.Errorf("zone %d: %w", z.ID, core.ErrDuplicateID))
		}
		zones[z.ID] = true
		if err := z.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clone returns a copy whose drones and deliveries can be mutated without
// touching s. Zones are immutable and shared.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Drones = make([]*core.Drone, len(s.Drones))
	for i, d := range s.Drones {
		c.Drones[i] = d.Clone()
	}
	c.Deliveries = make([]*core.Delivery, len(s.Deliveries))
	for i, dl := range s.Deliveries {
		cp := *dl
		c.Deliveries[i] = &cp
	}
	c.Zones = append([]*core.NoFlyZone(nil), s.Zones...)
	return &c
}

// Decode reads a YAML scenario and validates it.
func Decode(r io.Reader) (*Scenario, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	s, err := doc.Scenario()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return s, nil
}

// Parse decodes a YAML scenario held in memory.
func Parse(data []byte) (*Scenario, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes s as YAML.
func (s *Scenario) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromScenario(s)); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return enc.Close()
}

// Save writes s to path.
func (s *Scenario) Save(path string) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
