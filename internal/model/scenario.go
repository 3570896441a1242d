package model

import "fmt"

// Scenario is one strategy under comparison. The order of Upgrades is the
// purchase priority: the first element is bought first, once affordable.
type Scenario struct {
	Name     string    `json:"name"`
	Upgrades []Upgrade `json:"upgrades"`
}

// NewScenario returns an empty scenario with the given name.
func NewScenario(name string) *Scenario {
	return &Scenario{Name: name}
}

// Len returns the number of queued upgrades.
func (s *Scenario) Len() int {
	return len(s.Upgrades)
}

// Append adds an upgrade at the end of the queue.
func (s *Scenario) Append(u Upgrade) {
	s.Upgrades = append(s.Upgrades, u)
}

// RemoveAt deletes the upgrade at index, keeping the order of the rest.
func (s *Scenario) RemoveAt(index int) error {
	if index < 0 || index >= len(s.Upgrades) {
		return fmt.Errorf("%w: cannot remove upgrade %d from a queue of %d", ErrIndexOutOfRange, index, len(s.Upgrades))
	}
	s.Upgrades = append(s.Upgrades[:index], s.Upgrades[index+1:]...)
	return nil
}

// SwapAdjacent exchanges two neighbouring upgrades, used to move an upgrade up
// or down the queue.
func (s *Scenario) SwapAdjacent(a, b int) error {
	n := len(s.Upgrades)
	if a < 0 || a >= n || b < 0 || b >= n {
		return fmt.Errorf("%w: cannot swap upgrades %d and %d in a queue of %d", ErrIndexOutOfRange, a, b, n)
	}
	if a-b != 1 && b-a != 1 {
		return fmt.Errorf("%w: upgrades %d and %d are not adjacent", ErrIndexOutOfRange, a, b)
	}
	s.Upgrades[a], s.Upgrades[b] = s.Upgrades[b], s.Upgrades[a]
	return nil
}

// Snapshot returns an independent copy that later edits cannot affect.
func (s *Scenario) Snapshot() Scenario {
	snap := Scenario{Name: s.Name}
	if len(s.Upgrades) > 0 {
		snap.Upgrades = make([]Upgrade, len(s.Upgrades))
		copy(snap.Upgrades, s.Upgrades)
	}
	return snap
}

// Validate checks every queued upgrade.
func (s Scenario) Validate() error {
	for i, u := range s.Upgrades {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("upgrade %d: %w", i+1, err)
		}
	}
	return nil
}
