// Package status determines which components have updates available.
package status

import "github.com/printbed/klippctl/internal/component"

// UpdateStatus classifies a component's version pair.
type UpdateStatus string

const (
	// UpToDate means both sides were read and match.
	UpToDate UpdateStatus = "up_to_date"
	// UpdateAvailable means both sides were read and differ.
	UpdateAvailable UpdateStatus = "update_available"
	// Unknown means at least one side could not be read; nothing is offered.
	Unknown UpdateStatus = "unknown"
)

// VersionPair holds both sides of a component's version comparison. An
// empty string means that side could not be read.
type VersionPair struct {
	Local  string
	Remote string
}

// Comparable reports whether both sides of the pair were read successfully.
func (p VersionPair) Comparable() bool {
	return p.Local != "" && p.Remote != ""
}

// Compare classifies the pair. The strings are compared verbatim: the read
// layers already normalized them, and guessing around unreadable sides
// would risk offering an update that does not exist.
func (p VersionPair) Compare() UpdateStatus {
	if !p.Comparable() {
		return Unknown
	}
	if p.Local == p.Remote {
		return UpToDate
	}
	return UpdateAvailable
}

// Result is one component's outcome in a status pass.
type Result struct {
	Component component.Descriptor
	Pair      VersionPair
	Status    UpdateStatus
	// Upgrades counts pending packages; set for the system component only.
	Upgrades int
	// Err preserves why a side could not be read. A failed read degrades
	// the component to Unknown instead of failing the pass.
	Err error
}

// Report is a full pass over the registry.
type Report struct {
	Results []Result
	Actions ActionSet
}

// ActionSet is the ordered, deduplicated set of update actions a pass
// offers. It is rebuilt from scratch on every pass.
type ActionSet struct {
	ids []component.Action
}

// Add appends an action unless it is already present.
func (s *ActionSet) Add(a component.Action) {
	if s.Contains(a) {
		return
	}
	s.ids = append(s.ids, a)
}

// Contains reports whether a is in the set.
func (s ActionSet) Contains(a component.Action) bool {
	for _, id := range s.ids {
		if id == a {
			return true
		}
	}
	return false
}

// IDs returns the actions in insertion order.
func (s ActionSet) IDs() []component.Action {
	out := make([]component.Action, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of actions in the set.
func (s ActionSet) Len() int {
	return len(s.ids)
}
