package trade

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/LugersVoucherService/balltd/internal/catalog"
)

// Side identifies one party of a trade.
type Side string

const (
	Mine   Side = "mine"
	Theirs Side = "theirs"
)

// Sides lists both parties.
var Sides = []Side{Mine, Theirs}

func (s Side) Valid() bool {
	return s == Mine || s == Theirs
}

// ParseSide accepts "mine"/"my" and "theirs"/"their".
func ParseSide(s string) (Side, error) {
	switch s {
	case "mine", "my":
		return Mine, nil
	case "theirs", "their":
		return Theirs, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// Selection is one selected instance of a catalog item.
type Selection struct {
	Item       catalog.Item `json:"item"`
	InstanceID string       `json:"instance_id"`
}

// SideState holds what one party puts into the trade.
type SideState struct {
	Items      []Selection          `json:"items"`
	Currencies map[Currency]float64 `json:"currencies"`
}

func newSideState() SideState {
	return SideState{
		Items:      []Selection{},
		Currencies: map[Currency]float64{Gems: 0, Coins: 0, Robux: 0},
	}
}

// CatalogItems returns the selected items, one entry per instance.
func (s *SideState) CatalogItems() []catalog.Item {
	out := make([]catalog.Item, 0, len(s.Items))
	for _, sel := range s.Items {
		out = append(out, sel.Item)
	}
	return out
}

func (s SideState) clone() SideState {
	return SideState{
		Items:      slices.Clone(s.Items),
		Currencies: maps.Clone(s.Currencies),
	}
}

// State is the two-sided trade being evaluated.
type State struct {
	Mine   SideState `json:"mine"`
	Theirs SideState `json:"theirs"`
}

// NewState returns an empty trade.
func NewState() *State {
	return &State{
		Mine:   newSideState(),
		Theirs: newSideState(),
	}
}

// Side returns the state for one party, or nil for an unknown side.
func (s *State) Side(side Side) *SideState {
	switch side {
	case Mine:
		return &s.Mine
	case Theirs:
		return &s.Theirs
	default:
		return nil
	}
}

// Clone returns an independent copy of the trade.
func (s *State) Clone() *State {
	return &State{
		Mine:   s.Mine.clone(),
		Theirs: s.Theirs.clone(),
	}
}

// AddSelection appends an instance of item to side and returns its new
// instance id. It returns "" for an unknown side.
func (s *State) AddSelection(side Side, item catalog.Item) string {
	id := uuid.NewString()
	if !s.AddSelectionWithID(side, item, id) {
		return ""
	}
	return id
}

// AddSelectionWithID appends an instance using a caller-supplied id.
func (s *State) AddSelectionWithID(side Side, item catalog.Item, instanceID string) bool {
	st := s.Side(side)
	if st == nil {
		return false
	}
	st.Items = append(st.Items, Selection{Item: item, InstanceID: instanceID})
	return true
}

// RemoveSelection removes exactly the instance with the given id. Other
// instances of the same item are left in place.
func (s *State) RemoveSelection(side Side, instanceID string) bool {
	st := s.Side(side)
	if st == nil {
		return false
	}
	i := slices.IndexFunc(st.Items, func(sel Selection) bool { return sel.InstanceID == instanceID })
	if i < 0 {
		return false
	}
	st.Items = slices.Delete(st.Items, i, i+1)
	return true
}

// SetCurrency parses raw and stores the amount for kind, returning the
// stored value. Negative amounts are stored as zero.
func (s *State) SetCurrency(side Side, kind Currency, raw string) float64 {
	st := s.Side(side)
	if st == nil || !kind.Valid() {
		return 0
	}
	amount := ParseAbbreviation(raw)
	if amount < 0 {
		amount = 0
	}
	if st.Currencies == nil {
		st.Currencies = make(map[Currency]float64, len(Currencies))
	}
	st.Currencies[kind] = amount
	return amount
}
