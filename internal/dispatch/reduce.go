// Package dispatch applies user intents to a trade session.
//
// Every mutation goes through Reduce, which is pure: it returns a new State
// and leaves its input untouched. A Dispatcher owns one State on a single
// goroutine and publishes a Snapshot after every applied intent.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/LugersVoucherService/balltd/internal/catalog"
	"github.com/LugersVoucherService/balltd/internal/trade"
)

var (
	ErrUnknownItem        = errors.New("unknown item")
	ErrUnknownSelection   = errors.New("unknown selection")
	ErrInvalidSide        = errors.New("invalid side")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrMissingInstanceID  = errors.New("missing instance id")
	ErrUnknownIntent      = errors.New("unknown intent")
	ErrDispatcherStopped  = errors.New("dispatcher stopped")
	ErrIntentFailed       = errors.New("intent failed")
	ErrDuplicateSelection = errors.New("duplicate instance id")
)

// Intent is a user action against a session.
type Intent interface {
	intent()
}

// SelectItem adds one instance of a catalog item to a side.
type SelectItem struct {
	Side       trade.Side
	ItemID     string
	InstanceID string
}

// RemoveItem removes exactly one selected instance.
type RemoveItem struct {
	Side       trade.Side
	InstanceID string
}

// SetCurrency replaces a side's amount of one currency with free-text input.
type SetCurrency struct {
	Side trade.Side
	Kind trade.Currency
	Raw  string
}

// SetSearchTerm filters the item list.
type SetSearchTerm struct {
	Term string
}

// RequestSnapshot changes nothing and asks for the current snapshot.
type RequestSnapshot struct{}

func (SelectItem) intent()      {}
func (RemoveItem) intent()      {}
func (SetCurrency) intent()     {}
func (SetSearchTerm) intent()   {}
func (RequestSnapshot) intent() {}

// State is everything a session knows.
type State struct {
	Catalog    *catalog.Catalog
	Trade      *trade.State
	SearchTerm string
	Results    []catalog.Item
}

// NewState returns an empty trade over cat with an unfiltered item list.
func NewState(cat *catalog.Catalog) State {
	return State{
		Catalog: cat,
		Trade:   trade.NewState(),
		Results: cat.Items(),
	}
}

// Reduce applies in to st. On error st is returned as it was.
func Reduce(st State, in Intent) (State, error) {
	if st.Trade == nil {
		st.Trade = trade.NewState()
	}

	switch in := in.(type) {
	case SelectItem:
		if !in.Side.Valid() {
			return st, fmt.Errorf("%w: %q", ErrInvalidSide, in.Side)
		}
		if in.InstanceID == "" {
			return st, ErrMissingInstanceID
		}
		item, ok := st.Catalog.Lookup(in.ItemID)
		if !ok {
			return st, fmt.Errorf("%w: %q", ErrUnknownItem, in.ItemID)
		}
		if hasInstance(st.Trade, in.InstanceID) {
			return st, fmt.Errorf("%w: %q", ErrDuplicateSelection, in.InstanceID)
		}
		next := st
		next.Trade = st.Trade.Clone()
		next.Trade.AddSelectionWithID(in.Side, item, in.InstanceID)
		return next, nil

	case RemoveItem:
		if !in.Side.Valid() {
			return st, fmt.Errorf("%w: %q", ErrInvalidSide, in.Side)
		}
		next := st
		next.Trade = st.Trade.Clone()
		if !next.Trade.RemoveSelection(in.Side, in.InstanceID) {
			return st, fmt.Errorf("%w: %q", ErrUnknownSelection, in.InstanceID)
		}
		return next, nil

	case SetCurrency:
		if !in.Side.Valid() {
			return st, fmt.Errorf("%w: %q", ErrInvalidSide, in.Side)
		}
		if !in.Kind.Valid() {
			return st, fmt.Errorf("%w: %q", ErrInvalidCurrency, in.Kind)
		}
		next := st
		next.Trade = st.Trade.Clone()
		next.Trade.SetCurrency(in.Side, in.Kind, in.Raw)
		return next, nil

	case SetSearchTerm:
		next := st
		next.SearchTerm = in.Term
		next.Results = st.Catalog.Filter(in.Term)
		return next, nil

	case RequestSnapshot:
		return st, nil

	default:
		return st, fmt.Errorf("%w: %T", ErrUnknownIntent, in)
	}
}

func hasInstance(st *trade.State, id string) bool {
	for _, side := range trade.Sides {
		for _, sel := range st.Side(side).Items {
			if sel.InstanceID == id {
				return true
			}
		}
	}
	return false
}
