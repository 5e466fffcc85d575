package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LugersVoucherService/balltd/internal/dispatch"
	"github.com/LugersVoucherService/balltd/internal/trade"
)

// Inbound message types.
const (
	TypeSelectItem  = "select_item"
	TypeRemoveItem  = "remove_item"
	TypeSetCurrency = "set_currency"
	TypeSetSearch   = "set_search"
	TypeSync        = "sync"
)

// Outbound message types.
const (
	TypeHello    = "hello"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// Error codes carried in error frames.
const (
	CodeBadRequest       = "bad_request"
	CodeRateLimited      = "rate_limited"
	CodeUnknownItem      = "unknown_item"
	CodeUnknownSelection = "unknown_selection"
	CodeInvalidSide      = "invalid_side"
	CodeInvalidCurrency  = "invalid_currency"
	CodeRejected         = "rejected"
)

// FreeText accepts either a JSON string or a JSON number and keeps the
// text as typed, so "2.5k" and 2500 both reach ParseAbbreviation.
type FreeText string

func (f *FreeText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FreeText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*f = FreeText(n.String())
	return nil
}

type inbound struct {
	Type       string   `json:"type"`
	Side       string   `json:"side,omitempty"`
	ItemID     string   `json:"item_id,omitempty"`
	InstanceID string   `json:"instance_id,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Amount     FreeText `json:"amount,omitempty"`
	Term       string   `json:"term,omitempty"`
}

var (
	errUnknownType = errors.New("unknown message type")
	errMalformed   = errors.New("malformed message")
	errRateLimited = errors.New("rate limit exceeded")
)

func (m inbound) intent() (dispatch.Intent, error) {
	switch m.Type {
	case TypeSelectItem:
		side, err := trade.ParseSide(m.Side)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrInvalidSide, err)
		}
		return dispatch.SelectItem{Side: side, ItemID: m.ItemID, InstanceID: m.InstanceID}, nil
	case TypeRemoveItem:
		side, err := trade.ParseSide(m.Side)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrInvalidSide, err)
		}
		return dispatch.RemoveItem{Side: side, InstanceID: m.InstanceID}, nil
	case TypeSetCurrency:
		side, err := trade.ParseSide(m.Side)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrInvalidSide, err)
		}
		kind, err := trade.ParseCurrency(m.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrInvalidCurrency, err)
		}
		return dispatch.SetCurrency{Side: side, Kind: kind, Raw: string(m.Amount)}, nil
	case TypeSetSearch:
		return dispatch.SetSearchTerm{Term: m.Term}, nil
	case TypeSync:
		return dispatch.RequestSnapshot{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, m.Type)
	}
}

type outbound struct {
	Type        string             `json:"type"`
	Session     string             `json:"session,omitempty"`
	CatalogSize int                `json:"catalog_size,omitempty"`
	Snapshot    *dispatch.Snapshot `json:"snapshot,omitempty"`
	Code        string             `json:"code,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func errorFrame(err error) outbound {
	return outbound{Type: TypeError, Code: errorCode(err), Error: err.Error()}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrUnknownItem):
		return CodeUnknownItem
	case errors.Is(err, dispatch.ErrUnknownSelection):
		return CodeUnknownSelection
	case errors.Is(err, dispatch.ErrInvalidSide):
		return CodeInvalidSide
	case errors.Is(err, dispatch.ErrInvalidCurrency):
		return CodeInvalidCurrency
	case errors.Is(err, errRateLimited):
		return CodeRateLimited
	case errors.Is(err, errUnknownType), errors.Is(err, errMalformed):
		return CodeBadRequest
	default:
		return CodeRejected
	}
}
