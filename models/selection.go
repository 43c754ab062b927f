package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AnyProviderValue is the wire value clients send to let the system pick a provider.
const AnyProviderValue = "any"

// ProviderSelection is either one specific provider or "any provider".
type ProviderSelection struct {
	providerID string
	any        bool
}

func SpecificProvider(id string) ProviderSelection {
	return ProviderSelection{providerID: id}
}

func AnyProvider() ProviderSelection {
	return ProviderSelection{any: true}
}

// ParseProviderSelection converts the raw request value ("any" or an id).
func ParseProviderSelection(raw string) (ProviderSelection, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ProviderSelection{}, errors.New("provider selection is required")
	case strings.EqualFold(raw, AnyProviderValue):
		return AnyProvider(), nil
	default:
		return SpecificProvider(raw), nil
	}
}

func (p ProviderSelection) IsAny() bool { return p.any }

// ProviderID is empty for the any-provider selection.
func (p ProviderSelection) ProviderID() string { return p.providerID }

// IsZero is true when nothing was selected.
func (p ProviderSelection) IsZero() bool { return !p.any && p.providerID == "" }

func (p ProviderSelection) String() string {
	if p.any {
		return AnyProviderValue
	}
	return p.providerID
}

type selectionJSON struct {
	Mode       string `json:"mode"`
	ProviderID string `json:"providerId,omitempty"`
}

func (p ProviderSelection) MarshalJSON() ([]byte, error) {
	if p.any {
		return json.Marshal(selectionJSON{Mode: "any"})
	}
	return json.Marshal(selectionJSON{Mode: "specific", ProviderID: p.providerID})
}

func (p *ProviderSelection) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		sel, err := ParseProviderSelection(raw)
		if err != nil {
			return err
		}
		*p = sel
		return nil
	}

	var v selectionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Mode {
	case "any":
		*p = AnyProvider()
	case "specific":
		if strings.TrimSpace(v.ProviderID) == "" {
			return errors.New("specific provider selection needs a providerId")
		}
		*p = SpecificProvider(v.ProviderID)
	default:
		return fmt.Errorf("unknown provider selection mode %q", v.Mode)
	}
	return nil
}
