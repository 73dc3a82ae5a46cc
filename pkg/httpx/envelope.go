package httpx

import (
	"encoding/json"
	"fmt"
)

// Envelope is the accounts-API response wrapper: payloads arrive under a
// data key next to a success flag and human-readable message.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Page decodes list endpoints that respond either with a DRF-style
// paginated object or a bare JSON array.
type Page[T any] struct {
	Count   int
	Results []T
}

func (p *Page[T]) UnmarshalJSON(raw []byte) error {
	if len(raw) > 0 && raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		p.Count = len(items)
		p.Results = items
		return nil
	}

	var paged struct {
		Count   int `json:"count"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &paged); err != nil {
		return fmt.Errorf("decode paginated body: %w", err)
	}
	p.Count = paged.Count
	if p.Count == 0 {
		p.Count = len(paged.Results)
	}
	p.Results = paged.Results
	return nil
}
