package ollama

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

// quantityText tolerates models that emit quantities as JSON numbers
// instead of the requested strings.
type quantityText string

func (q *quantityText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = quantityText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*q = quantityText(n.String())
		return nil
	}
	return fmt.Errorf("quantity is neither string nor number: %s", data)
}

type orderWire struct {
	Customer string `json:"customer"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Items    []struct {
		Name     string       `json:"name"`
		Quantity quantityText `json:"quantity"`
	} `json:"items"`
}

// parseOrderResponse recovers an order from whatever the model produced.
// Code fences and any prose before the first '{' are stripped first; a
// response without a JSON object at all is an error.
func parseOrderResponse(raw string) (domain.ExtractedOrder, error) {
	cleaned := stripModelDecoration(raw)

	idx := strings.Index(cleaned, "{")
	if idx < 0 {
		return domain.ExtractedOrder{}, errors.New("no json object in model response")
	}
	cleaned = cleaned[idx:]

	// Decode only the first JSON value so trailing prose after the
	// closing brace does not poison the parse.
	var wire orderWire
	if err := json.NewDecoder(strings.NewReader(cleaned)).Decode(&wire); err != nil {
		return domain.ExtractedOrder{}, fmt.Errorf("decode order: %w", err)
	}

	order := domain.ExtractedOrder{
		Customer: strings.TrimSpace(wire.Customer),
		Phone:    strings.TrimSpace(wire.Phone),
		Address:  strings.TrimSpace(wire.Address),
		Items:    make([]domain.RawLineRequest, 0, len(wire.Items)),
	}
	for _, item := range wire.Items {
		order.Items = append(order.Items, domain.RawLineRequest{
			Name:         strings.TrimSpace(item.Name),
			QuantityText: strings.TrimSpace(string(item.Quantity)),
		})
	}
	return order, nil
}

// stripModelDecoration drops markdown code fences wrapping the payload.
func stripModelDecoration(raw string) string {
	s := strings.TrimSpace(raw)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
