package usecase

import (
	"strconv"
	"strings"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

// unitAliases maps raw spoken unit tokens to canonical units. Tokens not in
// this table and not already canonical collapse to pcs: the bill always
// carries one of the five canonical units, never a free-form token.
var unitAliases = map[string]domain.Unit{
	"kilo":   domain.UnitKg,
	"kgs":    domain.UnitKg,
	"gm":     domain.UnitGram,
	"grams":  domain.UnitGram,
	"ltr":    domain.UnitLitre,
	"l":      domain.UnitLitre,
	"pc":     domain.UnitPcs,
	"piece":  domain.UnitPcs,
	"pieces": domain.UnitPcs,
}

// ParseQuantity turns free-text quantity into a positive amount and a
// canonical unit. Unparseable input is not an error: the explicit default
// is one piece.
func ParseQuantity(text string) (float64, domain.Unit) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 1.0, domain.UnitPcs
	}

	quantity := 1.0
	rawUnit := ""

	tokens := strings.Fields(s)
	if len(tokens) == 1 {
		// Compact forms like "2kg" or "1.5ltr": longest leading numeric
		// run, then the trailing alphabetic run.
		num, unit := splitCompact(tokens[0])
		if num != "" {
			if v, err := strconv.ParseFloat(num, 64); err == nil {
				quantity = v
			}
		}
		rawUnit = unit
	} else {
		if v, err := strconv.ParseFloat(tokens[0], 64); err == nil {
			quantity = v
		}
		rawUnit = tokens[1]
	}

	if quantity <= 0 {
		quantity = 1.0
	}
	return quantity, canonicalUnit(rawUnit)
}

func splitCompact(token string) (num, unit string) {
	i := 0
	for i < len(token) && (token[i] == '.' || (token[i] >= '0' && token[i] <= '9')) {
		i++
	}
	num = token[:i]
	var b strings.Builder
	for _, r := range token[i:] {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return num, b.String()
}

func canonicalUnit(raw string) domain.Unit {
	if raw == "" {
		return domain.UnitPcs
	}
	if u, ok := unitAliases[raw]; ok {
		return u
	}
	if u := domain.Unit(raw); u.IsCanonical() {
		return u
	}
	return domain.UnitPcs
}

// NormalizeItems parses every raw line request and then re-merges
// duplicates. The extraction prompt asks the model to merge repeated
// mentions itself, but that behavior is not a contract, so it is always
// re-done here: items sharing a case-insensitive name and the same unit
// sum their quantities into the first occurrence; same name with a
// different unit stays a separate line. First-seen casing and order win.
func NormalizeItems(items []domain.RawLineRequest) []domain.NormalizedLineItem {
	type mergeKey struct {
		name string
		unit domain.Unit
	}

	out := make([]domain.NormalizedLineItem, 0, len(items))
	index := make(map[mergeKey]int, len(items))

	for _, raw := range items {
		name := strings.TrimSpace(raw.Name)
		quantity, unit := ParseQuantity(raw.QuantityText)

		key := mergeKey{name: strings.ToLower(name), unit: unit}
		if at, ok := index[key]; ok {
			out[at].Quantity += quantity
			continue
		}
		index[key] = len(out)
		out = append(out, domain.NormalizedLineItem{
			Name:     name,
			Quantity: quantity,
			Unit:     unit,
		})
	}
	return out
}
