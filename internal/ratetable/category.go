package ratetable

import (
	"fmt"
	"strings"

	"ratedesk/internal/model"
)

// Category is a loan-type filter value.
type Category string

const (
	CategoryAll            Category = "all"
	CategoryARM            Category = "arm"
	CategoryConventional30 Category = "conventional30"
	CategoryConventional20 Category = "conventional20"
	CategoryConventional15 Category = "conventional15"
	CategoryJumbo30        Category = "jumbo30"
	CategoryJumbo15        Category = "jumbo15"
)

// Categories lists every selectable category in selector order.
var Categories = []Category{
	CategoryAll,
	CategoryARM,
	CategoryConventional30,
	CategoryConventional20,
	CategoryConventional15,
	CategoryJumbo30,
	CategoryJumbo15,
}

// ParseCategory parses a selector value.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown loan type category %q", s)
}

// Headers holds the category-specific labels of the two derived columns.
type Headers struct {
	BestRate    string
	BestProgram string
}

// HeadersFor returns the derived column labels for a category.
func HeadersFor(c Category) Headers {
	switch c {
	case CategoryAll:
		return Headers{"BEST RATE", "OVERALL BEST PROGRAM"}
	case CategoryARM:
		return Headers{"BEST ARM RATE", "BEST ARM PROGRAM"}
	case CategoryConventional30:
		return Headers{"BEST 30YR CONV FIXED RATE", "BEST 30YR CONV FIXED PROGRAM"}
	case CategoryConventional20:
		return Headers{"BEST 20YR CONV FIXED RATE", "BEST 20YR CONV FIXED PROGRAM"}
	case CategoryConventional15:
		return Headers{"BEST 15YR CONV FIXED RATE", "BEST 15YR CONV FIXED PROGRAM"}
	case CategoryJumbo30:
		return Headers{"BEST 30YR JUMBO FIXED RATE", "BEST 30YR JUMBO FIXED PROGRAM"}
	case CategoryJumbo15:
		return Headers{"BEST 15YR JUMBO FIXED RATE", "BEST 15YR JUMBO FIXED PROGRAM"}
	default:
		return Headers{"BEST RATE", "BEST PROGRAM"}
	}
}

// Label is a short human name for the category, used by selectors.
func (c Category) Label() string {
	switch c {
	case CategoryAll:
		return "All loan types"
	case CategoryARM:
		return "ARM"
	case CategoryConventional30:
		return "30yr conventional"
	case CategoryConventional20:
		return "20yr conventional"
	case CategoryConventional15:
		return "15yr conventional"
	case CategoryJumbo30:
		return "30yr jumbo"
	case CategoryJumbo15:
		return "15yr jumbo"
	default:
		return string(c)
	}
}

// Next returns the category after c in selector order, wrapping around.
func (c Category) Next() Category {
	return c.step(1)
}

// Prev returns the category before c in selector order, wrapping around.
func (c Category) Prev() Category {
	return c.step(-1)
}

func (c Category) step(delta int) Category {
	for i, known := range Categories {
		if known == c {
			n := len(Categories)
			return Categories[((i+delta)%n+n)%n]
		}
	}
	return CategoryAll
}

type termType struct {
	term string
	typ  model.LoanType
}

var fixedTerms = map[Category]termType{
	CategoryConventional30: {model.Term30Years, model.LoanTypeConventional},
	CategoryConventional20: {model.Term20Years, model.LoanTypeConventional},
	CategoryConventional15: {model.Term15Years, model.LoanTypeConventional},
	CategoryJumbo30:        {model.Term30Years, model.LoanTypeJumbo},
	CategoryJumbo15:        {model.Term15Years, model.LoanTypeJumbo},
}

// qualifies reports whether a record makes its row eligible under c.
// "all" is handled by the caller since it qualifies rows with no records.
func qualifies(c Category, r model.RateRecord) bool {
	if c == CategoryARM {
		return r.SimplifiedType == model.LoanTypeARM
	}
	tt, ok := fixedTerms[c]
	if !ok {
		return false
	}
	return r.YearTerm == tt.term && r.SimplifiedType == tt.typ
}

// selectable reports whether a record may be picked as the best rate under c.
// Fixed-rate categories additionally exclude programs named as ARMs.
func selectable(c Category, r model.RateRecord) bool {
	if r.NumericRate == nil {
		return false
	}
	switch c {
	case CategoryAll:
		return true
	case CategoryARM:
		return r.SimplifiedType == model.LoanTypeARM
	}
	return qualifies(c, r) && !strings.Contains(r.LoanTypeFull, "ARM")
}
