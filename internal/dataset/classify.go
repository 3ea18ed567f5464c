package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"ratedesk/internal/model"
)

var termPattern = regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]*(?:year|yr)s?\b`)

// ClassifyLoanType maps a program name to its coarse loan type.
// Jumbo is checked first so a jumbo ARM still counts as a jumbo product.
func ClassifyLoanType(name string) model.LoanType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "jumbo"):
		return model.LoanTypeJumbo
	case strings.Contains(name, "ARM"):
		return model.LoanTypeARM
	case strings.Contains(lower, "fixed"),
		strings.Contains(lower, "conventional"),
		strings.Contains(lower, "conforming"):
		return model.LoanTypeConventional
	default:
		return model.LoanTypeOther
	}
}

// ClassifyYearTerm returns the "N Years" bucket named in a program name.
func ClassifyYearTerm(name string) string {
	m := termPattern.FindStringSubmatch(name)
	if m == nil {
		return model.TermOther
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return model.TermOther
	}
	return strconv.Itoa(n) + " Years"
}

// ParseRate parses a display rate such as "6.125%". It returns nil for
// anything that is not a finite number.
func ParseRate(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NewRateRecord builds a record from a program name and rate string,
// deriving the numeric rate, loan type and term.
func NewRateRecord(loanType, rateStr string) model.RateRecord {
	loanType = strings.TrimSpace(loanType)
	rateStr = strings.TrimSpace(rateStr)
	return model.RateRecord{
		LoanTypeFull:   loanType,
		RateStr:        rateStr,
		NumericRate:    ParseRate(rateStr),
		SimplifiedType: ClassifyLoanType(loanType),
		YearTerm:       ClassifyYearTerm(loanType),
	}
}

// ParseRateList splits a scraped rates cell ("<type>-<rate>|<type>-<rate>")
// into records. "None" and empty cells yield no records. The rate is the
// text after the last "-" so program names may contain hyphens.
func ParseRateList(cell string) []model.RateRecord {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "none") {
		return nil
	}

	var out []model.RateRecord
	for _, part := range strings.Split(cell, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, "-")
		if idx < 0 {
			out = append(out, NewRateRecord(part, ""))
			continue
		}
		out = append(out, NewRateRecord(part[:idx], part[idx+1:]))
	}
	return out
}

// normalizeRecord fills derived fields that a JSON source left empty.
func normalizeRecord(r model.RateRecord) model.RateRecord {
	if r.NumericRate == nil {
		r.NumericRate = ParseRate(r.RateStr)
	}
	if r.SimplifiedType == "" {
		r.SimplifiedType = ClassifyLoanType(r.LoanTypeFull)
	}
	if r.YearTerm == "" {
		r.YearTerm = ClassifyYearTerm(r.LoanTypeFull)
	}
	return r
}
