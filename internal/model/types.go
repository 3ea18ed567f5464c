package model

import "time"

// LoanType is the coarse category of a loan program.
type LoanType string

const (
	LoanTypeARM          LoanType = "ARM"
	LoanTypeConventional LoanType = "Conventional"
	LoanTypeJumbo        LoanType = "Jumbo"
	LoanTypeOther        LoanType = "other"
)

// Year term labels used by the loan-type filters.
const (
	Term30Years = "30 Years"
	Term20Years = "20 Years"
	Term15Years = "15 Years"
	TermOther   = "Other"
)

// RateRecord is one loan program offered by one institution.
type RateRecord struct {
	LoanTypeFull   string   `json:"loanTypeFull"`
	RateStr        string   `json:"rateStr"`
	NumericRate    *float64 `json:"numericRate"`
	SimplifiedType LoanType `json:"simplifiedType"`
	YearTerm       string   `json:"yearTerm"`
}

// InstitutionEntry is a lending institution with its rate records in input order.
type InstitutionEntry struct {
	Name  string       `json:"CreditUnion"`
	Link  string       `json:"Link"`
	Rates []RateRecord `json:"parsedRates"`
}

// DatasetInfo describes the dataset currently held in the local cache.
type DatasetInfo struct {
	Institutions int
	Rates        int
	Source       string
	ImportedAt   time.Time
}
