package screening

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCriteria is returned before any fetch when the caller's
// thresholds are malformed.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Criteria are the caller's screening thresholds.
type Criteria struct {
	MaxPEG                   float64  `yaml:"max_peg" json:"max_peg" validate:"gte=0"`
	MinPE                    float64  `yaml:"min_pe" json:"min_pe" validate:"gte=0"`
	MaxPE                    float64  `yaml:"max_pe" json:"max_pe" validate:"gte=0,gtefield=MinPE"`
	MaxDebtToEquity          float64  `yaml:"max_debt_to_equity" json:"max_debt_to_equity" validate:"gte=0"`
	MinSalesGrowth           float64  `yaml:"min_sales_growth" json:"min_sales_growth"`
	MinProfitGrowth          float64  `yaml:"min_profit_growth" json:"min_profit_growth"`
	RequireMarginImprovement bool     `yaml:"require_margin_improvement" json:"require_margin_improvement"`
	CandidateList            []string `yaml:"candidate_list" json:"candidate_list,omitempty" validate:"omitempty,dive,required"`
	MaxResults               int      `yaml:"max_results" json:"max_results" validate:"min=1,max=100"`
}

// DefaultCriteria returns the documented defaults.
func DefaultCriteria() Criteria {
	return Criteria{
		MaxPEG:          3.0,
		MinPE:           5.0,
		MaxPE:           35.0,
		MaxDebtToEquity: 1.0,
		MaxResults:      10,
	}
}

var validate = validator.New()

// Validate checks the struct-level constraints.
func (c Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidCriteria, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return nil
}

// Key identifies the criteria for result caching. Candidate order matters
// because it decides which prefix is scanned.
func (c Criteria) Key() string {
	return fmt.Sprintf("peg=%g|pe=%g-%g|de=%g|sg=%g|pg=%g|mi=%t|n=%d|list=%s",
		c.MaxPEG, c.MinPE, c.MaxPE, c.MaxDebtToEquity,
		c.MinSalesGrowth, c.MinProfitGrowth, c.RequireMarginImprovement,
		c.MaxResults, strings.Join(c.CandidateList, ","))
}

// criteriaKeys are the names accepted by ParseCriteria.
var criteriaKeys = map[string]func(*Criteria, string) error{
	"max_peg":            floatField(func(c *Criteria) *float64 { return &c.MaxPEG }),
	"min_pe":             floatField(func(c *Criteria) *float64 { return &c.MinPE }),
	"max_pe":             floatField(func(c *Criteria) *float64 { return &c.MaxPE }),
	"max_debt_to_equity": floatField(func(c *Criteria) *float64 { return &c.MaxDebtToEquity }),
	"min_sales_growth":   floatField(func(c *Criteria) *float64 { return &c.MinSalesGrowth }),
	"min_profit_growth":  floatField(func(c *Criteria) *float64 { return &c.MinProfitGrowth }),
	"require_margin_improvement": func(c *Criteria, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.RequireMarginImprovement = b
		return nil
	},
	"max_results": func(c *Criteria, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.MaxResults = n
		return nil
	},
	"candidate_list": func(c *Criteria, v string) error {
		c.CandidateList = SplitSymbols(v)
		return nil
	},
}

func floatField(ptr func(*Criteria) *float64) func(*Criteria, string) error {
	return func(c *Criteria, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%q is not a finite number", v)
		}
		*ptr(c) = f
		return nil
	}
}

// ParseCriteria applies a flat name=value mapping on top of defaults.
// Unknown names and unparseable values are rejected, as is a result that
// fails Validate.
func ParseCriteria(input map[string]string, defaults Criteria) (Criteria, error) {
	c := defaults
	c.CandidateList = append([]string(nil), defaults.CandidateList...)

	names := make([]string, 0, len(input))
	for name := range input {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		set, ok := criteriaKeys[key]
		if !ok {
			return Criteria{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidCriteria, name)
		}
		value := strings.TrimSpace(input[name])
		if err := set(&c, value); err != nil {
			return Criteria{}, fmt.Errorf("%w: %s=%q: %v", ErrInvalidCriteria, key, value, err)
		}
	}

	if err := c.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// SplitSymbols splits a comma separated ticker list, upper-casing and
// dropping blanks.
func SplitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if sym := strings.ToUpper(strings.TrimSpace(part)); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}
