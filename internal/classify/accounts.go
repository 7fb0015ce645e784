package classify

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/simonvc/pgcledger/internal/ledger"
)

// AccountMap holds the PGC codes the automatic classification posts to.
// It is loaded from configuration so a company can point the rules at its
// own sub-accounts.
type AccountMap struct {
	ClientPrefix   string `yaml:"client_prefix" json:"client_prefix" envconfig:"CLIENT_PREFIX"`
	ClientFallback string `yaml:"client_fallback" json:"client_fallback" envconfig:"CLIENT_FALLBACK"`

	ServiceRevenue string `yaml:"service_revenue" json:"service_revenue" envconfig:"SERVICE_REVENUE"`
	ProductRevenue string `yaml:"product_revenue" json:"product_revenue" envconfig:"PRODUCT_REVENUE"`
	ServiceReturns string `yaml:"service_returns" json:"service_returns" envconfig:"SERVICE_RETURNS"`
	ProductReturns string `yaml:"product_returns" json:"product_returns" envconfig:"PRODUCT_RETURNS"`
	OutputVAT      string `yaml:"output_vat" json:"output_vat" envconfig:"OUTPUT_VAT"`

	Cost     string `yaml:"cost" json:"cost" envconfig:"COST"`
	Supplier string `yaml:"supplier" json:"supplier" envconfig:"SUPPLIER"`
	InputVAT string `yaml:"input_vat" json:"input_vat" envconfig:"INPUT_VAT"`

	StaffCost        string `yaml:"staff_cost" json:"staff_cost" envconfig:"STAFF_COST"`
	StaffPayable     string `yaml:"staff_payable" json:"staff_payable" envconfig:"STAFF_PAYABLE"`
	IRTPayable       string `yaml:"irt_payable" json:"irt_payable" envconfig:"IRT_PAYABLE"`
	INSSPayable      string `yaml:"inss_payable" json:"inss_payable" envconfig:"INSS_PAYABLE"`
	StaffAdvances    string `yaml:"staff_advances" json:"staff_advances" envconfig:"STAFF_ADVANCES"`
	EmployerINSSCost string `yaml:"employer_inss_cost" json:"employer_inss_cost" envconfig:"EMPLOYER_INSS_COST"`
	Bank             string `yaml:"bank" json:"bank" envconfig:"BANK"`
	VATSettlement    string `yaml:"vat_settlement" json:"vat_settlement" envconfig:"VAT_SETTLEMENT"`
}

func DefaultAccountMap() AccountMap {
	return AccountMap{
		ClientPrefix:     "31.1.2.1",
		ClientFallback:   "1",
		ServiceRevenue:   "62.1",
		ProductRevenue:   "61.1",
		ServiceReturns:   "62.9",
		ProductReturns:   "61.2",
		OutputVAT:        "34.5.3.1",
		Cost:             "71.1",
		Supplier:         "32.1",
		InputVAT:         "34.5.2.1",
		StaffCost:        "72.1",
		StaffPayable:     "36.1",
		IRTPayable:       "34.3",
		INSSPayable:      "34.8",
		StaffAdvances:    "36.2",
		EmployerINSSCost: "72.5",
		Bank:             "43.1",
		VATSettlement:    "34.5.6",
	}
}

// Codes lists the mapped accounts by setting name.
func (m AccountMap) Codes() map[string]string {
	return map[string]string{
		"client_prefix":      m.ClientPrefix,
		"service_revenue":    m.ServiceRevenue,
		"product_revenue":    m.ProductRevenue,
		"service_returns":    m.ServiceReturns,
		"product_returns":    m.ProductReturns,
		"output_vat":         m.OutputVAT,
		"cost":               m.Cost,
		"supplier":           m.Supplier,
		"input_vat":          m.InputVAT,
		"staff_cost":         m.StaffCost,
		"staff_payable":      m.StaffPayable,
		"irt_payable":        m.IRTPayable,
		"inss_payable":       m.INSSPayable,
		"staff_advances":     m.StaffAdvances,
		"employer_inss_cost": m.EmployerINSSCost,
		"bank":               m.Bank,
		"vat_settlement":     m.VATSettlement,
	}
}

// Validate checks that every mapped code is well formed and, when a chart
// is given, present in it.
func (m AccountMap) Validate(chart *ledger.Chart) error {
	for name, code := range m.Codes() {
		if !ledger.ValidCode(code) {
			return fmt.Errorf("%w: %s = %q", ErrInvalidMapping, name, code)
		}
		if chart != nil && !chart.Exists(code) {
			return fmt.Errorf("%w: %s = %s: %w", ErrInvalidMapping, name, code, ErrUnknownAccount)
		}
	}
	if m.ClientFallback == "" || strings.TrimFunc(m.ClientFallback, unicode.IsDigit) != "" {
		return fmt.Errorf("%w: client_fallback = %q", ErrInvalidMapping, m.ClientFallback)
	}
	return nil
}

// ClientAccount derives the receivable sub-account of a client from the
// digits in its id, e.g. "CLI-0042" -> "31.1.2.1.42". Ids without digits
// share the fallback sub-account.
func (m AccountMap) ClientAccount(clientID string) string {
	var digits strings.Builder
	for _, r := range clientID {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	suffix := strings.TrimLeft(digits.String(), "0")
	if suffix == "" {
		suffix = m.ClientFallback
	}
	return m.ClientPrefix + "." + suffix
}
