package server

import (
	"net/http"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/config"
	"github.com/simonvc/pgcledger/internal/tax"
)

type settingsResponse struct {
	Company  config.CompanyConfig `json:"company"`
	Taxes    taxSettings          `json:"taxes"`
	Accounts classify.AccountMap  `json:"accounts"`
	Payroll  config.PayrollConfig `json:"payroll"`
}

type taxSettings struct {
	INSSRate         string        `json:"inss_rate"`
	EmployerINSSRate string        `json:"employer_inss_rate"`
	VATRate          string        `json:"vat_rate"`
	IRTBrackets      []tax.Bracket `json:"irt_brackets"`
}

// getSettings exposes the configuration the server computes with. The
// assistant credentials are left out.
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Company: s.cfg.Company,
		Taxes: taxSettings{
			INSSRate:         s.calc.INSSRate.String(),
			EmployerINSSRate: s.calc.EmployerINSSRate.String(),
			VATRate:          s.cfg.Taxes.VATRate.String(),
			IRTBrackets:      s.calc.Brackets,
		},
		Accounts: s.cfg.Accounts,
		Payroll:  s.cfg.Payroll,
	})
}
