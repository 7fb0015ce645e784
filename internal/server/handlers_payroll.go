package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/store"
)

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var e payroll.Employee
	if err := s.decode(r, &e); err != nil {
		badRequest(w, err)
		return
	}
	e.ID = ""
	if err := s.store.CreateEmployee(r.Context(), &e); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := s.store.ListEmployees(r.Context(), activeOnly)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var e payroll.Employee
	if err := s.decode(r, &e); err != nil {
		badRequest(w, err)
		return
	}
	e.ID = chi.URLParam(r, "id")
	if err := s.store.UpdateEmployee(r.Context(), &e); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.store.GetEmployee(r.Context(), e.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) createHrTransaction(w http.ResponseWriter, r *http.Request) {
	var t payroll.HrTransaction
	if err := s.decode(r, &t); err != nil {
		badRequest(w, err)
		return
	}
	t.ID = ""
	if err := s.store.CreateHrTransaction(r.Context(), &t); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) listHrTransactions(w http.ResponseWriter, r *http.Request) {
	filter := store.HrFilter{
		EmployeeID:  r.URL.Query().Get("employee"),
		PendingOnly: r.URL.Query().Get("pending") == "true",
	}
	var err error
	if filter.Year, err = intParam(r, "year", 0); err != nil {
		badRequest(w, err)
		return
	}
	if filter.Month, err = intParam(r, "month", 0); err != nil {
		badRequest(w, err)
		return
	}
	list, err := s.store.ListHrTransactions(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) deleteHrTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteHrTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type withholdingsResponse struct {
	Gross        decimal.Decimal `json:"gross"`
	INSS         decimal.Decimal `json:"inss"`
	IRT          decimal.Decimal `json:"irt"`
	EmployerINSS decimal.Decimal `json:"employer_inss"`
	Net          decimal.Decimal `json:"net"`
}

// withholdings runs the tax calculators on a gross salary.
func (s *Server) withholdings(w http.ResponseWriter, r *http.Request) {
	gross, err := decimalParam(r, "gross")
	if err != nil {
		badRequest(w, err)
		return
	}
	inss, irt := s.calc.Withholdings(gross)
	writeJSON(w, http.StatusOK, withholdingsResponse{
		Gross:        gross,
		INSS:         inss,
		IRT:          irt,
		EmployerINSS: s.calc.INSSEntity(gross),
		Net:          gross.Sub(inss).Sub(irt),
	})
}

func (s *Server) listPayrollRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListPayrollRuns(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getPayrollRun(w http.ResponseWriter, r *http.Request) {
	year, month, err := period(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	run, err := s.store.GetPayrollRunByPeriod(r.Context(), year, month)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) previewPayroll(w http.ResponseWriter, r *http.Request) {
	year, month, err := period(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	run, err := s.store.PreviewPayroll(r.Context(), year, month, s.calc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) certifyPayroll(w http.ResponseWriter, r *http.Request) {
	year, month, err := period(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	run, err := s.store.CertifyPayroll(r.Context(), year, month, s.calc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("payroll certified",
		zap.String("run_id", run.ID),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("slips", len(run.Slips)),
		zap.String("net", run.Totals.Net.StringFixed(2)))
	writeJSON(w, http.StatusCreated, run)
}
