package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/simonvc/pgcledger/internal/export"
)

// writeWorkbook renders a workbook into memory first so a failure can still
// be reported as JSON.
func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) exportBalancete(w http.ResponseWriter, r *http.Request) {
	b, err := s.loadBalancete(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := fmt.Sprintf("balancete-%04d-%02d-%02d.xlsx", b.Year, b.FromMonth, b.ToMonth)
	s.writeWorkbook(w, r, name, func(buf *bytes.Buffer) error { return export.Balancete(buf, b) })
}

func (s *Server) exportExtract(w http.ResponseWriter, r *http.Request) {
	ex, err := s.loadExtract(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := fmt.Sprintf("extrato-%s-%04d.xlsx", ex.Account.Code, ex.Year)
	s.writeWorkbook(w, r, name, func(buf *bytes.Buffer) error { return export.Extract(buf, ex) })
}

func (s *Server) exportPayroll(w http.ResponseWriter, r *http.Request) {
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
	name := fmt.Sprintf("salarios-%04d-%02d.xlsx", year, month)
	s.writeWorkbook(w, r, name, func(buf *bytes.Buffer) error { return export.Payroll(buf, run) })
}

func (s *Server) exportVAT(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", 0)
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := s.store.ListVATSettlements(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := "iva.xlsx"
	if year > 0 {
		name = fmt.Sprintf("iva-%04d.xlsx", year)
	}
	s.writeWorkbook(w, r, name, func(buf *bytes.Buffer) error { return export.VAT(buf, list) })
}
