package server

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/assistant"
	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/config"
	"github.com/simonvc/pgcledger/internal/logging"
	"github.com/simonvc/pgcledger/internal/store"
	"github.com/simonvc/pgcledger/internal/tax"
)

type Server struct {
	store     *store.Store
	router    chi.Router
	addr      string
	cfg       *config.Config
	calc      *tax.Calculator
	rules     classify.Rules
	assistant *assistant.Client
	validate  *validator.Validate
	log       *zap.Logger
}

// New wires the API over st. cfg must already be validated.
func New(st *store.Store, cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	calc, err := cfg.Calculator()
	if err != nil {
		log.Warn("invalid tax configuration, using defaults", zap.Error(err))
		calc = tax.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(log))
	r.Use(middleware.Recoverer)

	s := &Server{
		store:     st,
		router:    r,
		addr:      cfg.Server.Addr,
		cfg:       cfg,
		calc:      calc,
		rules:     cfg.Rules(),
		assistant: assistant.New(cfg.Assistant, log.Named("assistant")),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// PGC chart
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/search", s.searchAccounts)
		r.Get("/accounts/{code}", s.getAccount)
		r.Get("/accounts/{code}/children", s.listChildren)
		r.Put("/accounts/{code}", s.updateAccount)
		r.Delete("/accounts/{code}", s.deleteAccount)

		// Journal
		r.Post("/transactions", s.createTransaction)
		r.Get("/transactions", s.listTransactions)
		r.Get("/transactions/{id}", s.getTransaction)

		// Opening balances and reports
		r.Get("/opening/{year}", s.listOpening)
		r.Put("/opening/{year}", s.saveOpening)
		r.Get("/reports/balancete", s.balancete)
		r.Get("/reports/extract", s.extract)

		// Spreadsheets
		r.Get("/export/balancete", s.exportBalancete)
		r.Get("/export/extract", s.exportExtract)
		r.Get("/export/payroll/{year}/{month}", s.exportPayroll)
		r.Get("/export/vat", s.exportVAT)

		// Source documents
		r.Post("/invoices", s.createInvoice)
		r.Get("/invoices", s.listInvoices)
		r.Get("/invoices/{id}", s.getInvoice)
		r.Patch("/invoices/{id}/status", s.setInvoiceStatus)
		r.Post("/purchases", s.createPurchase)
		r.Get("/purchases", s.listPurchases)
		r.Get("/purchases/{id}", s.getPurchase)
		r.Patch("/purchases/{id}/status", s.setPurchaseStatus)

		// Payroll
		r.Post("/employees", s.createEmployee)
		r.Get("/employees", s.listEmployees)
		r.Get("/employees/{id}", s.getEmployee)
		r.Put("/employees/{id}", s.updateEmployee)
		r.Post("/hr-transactions", s.createHrTransaction)
		r.Get("/hr-transactions", s.listHrTransactions)
		r.Delete("/hr-transactions/{id}", s.deleteHrTransaction)
		r.Get("/tax/withholdings", s.withholdings)
		r.Get("/payroll/runs", s.listPayrollRuns)
		r.Get("/payroll/{year}/{month}", s.getPayrollRun)
		r.Get("/payroll/{year}/{month}/preview", s.previewPayroll)
		r.Post("/payroll/{year}/{month}/certify", s.certifyPayroll)

		// Classification
		r.Get("/classify/{kind}", s.classificationEntries)
		r.Post("/classify/{kind}/preview", s.previewClassification)
		r.Post("/classify/{kind}/post", s.postClassification)

		// VAT
		r.Get("/vat", s.listVAT)
		r.Get("/vat/{year}/{month}", s.computeVAT)
		r.Post("/vat/{year}/{month}", s.registerVAT)

		// Contracts
		r.Put("/contracts", s.upsertContract)
		r.Get("/contracts", s.listContracts)
		r.Get("/contracts/{id}", s.getContract)

		// Assistant
		r.Post("/assistant/ask", s.ask)
		r.Post("/assistant/invoice", s.extractInvoice)

		// Company and classification settings
		r.Get("/settings", s.getSettings)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info("pgcledger server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("pgcledger server listening", zap.String("addr", ln.Addr().String()))
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}
