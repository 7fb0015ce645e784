package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/documents"
)

func TestAsk(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(response{Text: "O saldo do IVA é 1.525,00 Kz a pagar."})
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, APIKey: "secret", Model: "m1"}, nil)
	reply := c.Ask(context.Background(), "Quanto IVA devo?", map[string]string{"balance": "1525.00"})

	assert.False(t, reply.Fallback)
	assert.NoError(t, reply.Err)
	assert.Contains(t, reply.Text, "1.525,00")
	assert.Equal(t, "m1", got.Model)
	assert.JSONEq(t, `{"balance":"1525.00"}`, string(got.Context))
}

func TestAskFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	calls := 0
	counting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer counting.Close()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"not configured", Config{}},
		{"server error", Config{Endpoint: srv.URL}},
		{"unreachable", Config{Endpoint: "http://127.0.0.1:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := New(tt.cfg, nil).Ask(context.Background(), "olá", nil)
			assert.True(t, reply.Fallback)
			assert.Equal(t, Fallback, reply.Text)
			assert.Error(t, reply.Err)
		})
	}

	New(Config{Endpoint: counting.URL}, nil).Ask(context.Background(), "olá", nil)
	assert.Equal(t, 1, calls)
}

func TestAskTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	reply := New(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}, nil).Ask(context.Background(), "olá", nil)
	assert.True(t, reply.Fallback)
}

func TestExtractInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Schema)
		text := `{"number":"FT 1/2024","type":"FT","client_name":"Unitel","date":"2024-03-10",
			"items":[{"description":"Consultoria","kind":"SERVICE","quantity":"1","unit_price":"10000","tax_rate":"14"}]}`
		_ = json.NewEncoder(w).Encode(response{Text: text})
	}))
	defer srv.Close()

	inv, err := New(Config{Endpoint: srv.URL}, nil).ExtractInvoice(context.Background(), "Fatura FT 1/2024 ...")
	require.NoError(t, err)
	assert.Equal(t, documents.TypeFatura, inv.Type)
	assert.Equal(t, documents.InvoiceDraft, inv.Status)
	assert.Equal(t, "Unitel", inv.ClientName)
	assert.Equal(t, 10, inv.Date.Day())
	assert.Equal(t, "11400", inv.Total.String())
}
