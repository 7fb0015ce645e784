package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/tax"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "62.1", cfg.Accounts.ServiceRevenue)
	assert.True(t, cfg.Payroll.SplitWithholdings)
	assert.Equal(t, "3", cfg.Taxes.INSSRate.String())
	assert.Len(t, cfg.Taxes.IRTBrackets, len(tax.DefaultBrackets()))
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgcledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
company:
  name: Kwanza Lda
taxes:
  vat_rate: 7
accounts:
  bank: "43.2"
payroll:
  split_withholdings: false
assistant:
  endpoint: http://assistant.local/ask
  timeout: 5s
`), 0o644))

	t.Setenv("PGCLEDGER_SERVER_DB", "/tmp/x.db")
	t.Setenv("PGCLEDGER_ACCOUNTS_SERVICE_REVENUE", "62.2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/x.db", cfg.Server.DB)
	assert.Equal(t, "Kwanza Lda", cfg.Company.Name)
	assert.Equal(t, "7", cfg.Taxes.VATRate.String())
	assert.Equal(t, "43.2", cfg.Accounts.Bank)
	assert.Equal(t, "62.2", cfg.Accounts.ServiceRevenue)
	assert.Equal(t, "61.1", cfg.Accounts.ProductRevenue)
	assert.False(t, cfg.Rules().SplitWithholdings)
	assert.Equal(t, 5*time.Second, cfg.Assistant.Timeout)
}

func TestLoadRejectsBadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgcledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  bank: banco\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Company.Name = "Teste"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Teste", loaded.Company.Name)
	assert.Len(t, loaded.Taxes.IRTBrackets, len(cfg.Taxes.IRTBrackets))
	assert.True(t, loaded.Taxes.IRTBrackets[10].Rate.Equal(cfg.Taxes.IRTBrackets[10].Rate))
}
