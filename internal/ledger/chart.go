package ledger

import (
	"fmt"
	"slices"
)

func acct(code, description string) Account {
	a := Account{Code: code, Description: description}
	a.Normalize()
	return a
}

// DefaultChart is the PGC subset seeded into a new database: the eight
// classes, the groups in common use, and every account the automatic
// classification posts to.
func DefaultChart() []Account {
	return []Account{
		acct("1", "Meios fixos e investimentos"),
		acct("11", "Imobilizações corpóreas"),
		acct("12", "Imobilizações incorpóreas"),
		acct("18", "Amortizações acumuladas"),

		acct("2", "Existências"),
		acct("21", "Compras"),
		acct("22", "Matérias-primas, subsidiárias e de consumo"),
		acct("26", "Mercadorias"),

		acct("3", "Terceiros"),
		acct("31", "Clientes"),
		acct("31.1", "Clientes - correntes"),
		acct("31.1.2", "Clientes nacionais"),
		acct("31.1.2.1", "Clientes nacionais - diversos"),
		acct("32", "Fornecedores"),
		acct("32.1", "Fornecedores - correntes"),
		acct("34", "Estado"),
		acct("34.3", "Imposto sobre o rendimento do trabalho (IRT)"),
		acct("34.5", "Imposto sobre o valor acrescentado (IVA)"),
		acct("34.5.2", "IVA dedutível"),
		acct("34.5.2.1", "IVA dedutível - bens e serviços"),
		acct("34.5.3", "IVA liquidado"),
		acct("34.5.3.1", "IVA liquidado - operações gerais"),
		acct("34.5.6", "IVA apuramento"),
		acct("34.8", "Contribuições para a segurança social (INSS)"),
		acct("36", "Pessoal"),
		acct("36.1", "Pessoal - remunerações a pagar"),
		acct("36.2", "Pessoal - adiantamentos"),
		acct("37", "Outros valores a receber e a pagar"),

		acct("4", "Meios monetários"),
		acct("43", "Depósitos à ordem"),
		acct("43.1", "Depósitos à ordem - moeda nacional"),
		acct("45", "Caixa"),
		acct("45.1", "Caixa - fundo fixo"),

		acct("5", "Capital e reservas"),
		acct("51", "Capital"),
		acct("55", "Reservas legais"),

		acct("6", "Proveitos e ganhos por natureza"),
		acct("61", "Vendas"),
		acct("61.1", "Vendas - produtos"),
		acct("61.2", "Vendas - devoluções"),
		acct("62", "Prestações de serviço"),
		acct("62.1", "Prestações de serviço - serviços principais"),
		acct("62.9", "Prestações de serviço - anulações"),

		acct("7", "Custos e perdas por natureza"),
		acct("71", "Custo das existências vendidas e consumidas"),
		acct("71.1", "Custo das mercadorias vendidas"),
		acct("72", "Custos com o pessoal"),
		acct("72.1", "Remunerações - pessoal"),
		acct("72.5", "Encargos sobre remunerações"),
		acct("75", "Outros custos e perdas operacionais"),

		acct("8", "Resultados"),
		acct("81", "Resultados transitados"),
		acct("88", "Resultado líquido do exercício"),
	}
}

// Chart keeps the account list consistent: unique codes and parent codes
// derived from the code itself.
type Chart struct {
	accounts map[string]Account
}

// NewChart builds a chart, rejecting invalid or duplicated accounts.
func NewChart(accounts []Account) (*Chart, error) {
	c := &Chart{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		if _, err := c.Add(a); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// All returns the accounts in chart order.
func (c *Chart) All() []Account {
	out := make([]Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Account) int { return CompareCodes(a.Code, b.Code) })
	return out
}

func (c *Chart) Len() int { return len(c.accounts) }

func (c *Chart) Get(code string) (Account, bool) {
	a, ok := c.accounts[code]
	return a, ok
}

func (c *Chart) Exists(code string) bool {
	_, ok := c.accounts[code]
	return ok
}

// Add validates and inserts a new account.
func (c *Chart) Add(a Account) (Account, error) {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return Account{}, err
	}
	if c.Exists(a.Code) {
		return Account{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, a.Code)
	}
	c.accounts[a.Code] = a
	return a, nil
}

// Update replaces the account stored under oldCode. The new code must not
// belong to another account. Changing the code of an account that has
// sub-accounts is refused because children are not moved along with it.
func (c *Chart) Update(oldCode string, a Account) (Account, error) {
	existing, ok := c.accounts[oldCode]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, oldCode)
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return Account{}, err
	}
	if a.Code != oldCode {
		if c.Exists(a.Code) {
			return Account{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, a.Code)
		}
		if len(c.Children(oldCode)) > 0 {
			return Account{}, fmt.Errorf("%w: cannot recode %s", ErrHasChildren, oldCode)
		}
		delete(c.accounts, oldCode)
	}
	a.CreatedAt = existing.CreatedAt
	c.accounts[a.Code] = a
	return a, nil
}

// Delete removes a leaf account.
func (c *Chart) Delete(code string) error {
	if !c.Exists(code) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, code)
	}
	if len(c.Children(code)) > 0 {
		return fmt.Errorf("%w: %s", ErrHasChildren, code)
	}
	delete(c.accounts, code)
	return nil
}

// Children returns the direct sub-accounts of code. Groups count as
// children of their class.
func (c *Chart) Children(code string) []Account {
	var out []Account
	for _, a := range c.accounts {
		if rollupParent(a.Code) == code {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b Account) int { return CompareCodes(a.Code, b.Code) })
	return out
}

// Ancestors returns the roll-up chain of code, nearest first, ending at
// its class.
func Ancestors(code string) []string {
	var out []string
	for p := rollupParent(code); p != ""; p = rollupParent(p) {
		out = append(out, p)
	}
	return out
}
