package category

import (
	"errors"
	"strings"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName      = errors.New("category name cannot be empty")
	ErrInvalidType    = errors.New("invalid category type")
	ErrNegativeBudget = errors.New("monthly budget cannot be negative")
	ErrSystemReadOnly = errors.New("system categories cannot be renamed or retyped")
)

// Type classifies the money movements a category groups.
type Type string

const (
	TypeIncome     Type = "Receita"
	TypeExpense    Type = "Despesa"
	TypeInvestment Type = "Investimento"
	TypeTransfer   Type = "Transferencia"
	TypeReversal   Type = "Estorno"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeInvestment, TypeTransfer, TypeReversal:
		return true
	}
	return false
}

type Category struct {
	shared.Base
	Name          string           `json:"nome"`
	Type          Type             `json:"tipo"`
	System        bool             `json:"sistema"`
	MonthlyBudget *decimal.Decimal `json:"orcamento_mensal,omitempty"`
	Order         int              `json:"ordem"`
}

func NewCategory(name string, typ Type, monthlyBudget *decimal.Decimal, order int) (*Category, error) {
	c := &Category{
		Name:          strings.TrimSpace(name),
		Type:          typ,
		MonthlyBudget: monthlyBudget,
		Order:         order,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if c.MonthlyBudget != nil && c.MonthlyBudget.IsNegative() {
		return ErrNegativeBudget
	}
	return nil
}

// CheckUpdate rejects edits that would change what a system category is.
func CheckUpdate(prev, next *Category) error {
	if !prev.System {
		return nil
	}
	if next.Name != prev.Name || next.Type != prev.Type || !next.System {
		return ErrSystemReadOnly
	}
	return nil
}
