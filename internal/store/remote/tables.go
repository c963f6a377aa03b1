package remote

// Remote tables of the ledger. Column names match the JSON fields of the
// domain entities.
var (
	Accounts = Table{
		Name:        "contas",
		Columns:     []string{"id", "nome", "saldo_inicial", "data_saldo_inicial", "ativa", "cor", "created_at", "updated_at"},
		OrderBy:     []string{"nome", "id"},
		ConflictKey: []string{"id"},
		InsertOnly:  []string{"saldo_inicial", "data_saldo_inicial"},
		KeyColumn:   "id",
	}

	Categories = Table{
		Name:        "categorias",
		Columns:     []string{"id", "nome", "tipo", "sistema", "orcamento_mensal", "ordem", "created_at", "updated_at"},
		OrderBy:     []string{"ordem", "nome", "id"},
		ConflictKey: []string{"id"},
		KeyColumn:   "id",
	}

	Transactions = Table{
		Name: "transacoes",
		Columns: []string{
			"id", "conta_id", "data", "valor", "categoria_id", "tipo", "descricao", "cartao_id",
			"transferencia_id", "previsto", "realizado", "recorrencia_id", "created_at", "updated_at",
		},
		OrderBy:     []string{"data", "id"},
		ConflictKey: []string{"id"},
		KeyColumn:   "id",
	}

	Cards = Table{
		Name:        "cartoes",
		Columns:     []string{"id", "nome", "limite", "dia_fechamento", "dia_vencimento", "conta_padrao_id", "ativo", "created_at", "updated_at"},
		OrderBy:     []string{"nome", "id"},
		ConflictKey: []string{"id"},
		KeyColumn:   "id",
	}

	Purchases = Table{
		Name: "compras",
		Columns: []string{
			"id", "cartao_id", "data_compra", "valor_total", "parcelas", "categoria_id", "estorno",
			"descricao", "recorrencia_id", "created_at", "updated_at",
		},
		OrderBy:     []string{"data_compra", "id"},
		ConflictKey: []string{"id"},
		KeyColumn:   "id",
	}

	Installments = Table{
		Name:        "parcelas",
		Columns:     []string{"id", "compra_id", "numero", "valor", "competencia", "paga", "created_at", "updated_at"},
		OrderBy:     []string{"competencia", "compra_id", "numero"},
		ConflictKey: []string{"id"},
		KeyColumn:   "id",
	}

	// Budgets are unique per owner, category and period; deployments without
	// that constraint trigger the delete-then-insert fallback.
	Budgets = Table{
		Name:         "categoria_orcamentos",
		Columns:      []string{"id", "categoria_id", "competencia", "valor", "created_at", "updated_at"},
		OrderBy:      []string{"competencia", "categoria_id"},
		ConflictKey:  []string{"user_id", "categoria_id", "competencia"},
		ScopeColumns: []string{"competencia"},
		KeyColumn:    "categoria_id",
	}
)

// All lists every table holding user rows, in purge display order.
var All = []Table{Accounts, Categories, Transactions, Cards, Purchases, Installments, Budgets}

// PurgeFunction removes every row owned by a user across All.
const PurgeFunction = "purge_user_data"
