package category

// seed describes a category every identity starts with.
type seed struct {
	name string
	typ  Type
}

var systemSeeds = []seed{
	{"Transferência", TypeTransfer},
	{"Estorno", TypeReversal},
	{"Investimentos", TypeInvestment},
	{"Salário", TypeIncome},
	{"Alimentação", TypeExpense},
	{"Moradia", TypeExpense},
	{"Transporte", TypeExpense},
	{"Outros", TypeExpense},
}

// MissingSystem returns the system categories absent from existing, matched by
// name and type. Seeding the result once per identity is idempotent.
func MissingSystem(existing []*Category) []*Category {
	type key struct {
		name string
		typ  Type
	}
	present := make(map[key]bool, len(existing))
	maxOrder := -1
	for _, c := range existing {
		if c.System {
			present[key{c.Name, c.Type}] = true
		}
		if c.Order > maxOrder {
			maxOrder = c.Order
		}
	}

	var missing []*Category
	for _, s := range systemSeeds {
		if present[key{s.name, s.typ}] {
			continue
		}
		maxOrder++
		missing = append(missing, &Category{
			Name:   s.name,
			Type:   s.typ,
			System: true,
			Order:  maxOrder,
		})
	}
	return missing
}

// FindSystem returns the system category of the given type, if seeded.
func FindSystem(all []*Category, typ Type) *Category {
	for _, c := range all {
		if c.System && c.Type == typ {
			return c
		}
	}
	return nil
}
