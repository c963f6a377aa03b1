package local

// Keys of the local namespace. Each holds one JSON document.
const (
	KeyAccounts       = "contas"
	KeyTransactions   = "transacoes"
	KeyCards          = "cartoes"
	KeyCategories     = "categorias"
	KeyPurchases      = "compras"
	KeyInstallments   = "parcelas"
	KeyGoals          = "objetivos"
	KeyAssets         = "ativos"
	KeyAllocations    = "alocacoes"
	KeyProfilePicture = "profilePicture"
	KeySettings       = "settings"
	KeyTheme          = "theme"
	KeyBudgets        = "orcamentos"
)

// ClearableKeys is exactly the key set ClearAll removes.
var ClearableKeys = []string{
	KeyAccounts,
	KeyTransactions,
	KeyCards,
	KeyCategories,
	KeyPurchases,
	KeyInstallments,
	KeyGoals,
	KeyAssets,
	KeyAllocations,
	KeyProfilePicture,
	KeySettings,
	KeyTheme,
	KeyBudgets,
}
