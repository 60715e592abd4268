// internal/domain/models/transaction.go
package models

// Transaction types accepted by the stock endpoint.
const (
	TransactionIn         = "IN"
	TransactionOut        = "OUT"
	TransactionAdjustment = "ADJUSTMENT"
)

// AllTransactionTypes returns all valid transaction types.
func AllTransactionTypes() []string {
	return []string{
		TransactionIn,
		TransactionOut,
		TransactionAdjustment,
	}
}

// StockTransaction is the record returned after a stock movement.
type StockTransaction struct {
	ID              int       `json:"id"`
	ItemID          int       `json:"item_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	PreviousStock   int       `json:"previous_stock"`
	NewStock        int       `json:"new_stock"`
	Reason          string    `json:"reason,omitempty"`
	PerformedBy     string    `json:"performed_by,omitempty"`
	Timestamp       Timestamp `json:"timestamp"`
}
