package ledger

import "time"

// EntryType distinguishes restocks from manual removals. Invoice-driven
// decrements never appear in the ledger; checkout adjusts stock directly.
type EntryType string

const (
	TypeStockIn  EntryType = "stock-in"
	TypeStockOut EntryType = "stock-out"
)

// Valid reports whether the type is one of the accepted values.
func (t EntryType) Valid() bool {
	return t == TypeStockIn || t == TypeStockOut
}

// Delta is the signed stock change this entry type applies.
func (t EntryType) Delta(quantity int) int {
	if t == TypeStockOut {
		return -quantity
	}
	return quantity
}

// Entry is one append-only inventory movement.
type Entry struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Type        EntryType `json:"type"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int       `json:"quantity"`
	Notes       *string   `json:"notes"`
}

// RecordRequest is the payload for posting a movement.
type RecordRequest struct {
	Date      *time.Time `json:"date"`
	Type      EntryType  `json:"type"`
	ProductID int64      `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Notes     *string    `json:"notes"`
}
