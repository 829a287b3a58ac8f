package catalog

import (
	"context"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
)

// AdjustStock applies delta to a product's stock level with a single
// conditional update, so concurrent adjustments serialize server-side instead
// of racing through read-modify-write. It reports false when the product does
// not exist; callers running inside a transaction must abort on false.
//
// Stock is allowed to go negative: checkout does not enforce sufficiency.
func AdjustStock(ctx context.Context, q db.Querier, productID int64, delta int) (bool, error) {
	tag, err := q.Exec(ctx, `UPDATE products SET stock = stock + $1 WHERE id = $2`, delta, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
