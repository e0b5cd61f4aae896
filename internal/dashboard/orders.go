package dashboard

import (
	"context"

	"go.uber.org/zap"
)

// OpenEditOrderModal shows an order with its customer and items. Orders
// are read-only here.
func (d *Dashboard) OpenEditOrderModal(ctx context.Context, st *State, id uint) Result {
	o, err := d.store.FindOrder(ctx, id)
	if err != nil {
		return failureErr("Error opening order: ", err)
	}
	st.ViewingOrderID = o.ID
	st.ShowOrderModal = true
	return Result{}
}

// OpenDeleteOrderModal asks for confirmation before deleting an order
func (d *Dashboard) OpenDeleteOrderModal(st *State, id uint) {
	st.DeletingOrderID = id
	st.ShowDeleteOrderModal = true
}

// DeleteOrder removes the selected order and its items
func (d *Dashboard) DeleteOrder(ctx context.Context, st *State) Result {
	if st.DeletingOrderID == 0 {
		return failure("No order selected for deletion.")
	}

	err := d.store.Transaction(ctx, func(tx Store) error {
		o, err := tx.FindOrder(ctx, st.DeletingOrderID)
		if err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, o.ID)
	})
	if err != nil {
		d.log.Error("delete order", zap.Uint("order_id", st.DeletingOrderID), zap.Error(err))
		return failureErr("Error deleting order: ", err)
	}

	if st.ViewingOrderID == st.DeletingOrderID {
		st.ViewingOrderID = 0
		st.ShowOrderModal = false
	}
	st.DeletingOrderID = 0
	st.ShowDeleteOrderModal = false
	d.LoadStats(ctx, st)
	return success("Order deleted successfully!", SignalOrderDeleted)
}
