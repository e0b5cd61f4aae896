package dashboard

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"fitpack_admin/internal/models"
)

func TestOpenEditOrderModal(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	u := store.addUser(models.User{Name: "Ravi", Email: "ravi@example.com"})
	o := store.addOrder(models.Order{UserID: u.ID, TotalAmount: decimal.RequireFromString("250"), Status: models.OrderStatusPending})

	st := NewState()
	if res := d.OpenEditOrderModal(ctx, st, o.ID); res.Notice != nil {
		t.Fatalf("notice = %q", res.Notice.Text)
	}
	if !st.ShowOrderModal || st.ViewingOrderID != o.ID {
		t.Fatalf("order modal state = %+v", st)
	}

	view, err := d.Render(ctx, st, Cursors{Packages: 1, Users: 1, Orders: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if view.ViewingOrder == nil || view.ViewingOrder.User == nil || view.ViewingOrder.User.Name != "Ravi" {
		t.Errorf("ViewingOrder = %+v", view.ViewingOrder)
	}

	res := d.OpenEditOrderModal(ctx, NewState(), 404)
	if got := noticeText(res); got != "Error opening order: order 404: record not found" {
		t.Errorf("notice = %q", got)
	}
}

func TestRenderClosesModalForVanishedOrder(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	u := store.addUser(models.User{Name: "Ravi"})
	o := store.addOrder(models.Order{UserID: u.ID})

	st := NewState()
	d.OpenEditOrderModal(ctx, st, o.ID)
	delete(store.orders, o.ID)

	view, err := d.Render(ctx, st, Cursors{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if view.ViewingOrder != nil || st.ShowOrderModal || st.ViewingOrderID != 0 {
		t.Error("modal should close when its order is gone")
	}
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	u := store.addUser(models.User{Name: "Ravi"})
	o := store.addOrder(models.Order{UserID: u.ID, TotalAmount: decimal.RequireFromString("99.50")})
	keep := store.addOrder(models.Order{UserID: u.ID, TotalAmount: decimal.RequireFromString("10")})

	st := NewState()
	d.OpenEditOrderModal(ctx, st, o.ID)
	d.OpenDeleteOrderModal(st, o.ID)
	res := d.DeleteOrder(ctx, st)

	if got := noticeText(res); got != "Order deleted successfully!" {
		t.Fatalf("notice = %q", got)
	}
	if !reflect.DeepEqual(res.Signals, []string{SignalOrderDeleted}) {
		t.Errorf("signals = %v", res.Signals)
	}
	if _, ok := store.orders[o.ID]; ok {
		t.Error("order still present")
	}
	if _, ok := store.orders[keep.ID]; !ok {
		t.Error("unrelated order removed")
	}
	if st.ShowDeleteOrderModal || st.ShowOrderModal || st.DeletingOrderID != 0 || st.ViewingOrderID != 0 {
		t.Error("order modals not reset")
	}
	if !st.Stats.TotalRevenue.Equal(decimal.NewFromInt(10)) || st.Stats.TotalOrders != 1 {
		t.Errorf("stats = %+v", st.Stats)
	}
}

func TestDeleteOrderFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *fakeStore, st *State)
		message string
	}{
		{
			name:    "nothing selected",
			setup:   func(s *fakeStore, st *State) {},
			message: "No order selected for deletion.",
		},
		{
			name: "missing order",
			setup: func(s *fakeStore, st *State) {
				st.DeletingOrderID = 77
				st.ShowDeleteOrderModal = true
			},
			message: "Error deleting order: order 77: record not found",
		},
		{
			name: "store error",
			setup: func(s *fakeStore, st *State) {
				o := s.addOrder(models.Order{UserID: 1})
				s.failOn["DeleteOrder"] = errors.New("deadlock detected")
				st.DeletingOrderID = o.ID
				st.ShowDeleteOrderModal = true
			},
			message: "Error deleting order: deadlock detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store, _ := newTestDashboard(t)
			st := NewState()
			tt.setup(store, st)

			res := d.DeleteOrder(context.Background(), st)

			if res.Notice == nil || res.Notice.Kind != NoticeError {
				t.Fatalf("want error notice, got %+v", res.Notice)
			}
			if res.Notice.Text != tt.message {
				t.Errorf("notice = %q; want %q", res.Notice.Text, tt.message)
			}
			if len(res.Signals) != 0 {
				t.Errorf("signals = %v", res.Signals)
			}
		})
	}
}
