package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fitpack_admin/internal/orders"
	"fitpack_admin/web/templates/pages"
	"fitpack_admin/web/templates/shared"
)

// OrdersHandler serves the signed-in customer's own orders
type OrdersHandler struct {
	source   orders.Source
	currency string
}

func NewOrdersHandler(source orders.Source, currency string) *OrdersHandler {
	return &OrdersHandler{source: source, currency: currency}
}

// List renders the order list, filtered by ?status=
func (h *OrdersHandler) List(c echo.Context) error {
	list := orders.New(h.source, getUintFromContext(c, "userID"))

	err := list.UpdateStatusFilter(c.Request().Context(), c.QueryParam("status"))
	if errors.Is(err, orders.ErrInvalidStatus) {
		return echo.NewHTTPError(http.StatusBadRequest, "The selected status is invalid.")
	}
	if err != nil {
		return err
	}

	props := pages.OrdersProps{
		Title:       "My Orders",
		ActiveNav:   "orders",
		Breadcrumbs: shared.Trail(shared.Breadcrumb{Title: "My Orders"}),
		UserEmail:   getStringFromContext(c, "userEmail"),
		UserUID:     getStringFromContext(c, "userUID"),
		List:        list,
		Statuses:    pages.OrderStatusOptions(),
		Currency:    h.currency,
	}
	return pages.Orders(props).Render(c.Request().Context(), c.Response())
}
