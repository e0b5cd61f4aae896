package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/session"
	"fitpack_admin/web/templates/pages"
)

// StateStore persists the dashboard state of each admin session
type StateStore interface {
	Load(ctx context.Context, sessionID string) (*dashboard.State, error)
	Save(ctx context.Context, sessionID string, st *dashboard.State) error
}

// Flasher carries one notice to the next render
type Flasher interface {
	Put(ctx context.Context, sessionID string, n *dashboard.Notice) error
	Pop(ctx context.Context, sessionID string) (*dashboard.Notice, error)
}

// SignalPublisher fans dashboard signals out to other listeners
type SignalPublisher interface {
	Publish(ctx context.Context, actor string, signals []string)
}

// AdminHandler serves the admin dashboard page and its actions
type AdminHandler struct {
	dash       *dashboard.Dashboard
	states     StateStore
	flashes    Flasher
	signals    SignalPublisher
	subscriber session.Subscriber
	orders     dashboard.OrderSource
	currency   string
	log        *zap.Logger
	now        func() time.Time
}

func NewAdminHandler(dash *dashboard.Dashboard, states StateStore, flashes Flasher, signals SignalPublisher,
	subscriber session.Subscriber, orders dashboard.OrderSource, currency string, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		dash:       dash,
		states:     states,
		flashes:    flashes,
		signals:    signals,
		subscriber: subscriber,
		orders:     orders,
		currency:   currency,
		log:        log,
		now:        time.Now,
	}
}

// Show renders the dashboard for the current session state
func (h *AdminHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	uid := getStringFromContext(c, "userUID")

	st, err := h.states.Load(ctx, uid)
	if err != nil {
		return fmt.Errorf("show dashboard: %w", err)
	}
	h.dash.Mount(ctx, st)

	view, err := h.dash.Render(ctx, st, dashboard.CursorsFromQuery(c.QueryParams()))
	if err != nil {
		return fmt.Errorf("show dashboard: %w", err)
	}

	notice, err := h.flashes.Pop(ctx, uid)
	if err != nil {
		h.log.Warn("pop flash", zap.String("uid", uid), zap.Error(err))
	}

	props := pages.NewAdminDashboardProps(view, notice, h.currency)
	props.UserEmail = getStringFromContext(c, "userEmail")
	props.UserUID = uid

	if err := pages.AdminDashboard(props).Render(ctx, c.Response()); err != nil {
		return err
	}

	// validation messages are shown once
	st.Errors = nil
	if err := h.states.Save(ctx, uid, st); err != nil {
		h.log.Warn("save dashboard state", zap.String("uid", uid), zap.Error(err))
	}
	return nil
}

type adminAction func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error)

var adminActions = map[string]adminAction{
	"set-tab": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		h.dash.SetActiveTab(st, c.FormValue("tab"))
		return dashboard.Result{}, nil
	},
	"filter": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		h.dash.ApplyFilters(st, c.FormValue("search"), c.FormValue("status_filter"), c.FormValue("date_filter"))
		return dashboard.Result{}, nil
	},
	"close-modals": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		h.dash.CloseModals(st)
		return dashboard.Result{}, nil
	},
	"close-delete-modal": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		h.dash.CloseDeleteModal(st)
		return dashboard.Result{}, nil
	},
	"confirm-delete": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		return h.dash.ConfirmDelete(c.Request().Context(), st, getUintFromContext(c, "userID")), nil
	},

	// packages
	"create-package-modal": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		h.dash.OpenCreatePackageModal(st)
		return dashboard.Result{}, nil
	},
	"store-package": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		form, upload, err := bindPackageForm(c)
		if err != nil {
			return dashboard.Result{}, err
		}
		st.NewPackage = form
		return h.dash.CreatePackage(c.Request().Context(), st, upload), nil
	},
	"edit-package-modal": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		return h.dash.OpenEditPackageModal(c.Request().Context(), st, id)
	}),
	"update-package": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		form, upload, err := bindPackageForm(c)
		if err != nil {
			return dashboard.Result{}, err
		}
		st.EditPackage = form
		return h.dash.UpdatePackage(c.Request().Context(), st, upload), nil
	},
	"delete-package-modal": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		return h.dash.OpenDeletePackageModal(c.Request().Context(), st, id)
	}),
	"toggle-package": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		return h.dash.TogglePackageStatus(c.Request().Context(), st, id)
	}),

	// users
	"create-user-modal": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		h.dash.OpenCreateUserModal(st)
		return dashboard.Result{}, nil
	},
	"store-user": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		var form dashboard.UserForm
		if err := c.Bind(&form); err != nil {
			return dashboard.Result{}, err
		}
		st.NewUser = form
		return h.dash.CreateUser(c.Request().Context(), st), nil
	},
	"edit-user-modal": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		return h.dash.OpenEditUserModal(c.Request().Context(), st, id)
	}),
	"update-user": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		var form dashboard.UserForm
		if err := c.Bind(&form); err != nil {
			return dashboard.Result{}, err
		}
		st.EditUser = form
		return h.dash.UpdateUser(c.Request().Context(), st), nil
	},
	"delete-user-modal": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		return h.dash.OpenDeleteUserModal(c.Request().Context(), st, id)
	}),

	// orders
	"view-order": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		return h.dash.OpenEditOrderModal(c.Request().Context(), st, id)
	}),
	"delete-order-modal": withID(func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result {
		h.dash.OpenDeleteOrderModal(st, id)
		return dashboard.Result{}
	}),
	"delete-order": func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		return h.dash.DeleteOrder(c.Request().Context(), st), nil
	},
}

func withID(fn func(h *AdminHandler, c echo.Context, st *dashboard.State, id uint) dashboard.Result) adminAction {
	return func(h *AdminHandler, c echo.Context, st *dashboard.State) (dashboard.Result, error) {
		id, err := strconv.ParseUint(c.FormValue("id"), 10, 32)
		if err != nil || id == 0 {
			return dashboard.Result{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
		}
		return fn(h, c, st, uint(id)), nil
	}
}

func bindPackageForm(c echo.Context) (dashboard.PackageForm, *dashboard.Upload, error) {
	var form dashboard.PackageForm
	if err := c.Bind(&form); err != nil {
		return form, nil, err
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil, nil
	}
	if err != nil {
		return form, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload")
	}
	f, err := fh.Open()
	if err != nil {
		return form, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return form, nil, err
	}
	return form, &dashboard.Upload{Filename: fh.Filename, Data: data}, nil
}

// Action runs one named dashboard action and redirects back to the page,
// keeping the list pages from the query string.
func (h *AdminHandler) Action(c echo.Context) error {
	action, ok := adminActions[c.Param("action")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown dashboard action")
	}

	ctx := c.Request().Context()
	uid := getStringFromContext(c, "userUID")

	st, err := h.states.Load(ctx, uid)
	if err != nil {
		return fmt.Errorf("dashboard action: %w", err)
	}

	res, err := action(h, c, st)
	if err != nil {
		return err
	}

	if err := h.states.Save(ctx, uid, st); err != nil {
		return fmt.Errorf("dashboard action: %w", err)
	}
	if res.Notice != nil {
		if err := h.flashes.Put(ctx, uid, res.Notice); err != nil {
			h.log.Warn("put flash", zap.String("uid", uid), zap.Error(err))
		}
	}
	if len(res.Signals) > 0 {
		c.Response().Header().Set("HX-Trigger", session.HXTrigger(res.Signals))
		h.signals.Publish(ctx, uid, res.Signals)
	}

	target := "/admin"
	if enc := dashboard.CursorsFromQuery(c.QueryParams()).Values().Encode(); enc != "" {
		target += "?" + enc
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// Export streams every order as a CSV download
func (h *AdminHandler) Export(c echo.Context) error {
	filename := dashboard.ExportFilename(h.now())
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	resp.WriteHeader(http.StatusOK)

	rows, err := dashboard.WriteOrdersCSV(c.Request().Context(), resp, h.orders, h.currency)
	if err != nil {
		// headers are already sent; the download ends short
		h.log.Error("export orders", zap.Int("rows", rows), zap.Error(err))
		return nil
	}
	h.log.Info("orders exported", zap.Int("rows", rows), zap.String("uid", getStringFromContext(c, "userUID")))
	return nil
}

// Signals relays dashboard signals as server-sent events
func (h *AdminHandler) Signals(c echo.Context) error {
	if h.subscriber == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	ctx := c.Request().Context()
	sub := h.subscriber.Subscribe(ctx, session.SignalChannel)
	defer sub.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", msg.Payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

func getUintFromContext(c echo.Context, key string) uint {
	val := c.Get(key)
	if val == nil {
		return 0
	}
	uintVal, ok := val.(uint)
	if !ok {
		return 0
	}
	return uintVal
}
