package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	cashierGroup := api.Group("", auth.RequireRole(auth.RoleCashier))
	cashierGroup.POST("/transactions/appointment/:appointmentId", h.PayAppointment)
	cashierGroup.POST("/transactions/service", h.PayService)
	cashierGroup.GET("/transactions", h.List)
	cashierGroup.GET("/transactions/:id", h.Get)
}

func caller(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	return id, nil
}

func writeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrServiceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyPaid):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrPaymentFailed):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) PayAppointment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.PayAppointment(c.Request().Context(), userID, appointmentID, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) PayService(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	var req ServicePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.PayService(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) List(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	params := pagination.FromContext(c)
	transactions, total, err := h.svc.List(c.Request().Context(), userID,
		c.QueryParam("pay_for"), params.Limit, params.Offset)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(transactions, total, params.Limit, params.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, t)
}
