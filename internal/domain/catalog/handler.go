package catalog

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
	directorGroup := api.Group("", auth.RequireRole(auth.RoleDirector))
	directorGroup.POST("/services", h.Create)
	directorGroup.GET("/services", h.List)
	directorGroup.GET("/services/:id", h.Get)
	directorGroup.PUT("/services/:id", h.Update)
	directorGroup.DELETE("/services/:id", h.Delete)
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
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDepartmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrServiceExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) Create(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) List(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	params := pagination.FromContext(c)
	services, total, err := h.svc.List(c.Request().Context(), userID, params.Limit, params.Offset)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(services, total, params.Limit, params.Offset))
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
	svc, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) Update(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ServiceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc, err := h.svc.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *Handler) Delete(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
