package organization

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
	// Clinics are provisioned by the operator account only.
	devGroup := api.Group("", auth.RequireRole(auth.RoleDev))
	devGroup.POST("/clinics", h.CreateClinic)
	devGroup.GET("/clinics", h.ListClinics)
	devGroup.GET("/clinics/:id", h.GetClinic)
	devGroup.PUT("/clinics/:id", h.UpdateClinic)
	devGroup.DELETE("/clinics/:id", h.DeleteClinic)

	// Directors manage the departments of their own clinic.
	directorGroup := api.Group("", auth.RequireRole(auth.RoleDirector))
	directorGroup.POST("/departments", h.CreateDepartment)
	directorGroup.GET("/departments", h.ListDepartments)
	directorGroup.GET("/departments/:id", h.GetDepartment)
	directorGroup.PUT("/departments/:id", h.UpdateDepartment)
	directorGroup.DELETE("/departments/:id", h.DeleteDepartment)
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
	case errors.Is(err, ErrClinicNotFound), errors.Is(err, ErrDepartmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrClinicExists), errors.Is(err, ErrDepartmentExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// -- Clinic Handlers --

func (h *Handler) CreateClinic(c echo.Context) error {
	var req ClinicRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	clinic, err := h.svc.CreateClinic(c.Request().Context(), req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, clinic)
}

func (h *Handler) ListClinics(c echo.Context) error {
	params := pagination.FromContext(c)
	clinics, total, err := h.svc.ListClinics(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(clinics, total, params.Limit, params.Offset))
}

func (h *Handler) GetClinic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	clinic, err := h.svc.GetClinic(c.Request().Context(), id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) UpdateClinic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ClinicUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	clinic, err := h.svc.UpdateClinic(c.Request().Context(), id, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) DeleteClinic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteClinic(c.Request().Context(), id); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Department Handlers --

func (h *Handler) CreateDepartment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	var req DepartmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dept, err := h.svc.CreateDepartment(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, dept)
}

func (h *Handler) ListDepartments(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	params := pagination.FromContext(c)
	depts, total, err := h.svc.ListDepartments(c.Request().Context(), userID, params.Limit, params.Offset)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(depts, total, params.Limit, params.Offset))
}

func (h *Handler) GetDepartment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dept, err := h.svc.GetDepartment(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, dept)
}

func (h *Handler) UpdateDepartment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req DepartmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dept, err := h.svc.UpdateDepartment(c.Request().Context(), userID, id, req)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, dept)
}

func (h *Handler) DeleteDepartment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDepartment(c.Request().Context(), userID, id); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
