package appointment

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/misonrisa/clinic/internal/platform/apperror"
	"github.com/misonrisa/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts appointment endpoints on the authenticated group.
// Every route is owner-scoped through the token subject.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/appointments")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/slots", h.Slots)
	g.GET("/day/:date", h.Day)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
}

func ownerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	from, to := c.QueryParam("from"), c.QueryParam("to")
	var items []*Appointment
	if from != "" || to != "" {
		if from == "" || to == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "from and to must be provided together")
		}
		items, err = h.svc.ListBetween(c.Request().Context(), owner, from, to)
	} else {
		items, err = h.svc.List(c.Request().Context(), owner)
	}
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Day(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListForDay(c.Request().Context(), owner, c.Param("date"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Slots(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
	}
	granularity := 0
	if g := c.QueryParam("granularity"); g != "" {
		granularity, err = strconv.Atoi(g)
		if err != nil || granularity <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "granularity must be a positive integer")
		}
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), owner, date, granularity, c.QueryParam("order"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) Get(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), owner, id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return apperror.ToHTTP(err)
	}
	a, err := h.svc.Create(c.Request().Context(), owner, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Update(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), owner, id, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), owner, id, in.Status)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), owner, id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
