package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
)

// CourtHandler serves the court catalog: public listing plus the admin
// CRUD surface.
type CourtHandler struct {
	Courts *repository.CourtRepo
}

func NewCourtHandler(courts *repository.CourtRepo) *CourtHandler {
	if courts == nil {
		panic("nil repository passed to NewCourtHandler")
	}
	return &CourtHandler{Courts: courts}
}

type courtReq struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	SportType         string `json:"sport_type"`
	PriceCentsPerHour int64  `json:"price_cents_per_hour"`
}

type courtView struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	SportType         string `json:"sport_type"`
	PriceCentsPerHour int64  `json:"price_cents_per_hour"`
}

func newCourtView(c *model.Court) courtView {
	return courtView{
		ID:                c.ID.String(),
		Code:              c.Code,
		Name:              c.Name,
		Description:       c.Description,
		SportType:         c.SportType,
		PriceCentsPerHour: c.PriceCentsPerHour,
	}
}

func (req *courtReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.SportType = strings.ToUpper(strings.TrimSpace(req.SportType))
	switch {
	case req.Name == "":
		return "name required"
	case req.SportType == "":
		return "sport_type required"
	case req.PriceCentsPerHour <= 0:
		return "price_cents_per_hour must be positive"
	}
	return ""
}

// Create registers a new court. The court code is generated here and
// never supplied by the client.
func (h *CourtHandler) Create(c echo.Context) error {
	var req courtReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code, err := booking.GenerateCode(ctx, booking.CourtCodePrefix, h.Courts.CodeExists)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate code failed"})
	}
	court := &model.Court{
		ID:                uuid.New(),
		Code:              code,
		Name:              req.Name,
		Description:       strings.TrimSpace(req.Description),
		SportType:         req.SportType,
		PriceCentsPerHour: req.PriceCentsPerHour,
	}
	if err := h.Courts.Create(ctx, court); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create court failed"})
	}
	return c.JSON(http.StatusCreated, newCourtView(court))
}

// Update rewrites the mutable fields of a court.
func (h *CourtHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	var req courtReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	court, err := h.Courts.GetByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	court.Name = req.Name
	court.Description = strings.TrimSpace(req.Description)
	court.SportType = req.SportType
	court.PriceCentsPerHour = req.PriceCentsPerHour
	if err := h.Courts.Update(ctx, court); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, newCourtView(court))
}

// Get returns one court.
func (h *CourtHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	court, err := h.Courts.GetByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, newCourtView(court))
}

// List returns all courts, optionally filtered with ?sport=.
func (h *CourtHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sport := strings.ToUpper(strings.TrimSpace(c.QueryParam("sport")))
	courts, err := h.Courts.List(ctx, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list courts failed"})
	}
	out := make([]courtView, 0, len(courts))
	for i := range courts {
		out = append(out, newCourtView(&courts[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"courts": out})
}

// Delete removes a court with no reservations.
func (h *CourtHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Courts.Delete(ctx, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
