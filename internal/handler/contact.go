package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campusnest/internal/service"
)

type ContactHandler struct {
	Contacts *service.ContactService
}

func NewContactHandler(s *service.ContactService) *ContactHandler {
	return &ContactHandler{Contacts: s}
}

// Submit handles POST /v1/contact
func (h *ContactHandler) Submit(c echo.Context) error {
	var in service.ContactInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	req, err := h.Contacts.Submit(ctx, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "id": req.ID})
}
