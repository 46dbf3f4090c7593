package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type HouseHandler struct {
	svc service.HouseService
}

func NewHouseHandler(svc service.HouseService) *HouseHandler {
	return &HouseHandler{svc: svc}
}

type HouseResponse struct {
	ID          uint64 `json:"id"`
	OwnerUID    string `json:"ownerUid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toHouseResponse(h *model.House) HouseResponse {
	return HouseResponse{
		ID:          h.ID,
		OwnerUID:    h.OwnerUID,
		Title:       h.Title,
		Description: h.Description,
		Price:       h.Price,
		Status:      string(h.Status),
		CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   h.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *HouseHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	house, err := h.svc.Create(c.Request().Context(), uid, body.Title, body.Description, body.Price)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toHouseResponse(house))
}

func (h *HouseHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid house id"))
	}
	house, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "house not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch house"))
	}
	return c.JSON(http.StatusOK, toHouseResponse(house))
}

func (h *HouseHandler) List(c echo.Context) error {
	list, err := h.svc.ListAvailable(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch houses"))
	}
	resp := make([]HouseResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toHouseResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HouseHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch houses"))
	}
	resp := make([]HouseResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toHouseResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
