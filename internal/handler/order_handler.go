package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type OrderResponse struct {
	ID             uint64  `json:"id"`
	HouseID        uint64  `json:"houseId"`
	BuyerUID       string  `json:"buyerUid"`
	SellerUID      string  `json:"sellerUid"`
	Price          int64   `json:"price"`
	Status         string  `json:"status"`
	ConfirmedAt    *string `json:"confirmedAt,omitempty"`
	ShippedAt      *string `json:"shippedAt,omitempty"`
	DeliveredAt    *string `json:"deliveredAt,omitempty"`
	CompletedAt    *string `json:"completedAt,omitempty"`
	AutoConfirmAt  *string `json:"autoConfirmAt,omitempty"`
	BuyerReview    string  `json:"buyerReview,omitempty"`
	SellerReview   string  `json:"sellerReview,omitempty"`
	BuyerRating    uint8   `json:"buyerRating,omitempty"`
	SellerRating   uint8   `json:"sellerRating,omitempty"`
	BuyerReviewed  bool    `json:"buyerReviewed"`
	SellerReviewed bool    `json:"sellerReviewed"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func fmtTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	val := t.Format(time.RFC3339)
	return &val
}

func toOrderResponse(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:             o.ID,
		HouseID:        o.HouseID,
		BuyerUID:       o.BuyerUID,
		SellerUID:      o.SellerUID,
		Price:          o.Price,
		Status:         string(o.Status),
		ConfirmedAt:    fmtTime(o.ConfirmedAt),
		ShippedAt:      fmtTime(o.ShippedAt),
		DeliveredAt:    fmtTime(o.DeliveredAt),
		CompletedAt:    fmtTime(o.CompletedAt),
		AutoConfirmAt:  fmtTime(o.AutoConfirmAt),
		BuyerReview:    o.BuyerReview,
		SellerReview:   o.SellerReview,
		BuyerRating:    o.BuyerRating,
		SellerRating:   o.SellerRating,
		BuyerReviewed:  o.BuyerReviewed,
		SellerReviewed: o.SellerReviewed,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *OrderHandler) Purchase(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	houseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid house id"))
	}
	o, err := h.svc.PurchaseHouse(c.Request().Context(), houseID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "house not found"))
		case service.ErrHouseUnavailable:
			return c.JSON(http.StatusConflict, NewErrorResponse("house_unavailable", "house is not open for purchase"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) Confirm(c echo.Context) error {
	return h.transition(c, service.ActionConfirm)
}

func (h *OrderHandler) Reject(c echo.Context) error {
	return h.transition(c, service.ActionReject)
}

func (h *OrderHandler) Ship(c echo.Context) error {
	return h.transition(c, service.ActionShip)
}

func (h *OrderHandler) Receive(c echo.Context) error {
	return h.transition(c, service.ActionReceive)
}

func (h *OrderHandler) Complete(c echo.Context) error {
	return h.transition(c, service.ActionComplete)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, service.ActionCancel)
}

func (h *OrderHandler) RejectDelivery(c echo.Context) error {
	return h.transition(c, service.ActionRejectDelivery)
}

func (h *OrderHandler) transition(c echo.Context, action service.OrderAction) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var body struct {
		Message string `json:"message"`
		Rating  uint8  `json:"rating"`
	}
	_ = c.Bind(&body)
	o, err := h.svc.Transition(c.Request().Context(), orderID, action, uid, service.TransitionPayload{
		Message: body.Message,
		Rating:  body.Rating,
	})
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case service.ErrInvalidTransition:
			return c.JSON(http.StatusConflict, NewErrorResponse("invalid_transition", "action not allowed from current status"))
		case service.ErrStoreConflict:
			return c.JSON(http.StatusConflict, NewErrorResponse("store_conflict", "order changed concurrently, retry"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to update order"))
		}
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := h.svc.Get(c.Request().Context(), orderID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a party to this order"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch order"))
		}
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

type OrderMessageResponse struct {
	ID        uint64 `json:"id"`
	OrderID   uint64 `json:"orderId"`
	UserUID   string `json:"userUid"`
	Action    string `json:"action"`
	Message   string `json:"message,omitempty"`
	Rating    uint8  `json:"rating,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func (h *OrderHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	list, err := h.svc.ListMessages(c.Request().Context(), orderID, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a party to this order"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch messages"))
		}
	}
	resp := make([]OrderMessageResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, OrderMessageResponse{
			ID:        m.ID,
			OrderID:   m.OrderID,
			UserUID:   m.UserUID,
			Action:    m.Action,
			Message:   m.Message,
			Rating:    m.Rating,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sales"))
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
