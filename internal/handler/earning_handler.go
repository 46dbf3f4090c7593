package handler

import (
	"net/http"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type EarningHandler struct {
	svc service.SettlementService
}

func NewEarningHandler(svc service.SettlementService) *EarningHandler {
	return &EarningHandler{svc: svc}
}

type EarningResponse struct {
	ID       uint64 `json:"id"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
	OrderID  uint64 `json:"orderId"`
	HouseID  uint64 `json:"houseId,omitempty"`
	Status   string `json:"status"`
	EarnedAt string `json:"earnedAt"`
}

type EarningsResponse struct {
	Total    int64             `json:"total"`
	Earnings []EarningResponse `json:"earnings"`
}

func (h *EarningHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, total, err := h.svc.ListEarnings(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch earnings"))
	}
	resp := EarningsResponse{Total: total, Earnings: make([]EarningResponse, 0, len(list))}
	for _, e := range list {
		resp.Earnings = append(resp.Earnings, EarningResponse{
			ID:       e.ID,
			Type:     string(e.Type),
			Amount:   e.Amount,
			OrderID:  e.OrderID,
			HouseID:  e.HouseID,
			Status:   string(e.Status),
			EarnedAt: e.EarnedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type CommissionResponse struct {
	ID               uint64  `json:"id"`
	ReferredUID      string  `json:"referredUid"`
	OrderID          uint64  `json:"orderId"`
	OrderAmount      int64   `json:"orderAmount"`
	CommissionRate   float64 `json:"commissionRate"`
	CommissionAmount int64   `json:"commissionAmount"`
	Status           string  `json:"status"`
	EarnedAt         string  `json:"earnedAt"`
	PaidAt           *string `json:"paidAt,omitempty"`
}

func toCommissionResponse(rc *model.ReferralCommission) CommissionResponse {
	var paidAt *string
	if rc.PaidAt != nil {
		val := rc.PaidAt.Format(time.RFC3339)
		paidAt = &val
	}
	return CommissionResponse{
		ID:               rc.ID,
		ReferredUID:      rc.ReferredUID,
		OrderID:          rc.OrderID,
		OrderAmount:      rc.OrderAmount,
		CommissionRate:   rc.CommissionRate,
		CommissionAmount: rc.CommissionAmount,
		Status:           string(rc.Status),
		EarnedAt:         rc.EarnedAt.Format(time.RFC3339),
		PaidAt:           paidAt,
	}
}

func (h *EarningHandler) ListCommissions(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListCommissions(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch commissions"))
	}
	resp := make([]CommissionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toCommissionResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EarningHandler) RegisterReferral(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		ReferrerUID string `json:"referrerUid"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	ref, err := h.svc.RegisterReferral(c.Request().Context(), body.ReferrerUID, uid)
	if err != nil {
		if err == service.ErrAlreadyReferred {
			return c.JSON(http.StatusConflict, NewErrorResponse("already_referred", "user already has a referrer"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"referrerUid": ref.ReferrerUID,
		"referredUid": ref.ReferredUID,
	})
}
