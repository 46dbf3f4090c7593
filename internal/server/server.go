package server

import (
	"net/http"

	"github.com/kfurusato/house-market-backend/internal/config"
	"github.com/kfurusato/house-market-backend/internal/handler"
	appmw "github.com/kfurusato/house-market-backend/internal/middleware"
	"github.com/kfurusato/house-market-backend/internal/repository"
	"github.com/kfurusato/house-market-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e        *echo.Echo
	OrderSvc service.OrderService
}

func New(db *gorm.DB, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization", appmw.HeaderUserUID},
	}))
	e.Use(appmw.Identity())

	houseRepo := repository.NewHouseRepository(db)
	houseSvc := service.NewHouseService(houseRepo)
	houseHandler := handler.NewHouseHandler(houseSvc)

	notifyRepo := repository.NewNotificationRepository(db)
	notifySvc := service.NewNotificationService(notifyRepo)
	notifyHandler := handler.NewNotificationHandler(notifySvc)

	settleSvc := service.NewSettlementService(db)
	earningHandler := handler.NewEarningHandler(settleSvc)

	orderSvc := service.NewOrderService(db, settleSvc, notifySvc, cfg.AutoConfirmGrace(), nil)
	orderHandler := handler.NewOrderHandler(orderSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")
	api.GET("/houses", houseHandler.List)
	api.GET("/houses/:id", houseHandler.Get)
	api.POST("/houses", houseHandler.Create, appmw.RequireAuth)
	api.GET("/me/houses", houseHandler.ListMine, appmw.RequireAuth)

	api.POST("/houses/:id/purchase", orderHandler.Purchase, appmw.RequireAuth)
	api.GET("/orders/:id", orderHandler.Get, appmw.RequireAuth)
	api.GET("/orders/:id/messages", orderHandler.ListMessages, appmw.RequireAuth)
	api.POST("/orders/:id/confirm", orderHandler.Confirm, appmw.RequireAuth)
	api.POST("/orders/:id/reject", orderHandler.Reject, appmw.RequireAuth)
	api.POST("/orders/:id/ship", orderHandler.Ship, appmw.RequireAuth)
	api.POST("/orders/:id/receive", orderHandler.Receive, appmw.RequireAuth)
	api.POST("/orders/:id/complete", orderHandler.Complete, appmw.RequireAuth)
	api.POST("/orders/:id/cancel", orderHandler.Cancel, appmw.RequireAuth)
	api.POST("/orders/:id/reject-delivery", orderHandler.RejectDelivery, appmw.RequireAuth)
	api.GET("/me/orders", orderHandler.ListMine, appmw.RequireAuth)
	api.GET("/me/sales", orderHandler.ListSales, appmw.RequireAuth)

	api.GET("/me/earnings", earningHandler.ListMine, appmw.RequireAuth)
	api.GET("/me/commissions", earningHandler.ListCommissions, appmw.RequireAuth)
	api.POST("/referrals", earningHandler.RegisterReferral, appmw.RequireAuth)

	api.GET("/me/notifications", notifyHandler.List, appmw.RequireAuth)
	api.POST("/me/notifications/read", notifyHandler.MarkAllRead, appmw.RequireAuth)

	return &Server{e: e, OrderSvc: orderSvc}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
