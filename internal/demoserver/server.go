// Package demoserver is a reference implementation of the order backend the
// board engine synchronizes against: the list-orders and update-status REST
// boundaries plus order creation, backed by SQLite. Every confirmed write is
// published to the realtime channel, so engines in other sessions observe it
// as a push event.
package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fabiogif/moday-board/internal/realtime"
	"github.com/fabiogif/moday-board/pkg/board"
)

// JSONResponse is the standard {status, message, data} envelope.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Server serves the order API. The feed may be nil, in which case writes
// are not announced on the realtime channel.
type Server struct {
	db     *gorm.DB
	feed   *realtime.Feed
	log    *logrus.Logger
	router *gin.Engine
}

// OpenDB opens (and migrates) the SQLite database at path.
// Use ":memory:" for an ephemeral database.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// New creates a server over the given database and feed.
func New(db *gorm.DB, feed *realtime.Feed) *Server {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	s := &Server{db: db, feed: feed, log: log}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/orders", s.listOrders)
	router.POST("/orders", s.createOrder)
	router.PUT("/orders/:identify", s.updateOrderStatus)

	s.router = router
	return s
}

// Router exposes the HTTP handler, for mounting or for httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Infof("order API listening on %s", addr)
	return s.router.Run(addr)
}

func respondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func respondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// listOrders returns every order, newest first, in the {data: [...]} shape.
func (s *Server) listOrders(c *gin.Context) {
	var orders []Order
	if err := s.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	payloads := make([]map[string]any, 0, len(orders))
	for i := range orders {
		payloads = append(payloads, orders[i].payload())
	}

	respondJSON(c, http.StatusOK, "List of orders", payloads)
}

// createOrderRequest is the inbound order shape.
type createOrderRequest struct {
	Identify     string `json:"identify"`
	ClientName   string `json:"client_name"`
	ClientEmail  string `json:"client_email"`
	ClientPhone  string `json:"client_phone"`
	Table        string `json:"table"`
	IsDelivery   bool   `json:"isDelivery"`
	Address      string `json:"address"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	Complement   string `json:"complement"`
	Notes        string `json:"notes"`
	Products     []struct {
		Name     string  `json:"name"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"products"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	identify := req.Identify
	if identify == "" {
		identify = uuid.New().String()
	}

	order := Order{
		Identify:    identify,
		Status:      string(board.StatusPreparing),
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		TableRef:    req.Table,
		IsDelivery:  req.IsDelivery,
		Address:     req.Address,
		Number:      req.Number,
		Neighborhood: req.Neighborhood,
		Complement:  req.Complement,
		Notes:       req.Notes,
	}

	for _, p := range req.Products {
		quantity := p.Quantity
		if quantity < 1 {
			quantity = 1
		}
		order.Items = append(order.Items, OrderItem{
			Name:     p.Name,
			Quantity: quantity,
			Price:    p.Price,
		})
		order.Total += float64(quantity) * p.Price
	}

	if err := s.db.Create(&order).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	s.publish(c.Request.Context(), board.EventOrderCreated, &order, "", "")
	s.log.WithField("identify", order.Identify).Info("order created")

	respondJSON(c, http.StatusCreated, "Order created", order.payload())
}

// updateOrderStatusRequest is the single-field mutation body.
type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	identify := c.Param("identify")

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	status := board.Status(req.Status)
	if err := status.Validate(); err != nil {
		respondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	var order Order
	err := s.db.Preload("Items").Where("identify = ?", identify).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, fmt.Errorf("order %s not found", identify))
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	oldStatus := order.Status
	order.Status = string(status)
	if err := s.db.Save(&order).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	s.publish(c.Request.Context(), board.EventOrderStatusChanged, &order, oldStatus, string(status))
	s.log.WithFields(logrus.Fields{
		"identify": order.Identify,
		"from":     oldStatus,
		"to":       order.Status,
	}).Info("order status updated")

	respondJSON(c, http.StatusOK, "Order updated", order.payload())
}

// publish announces a confirmed write on the realtime channel.
// Publishing is best-effort from the API's point of view: a failure is
// logged, never surfaced to the HTTP caller, because the write itself
// already committed.
func (s *Server) publish(ctx context.Context, kind board.EventKind, order *Order, oldStatus, newStatus string) {
	if s.feed == nil {
		return
	}

	payload, err := json.Marshal(order.payload())
	if err != nil {
		s.log.WithError(err).Error("failed to encode order event")
		return
	}

	event := &board.OrderEvent{
		Kind:      kind,
		Order:     payload,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	if err := s.feed.Publish(ctx, event); err != nil {
		s.log.WithError(err).Error("failed to publish order event")
	}
}
