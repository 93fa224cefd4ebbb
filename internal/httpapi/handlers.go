package httpapi

import (
	"context"
	"net/http"
	"time"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Catalog interface {
	SelectService(ctx context.Context, name string) (domain.Service, error)
	ValidateCustomAmount(raw string) (string, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
}

type Recorder interface {
	Record(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error)
	Get(ctx context.Context, transactionID string) (domain.Transaction, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	catalog        Catalog
	recorder       Recorder
	db             Pinger
	paypalClientID string
}

func NewHandler(catalog Catalog, recorder Recorder, db Pinger, paypalClientID string) *Handler {
	return &Handler{
		catalog:        catalog,
		recorder:       recorder,
		db:             db,
		paypalClientID: paypalClientID,
	}
}

func (h *Handler) config(c *gin.Context) {
	if h.paypalClientID == "" {
		log.WithField("alert", "misconfiguration").Error("PAYPAL_CLIENT_ID is not set")
		respondError(c, apperr.MissingClientID())
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientId": h.paypalClientID})
}

func (h *Handler) validateService(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	svc, err := h.catalog.SelectService(c.Request.Context(), body.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newServiceResponse(svc))
}

func (h *Handler) validateCustomAmount(c *gin.Context) {
	var body struct {
		Amount domain.FlexString `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	amount, err := h.catalog.ValidateCustomAmount(body.Amount.String())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount})
}

func (h *Handler) recordTransaction(c *gin.Context) {
	var in domain.TransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, bindError(err))
		return
	}

	tx, err := h.recorder.Record(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "transaction": newTransactionResponse(tx)})
}

func (h *Handler) getTransaction(c *gin.Context) {
	tx, err := h.recorder.Get(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": newTransactionResponse(tx)})
}

func (h *Handler) listServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]serviceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, newServiceResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		log.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
