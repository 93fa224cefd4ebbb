package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"payment-service/internal/domain"
)

// ReceiptProcessor defines the interface for receipt notification logic
type ReceiptProcessor interface {
	ProcessReceipt(ctx context.Context, receipt domain.Receipt) error
}

type receiptHandler struct {
	processor ReceiptProcessor
}

func NewReceiptHandler(processor ReceiptProcessor) *receiptHandler {
	return &receiptHandler{processor: processor}
}

func (h *receiptHandler) HandleMessage(ctx context.Context, message []byte) error {
	var receipt domain.Receipt
	if err := json.Unmarshal(message, &receipt); err != nil {
		return fmt.Errorf("failed to decode receipt: %w", err)
	}
	return h.processor.ProcessReceipt(ctx, receipt)
}
