package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
)

const (
	MsgPaymentRecorded  = "Payment recorded successfully."
	MsgPaymentDuplicate = "Payment already recorded."
)

type PaymentService interface {
	MakePayment(ctx context.Context, req services.PaymentRequest) (*models.Payment, bool, error)
	ListPayments(ctx context.Context, accountID string) ([]*models.Payment, error)
}

type PaymentHandler struct {
	pb.UnimplementedPaymentServiceServer
	svc    PaymentService
	logger logging.Logger
}

func NewPaymentHandler(svc PaymentService, l logging.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: l.With("module", "payment_handler")}
}

func (h *PaymentHandler) MakePayment(ctx context.Context, req *pb.MakePaymentRequest) (*pb.MakePaymentResponse, error) {
	p, created, err := h.svc.MakePayment(ctx, services.PaymentRequest{
		AccountID:      req.AccountId,
		ProductName:    req.ProductName,
		Amount:         req.Amount,
		IdempotencyKey: req.GetIdempotencyKey(),
	})
	if err != nil {
		return nil, failure(ctx, h.logger, "make payment", err)
	}

	msg := MsgPaymentRecorded
	if !created {
		msg = MsgPaymentDuplicate
	}
	return &pb.MakePaymentResponse{Success: true, Message: msg, PaymentId: p.ID}, nil
}

func (h *PaymentHandler) ListPayments(ctx context.Context, req *pb.ListPaymentsRequest) (*pb.ListPaymentsResponse, error) {
	list, err := h.svc.ListPayments(ctx, req.AccountId)
	if err != nil {
		return nil, failure(ctx, h.logger, "list payments", err)
	}

	out := make([]*pb.Payment, 0, len(list))
	for _, p := range list {
		out = append(out, &pb.Payment{
			Id:           p.ID,
			AccountId:    p.AccountID,
			ProductName:  p.ProductName,
			Amount:       p.Amount,
			PurchaseDate: p.PurchaseDate.UTC().Format(time.RFC3339),
		})
	}
	return &pb.ListPaymentsResponse{Payments: out}, nil
}
