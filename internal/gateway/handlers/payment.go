package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/storefront/internal/gateway/httputil"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
)

// IdempotencyKeyHeader may carry the key instead of the JSON body.
const IdempotencyKeyHeader = "Idempotency-Key"

type paymentRequest struct {
	AccountID      string  `json:"accountId" validate:"required"`
	ProductName    string  `json:"productName" validate:"required,max=200"`
	Amount         float64 `json:"amount" validate:"gt=0"`
	IdempotencyKey *string `json:"idempotencyKey" validate:"omitnil,min=1,max=128"`
}

type paymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PaymentID string `json:"paymentId"`
}

type paymentItem struct {
	ID           string  `json:"id"`
	AccountID    string  `json:"accountId"`
	ProductName  string  `json:"productName"`
	Amount       float64 `json:"amount"`
	PurchaseDate string  `json:"purchaseDate"`
}

// MakePayment handles POST /Payments. A replay of a known idempotency key
// answers with the original payment id.
func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.IdempotencyKey == nil {
		if key := r.Header.Get(IdempotencyKeyHeader); key != "" {
			if !h.checkVar(w, IdempotencyKeyHeader, key, "max=128") {
				return
			}
			req.IdempotencyKey = &key
		}
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.payments.MakePayment(ctx, &pb.MakePaymentRequest{
		AccountId:      req.AccountID,
		ProductName:    req.ProductName,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, paymentResponse{Success: resp.Success, Message: resp.Message, PaymentID: resp.PaymentId})
}

// ListPayments handles GET /Payments?accountId=.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	if !h.checkVar(w, "accountId", accountID, "required") {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.payments.ListPayments(ctx, &pb.ListPaymentsRequest{AccountId: accountID})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}

	out := make([]paymentItem, 0, len(resp.Payments))
	for _, p := range resp.Payments {
		out = append(out, paymentItem{
			ID:           p.Id,
			AccountID:    p.AccountId,
			ProductName:  p.ProductName,
			Amount:       p.Amount,
			PurchaseDate: p.PurchaseDate,
		})
	}
	httputil.JSON(w, http.StatusOK, out)
}
