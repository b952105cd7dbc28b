package handlers

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/gateway/httputil"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"github.com/go-chi/chi/v5"
)

type productResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Amount    int32   `json:"amount"`
	Supplier  string  `json:"supplier"`
	Details   string  `json:"details"`
	Price     float64 `json:"price"`
	IssueDate string  `json:"issueDate"`
}

type createProductRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Amount    int32   `json:"amount" validate:"gte=0"`
	Supplier  string  `json:"supplier" validate:"max=200"`
	Details   string  `json:"details"`
	Price     float64 `json:"price" validate:"gte=0"`
	IssueDate string  `json:"issueDate" validate:"required,datetime=2006-01-02"`
}

type createProductResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type updateProductRequest struct {
	Name      *string  `json:"name" validate:"omitnil,min=1,max=200"`
	Amount    *int32   `json:"amount" validate:"omitnil,gte=0"`
	Supplier  *string  `json:"supplier" validate:"omitnil,max=200"`
	Details   *string  `json:"details"`
	Price     *float64 `json:"price" validate:"omitnil,gte=0"`
	IssueDate *string  `json:"issueDate" validate:"omitnil,datetime=2006-01-02"`
}

// productID parses the {id} path segment, writing a 400 when it is not a positive integer.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, "Invalid product id.")
		return 0, false
	}
	return id, true
}

func queryInt32(r *http.Request, name string) (int32, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	return int32(n), err
}

// ListProducts handles GET /Products?limit=&offset=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt32(r, "limit")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid query parameter: limit")
		return
	}
	offset, err := queryInt32(r, "offset")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid query parameter: offset")
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.products.ListProducts(ctx, &pb.ListProductsRequest{Limit: limit, Offset: offset})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(resp.Products))
	for _, p := range resp.Products {
		out = append(out, productResponse{
			ID:        p.Id,
			Name:      p.Name,
			Amount:    p.Amount,
			Supplier:  p.Supplier,
			Details:   p.Details,
			Price:     p.Price,
			IssueDate: p.IssueDate,
		})
	}
	httputil.JSON(w, http.StatusOK, out)
}

// GetProduct handles GET /Products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	p, err := h.products.GetProduct(ctx, &pb.GetProductRequest{Id: id})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, productResponse{
		ID:        p.Id,
		Name:      p.Name,
		Amount:    p.Amount,
		Supplier:  p.Supplier,
		Details:   p.Details,
		Price:     p.Price,
		IssueDate: p.IssueDate,
	})
}

// CreateProduct handles POST /Products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.products.CreateProduct(ctx, &pb.CreateProductRequest{
		Name:      req.Name,
		Amount:    req.Amount,
		Supplier:  req.Supplier,
		Details:   req.Details,
		Price:     req.Price,
		IssueDate: req.IssueDate,
	})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, createProductResponse{Success: resp.Success, Message: resp.Message, ID: resp.Id})
}

// UpdateProduct handles PUT /Products/{id}. Absent fields are left unchanged.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req updateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.products.UpdateProduct(ctx, &pb.UpdateProductRequest{
		Id:        id,
		Name:      req.Name,
		Amount:    req.Amount,
		Supplier:  req.Supplier,
		Details:   req.Details,
		Price:     req.Price,
		IssueDate: req.IssueDate,
	})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// DeleteProduct handles DELETE /Products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.products.DeleteProduct(ctx, &pb.DeleteProductRequest{Id: id})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}
