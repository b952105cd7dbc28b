package grpc

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
)

const (
	MsgProductCreated = "Product created successfully."
	MsgProductUpdated = "Product updated successfully."
	MsgProductDeleted = "Product deleted successfully."
)

type ProductService interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, limit, offset int32) ([]*models.Product, error)
	CreateProduct(ctx context.Context, in services.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, upd services.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type ProductHandler struct {
	pb.UnimplementedProductServiceServer
	svc    ProductService
	logger logging.Logger
}

func NewProductHandler(svc ProductService, l logging.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, logger: l.With("module", "product_handler")}
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *pb.GetProductRequest) (*pb.GetProductResponse, error) {
	p, err := h.svc.GetProduct(ctx, req.Id)
	if err != nil {
		return nil, failure(ctx, h.logger, "get product", err)
	}

	return &pb.GetProductResponse{
		Id:        p.ID,
		Name:      p.Name,
		Amount:    p.Amount,
		Supplier:  p.Supplier,
		Details:   p.Details,
		Price:     p.Price,
		IssueDate: p.IssueDate.Format(common.IssueDateLayout),
	}, nil
}

func (h *ProductHandler) ListProducts(ctx context.Context, req *pb.ListProductsRequest) (*pb.ListProductsResponse, error) {
	list, err := h.svc.ListProducts(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, failure(ctx, h.logger, "list products", err)
	}

	out := make([]*pb.Product, 0, len(list))
	for _, p := range list {
		out = append(out, productToProto(p))
	}
	return &pb.ListProductsResponse{Products: out}, nil
}

func (h *ProductHandler) CreateProduct(ctx context.Context, req *pb.CreateProductRequest) (*pb.CreateProductResponse, error) {
	p, err := h.svc.CreateProduct(ctx, services.ProductInput{
		Name:      req.Name,
		Amount:    req.Amount,
		Supplier:  req.Supplier,
		Details:   req.Details,
		Price:     req.Price,
		IssueDate: req.IssueDate,
	})
	if err != nil {
		return nil, failure(ctx, h.logger, "create product", err)
	}

	h.logger.Info(ctx, "Product created", "id", p.ID)
	return &pb.CreateProductResponse{Success: true, Message: MsgProductCreated, Id: p.ID}, nil
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, req *pb.UpdateProductRequest) (*pb.UpdateProductResponse, error) {
	_, err := h.svc.UpdateProduct(ctx, req.Id, services.ProductUpdate{
		Name:      req.Name,
		Amount:    req.Amount,
		Supplier:  req.Supplier,
		Details:   req.Details,
		Price:     req.Price,
		IssueDate: req.IssueDate,
	})
	if err != nil {
		return nil, failure(ctx, h.logger, "update product", err)
	}
	return &pb.UpdateProductResponse{Success: true, Message: MsgProductUpdated}, nil
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, req *pb.DeleteProductRequest) (*pb.DeleteProductResponse, error) {
	if err := h.svc.DeleteProduct(ctx, req.Id); err != nil {
		return nil, failure(ctx, h.logger, "delete product", err)
	}
	return &pb.DeleteProductResponse{Success: true, Message: MsgProductDeleted}, nil
}

func productToProto(p *models.Product) *pb.Product {
	return &pb.Product{
		Id:        p.ID,
		Name:      p.Name,
		Amount:    p.Amount,
		Supplier:  p.Supplier,
		Details:   p.Details,
		Price:     p.Price,
		IssueDate: p.IssueDate.Format(common.IssueDateLayout),
	}
}
