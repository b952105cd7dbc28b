package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/storefront/internal/logging"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"google.golang.org/grpc"
)

// GRPCServer serves the account, product and payment services on one listener.
type GRPCServer struct {
	address     string
	accounts    *AccountHandler
	products    *ProductHandler
	payments    *PaymentHandler
	tokens      AccountService
	requireAuth bool
	logger      logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as AccountService, ps ProductService, pays PaymentService, requireAuth bool) (*GRPCServer, error) {
	if as == nil || ps == nil || pays == nil {
		return nil, errors.New("grpc server: all services are required")
	}

	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		accounts:    NewAccountHandler(as, l),
		products:    NewProductHandler(ps, l),
		payments:    NewPaymentHandler(pays, l),
		tokens:      as,
		requireAuth: requireAuth,
	}, nil
}

// newServer builds the gRPC server with interceptors and registered services.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.metricsInterceptor,
		s.accessTokenInterceptor,
	))

	pb.RegisterAccountServiceServer(srv, s.accounts)
	pb.RegisterProductServiceServer(srv, s.products)
	pb.RegisterPaymentServiceServer(srv, s.payments)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
