package handlers

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/logging"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// The embedded interfaces stay nil; calling a method a test did not
// override panics, which flags an unexpected backend call.

type fakeAccounts struct {
	pb.AccountServiceClient
	err error
	md  metadata.MD

	register   *pb.RegisterRequest
	login      *pb.LoginRequest
	getUser    *pb.GetUserRequest
	updateUser *pb.UpdateUserRequest
	deleteUser *pb.DeleteUserRequest
}

func (f *fakeAccounts) capture(ctx context.Context) {
	f.md, _ = metadata.FromOutgoingContext(ctx)
}

func (f *fakeAccounts) Register(ctx context.Context, in *pb.RegisterRequest, _ ...grpc.CallOption) (*pb.RegisterResponse, error) {
	f.capture(ctx)
	f.register = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.RegisterResponse{Success: true, Message: "User registered successfully."}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, in *pb.LoginRequest, _ ...grpc.CallOption) (*pb.LoginResponse, error) {
	f.capture(ctx)
	f.login = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.LoginResponse{Success: true, Message: "User logged in successfully.", AccessToken: "at", RefreshToken: "rt"}, nil
}

func (f *fakeAccounts) Logout(ctx context.Context, _ *pb.LogoutRequest, _ ...grpc.CallOption) (*pb.LogoutResponse, error) {
	f.capture(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &pb.LogoutResponse{Success: true, Message: "User logged out successfully."}, nil
}

func (f *fakeAccounts) RefreshToken(ctx context.Context, _ *pb.RefreshTokenRequest, _ ...grpc.CallOption) (*pb.RefreshTokenResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.RefreshTokenResponse{AccessToken: "at2", RefreshToken: "rt2"}, nil
}

func (f *fakeAccounts) GetUser(ctx context.Context, in *pb.GetUserRequest, _ ...grpc.CallOption) (*pb.GetUserResponse, error) {
	f.capture(ctx)
	f.getUser = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.GetUserResponse{Success: true, Message: "User found.", Username: "a", Role: "user"}, nil
}

func (f *fakeAccounts) DeleteUser(ctx context.Context, in *pb.DeleteUserRequest, _ ...grpc.CallOption) (*pb.DeleteUserResponse, error) {
	f.deleteUser = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.DeleteUserResponse{Success: true, Message: "User deleted successfully."}, nil
}

func (f *fakeAccounts) UpdateUser(ctx context.Context, in *pb.UpdateUserRequest, _ ...grpc.CallOption) (*pb.UpdateUserResponse, error) {
	f.updateUser = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.UpdateUserResponse{Success: true, Message: "User updated successfully."}, nil
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, _ *pb.ChangePasswordRequest, _ ...grpc.CallOption) (*pb.ChangePasswordResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.ChangePasswordResponse{Success: true, Message: "Password changed successfully."}, nil
}

func (f *fakeAccounts) RequestPasswordReset(ctx context.Context, _ *pb.RequestPasswordResetRequest, _ ...grpc.CallOption) (*pb.RequestPasswordResetResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.RequestPasswordResetResponse{Success: true, Message: "sent"}, nil
}

func (f *fakeAccounts) ResetPassword(ctx context.Context, _ *pb.ResetPasswordRequest, _ ...grpc.CallOption) (*pb.ResetPasswordResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.ResetPasswordResponse{Success: true, Message: "Password has been reset."}, nil
}

func (f *fakeAccounts) Ping(ctx context.Context, _ *pb.PingRequest, _ ...grpc.CallOption) (*pb.PingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.PingResponse{Status: "OK"}, nil
}

type fakeProducts struct {
	pb.ProductServiceClient
	err error

	list   *pb.ListProductsRequest
	get    *pb.GetProductRequest
	create *pb.CreateProductRequest
	update *pb.UpdateProductRequest
}

func (f *fakeProducts) ListProducts(_ context.Context, in *pb.ListProductsRequest, _ ...grpc.CallOption) (*pb.ListProductsResponse, error) {
	f.list = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.ListProductsResponse{Products: []*pb.Product{{Id: 1, Name: "Lamp", IssueDate: "2024-03-01"}}}, nil
}

func (f *fakeProducts) GetProduct(_ context.Context, in *pb.GetProductRequest, _ ...grpc.CallOption) (*pb.GetProductResponse, error) {
	f.get = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.GetProductResponse{Id: in.Id, Name: "Lamp", Amount: 3, Price: 19.5, IssueDate: "2024-03-01"}, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, in *pb.CreateProductRequest, _ ...grpc.CallOption) (*pb.CreateProductResponse, error) {
	f.create = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.CreateProductResponse{Success: true, Message: "Product created successfully.", Id: 9}, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, in *pb.UpdateProductRequest, _ ...grpc.CallOption) (*pb.UpdateProductResponse, error) {
	f.update = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.UpdateProductResponse{Success: true, Message: "Product updated successfully."}, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, _ *pb.DeleteProductRequest, _ ...grpc.CallOption) (*pb.DeleteProductResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.DeleteProductResponse{Success: true, Message: "Product deleted successfully."}, nil
}

type fakePayments struct {
	pb.PaymentServiceClient
	err     error
	payment *pb.MakePaymentRequest
}

func (f *fakePayments) MakePayment(_ context.Context, in *pb.MakePaymentRequest, _ ...grpc.CallOption) (*pb.MakePaymentResponse, error) {
	f.payment = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.MakePaymentResponse{Success: true, Message: "Payment recorded successfully.", PaymentId: "p-1"}, nil
}

func (f *fakePayments) ListPayments(_ context.Context, in *pb.ListPaymentsRequest, _ ...grpc.CallOption) (*pb.ListPaymentsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.ListPaymentsResponse{Payments: []*pb.Payment{{Id: "p-1", AccountId: in.AccountId, Amount: 5, PurchaseDate: "2025-01-02T03:04:05Z"}}}, nil
}
