package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/storefront/internal/logging"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"github.com/dmitrijs2005/storefront/internal/server/auth"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MsgRegistered     = "User registered successfully."
	MsgLoggedIn       = "User logged in successfully."
	MsgLoggedOut      = "User logged out successfully."
	MsgUserFound      = "User found."
	MsgUserDeleted    = "User deleted successfully."
	MsgUserUpdated    = "User updated successfully."
	MsgPasswordChange = "Password changed successfully."
	MsgResetRequested = "If the email is registered, a password reset link has been sent."
	MsgPasswordReset  = "Password has been reset."
)

// AccountService is the account logic the handler delegates to.
type AccountService interface {
	Register(ctx context.Context, username, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Logout(ctx context.Context, username string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetUser(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, email string) error
	UpdateUser(ctx context.Context, email string, newUsername, newRole *string) (*models.User, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error)
	Ping(ctx context.Context) error
}

type AccountHandler struct {
	pb.UnimplementedAccountServiceServer
	svc    AccountService
	logger logging.Logger
}

func NewAccountHandler(svc AccountService, l logging.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: l.With("module", "account_handler")}
}

func (h *AccountHandler) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	u, err := h.svc.Register(ctx, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, h.fail(ctx, "register", err)
	}

	h.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &pb.RegisterResponse{Success: true, Message: MsgRegistered}, nil
}

func (h *AccountHandler) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tokens, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.fail(ctx, "login", err)
	}

	return &pb.LoginResponse{
		Success:      true,
		Message:      MsgLoggedIn,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (h *AccountHandler) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	if err := h.svc.Logout(ctx, req.Username); err != nil {
		return nil, h.fail(ctx, "logout", err)
	}
	return &pb.LogoutResponse{Success: true, Message: MsgLoggedOut}, nil
}

func (h *AccountHandler) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	tokens, err := h.svc.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, h.fail(ctx, "refresh token", err)
	}
	return &pb.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (h *AccountHandler) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.GetUserResponse, error) {
	u, err := h.svc.GetUser(ctx, req.Email)
	if err != nil {
		return nil, h.fail(ctx, "get user", err)
	}
	return &pb.GetUserResponse{Success: true, Message: MsgUserFound, Username: u.Username, Role: u.Role}, nil
}

func (h *AccountHandler) DeleteUser(ctx context.Context, req *pb.DeleteUserRequest) (*pb.DeleteUserResponse, error) {
	if err := h.svc.DeleteUser(ctx, req.Email); err != nil {
		return nil, h.fail(ctx, "delete user", err)
	}
	return &pb.DeleteUserResponse{Success: true, Message: MsgUserDeleted}, nil
}

func (h *AccountHandler) UpdateUser(ctx context.Context, req *pb.UpdateUserRequest) (*pb.UpdateUserResponse, error) {
	if _, err := h.svc.UpdateUser(ctx, req.Email, req.NewUsername, req.NewRole); err != nil {
		return nil, h.fail(ctx, "update user", err)
	}
	return &pb.UpdateUserResponse{Success: true, Message: MsgUserUpdated}, nil
}

func (h *AccountHandler) ChangePassword(ctx context.Context, req *pb.ChangePasswordRequest) (*pb.ChangePasswordResponse, error) {
	if err := h.svc.ChangePassword(ctx, req.Email, req.OldPassword, req.NewPassword); err != nil {
		return nil, h.fail(ctx, "change password", err)
	}
	return &pb.ChangePasswordResponse{Success: true, Message: MsgPasswordChange}, nil
}

func (h *AccountHandler) RequestPasswordReset(ctx context.Context, req *pb.RequestPasswordResetRequest) (*pb.RequestPasswordResetResponse, error) {
	if err := h.svc.RequestPasswordReset(ctx, req.Email); err != nil {
		// the reply must not tell registered addresses apart
		if !errors.Is(err, services.ErrResetDelivery) {
			return nil, h.fail(ctx, "request password reset", err)
		}
		h.logger.Warn(ctx, "Reset link not delivered", "error", err)
	}
	return &pb.RequestPasswordResetResponse{Success: true, Message: MsgResetRequested}, nil
}

func (h *AccountHandler) ResetPassword(ctx context.Context, req *pb.ResetPasswordRequest) (*pb.ResetPasswordResponse, error) {
	if err := h.svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, h.fail(ctx, "reset password", err)
	}
	return &pb.ResetPasswordResponse{Success: true, Message: MsgPasswordReset}, nil
}

func (h *AccountHandler) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	if err := h.svc.Ping(ctx); err != nil {
		h.logger.Warn(ctx, "ping failed", "error", err)
		return nil, status.Error(codes.Unavailable, "backend not ready")
	}
	return &pb.PingResponse{Status: "OK"}, nil
}

func (h *AccountHandler) fail(ctx context.Context, op string, err error) error {
	return failure(ctx, h.logger, op, err)
}

// failure converts err and logs the causes a client never sees.
func failure(ctx context.Context, l logging.Logger, op string, err error) error {
	st := toStatus(err)
	switch status.Code(st) {
	case codes.Internal, codes.Unknown, codes.Unavailable, codes.DeadlineExceeded:
		l.Error(ctx, op+" failed", "error", err)
	}
	return st
}
