package handlers

import (
	"net/http"

	"github.com/dmitrijs2005/storefront/internal/gateway/httputil"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
)

// Passwords are capped at 72 bytes, the most bcrypt will hash.
type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"max=64"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	Username string `json:"username" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	NewUsername *string `json:"newUsername" validate:"omitnil,max=64"`
	NewRole     *string `json:"newRole" validate:"omitnil,max=64"`
}

type changePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

// Register handles POST /Account/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.Register(ctx, &pb.RegisterRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// Login handles POST /Account/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.Login(ctx, &pb.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, loginResponse{
		Success:      resp.Success,
		Message:      resp.Message,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
}

// Logout handles POST /Account/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.Logout(ctx, &pb.LogoutRequest{Username: req.Username})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// RefreshToken handles POST /Account/refresh-token.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: req.RefreshToken})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tokenResponse{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
}

// GetUser handles GET /Account/get-user?email=.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if !h.checkVar(w, "email", email, "required,email") {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.GetUser(ctx, &pb.GetUserRequest{Email: email})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, userResponse{
		Success:  resp.Success,
		Message:  resp.Message,
		Username: resp.Username,
		Role:     resp.Role,
	})
}

// DeleteUser handles DELETE /Account/delete-user?email=.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if !h.checkVar(w, "email", email, "required,email") {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.DeleteUser(ctx, &pb.DeleteUserRequest{Email: email})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// UpdateUser handles PUT /Account/update-user. Absent fields are left unchanged.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.UpdateUser(ctx, &pb.UpdateUserRequest{
		Email:       req.Email,
		NewUsername: req.NewUsername,
		NewRole:     req.NewRole,
	})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// ChangePassword handles POST /Account/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.ChangePassword(ctx, &pb.ChangePasswordRequest{
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// RequestPasswordReset handles POST /Account/request-password-reset.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.RequestPasswordReset(ctx, &pb.RequestPasswordResetRequest{Email: req.Email})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}

// ResetPassword handles POST /Account/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()

	resp, err := h.accounts.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: req.Token, NewPassword: req.NewPassword})
	if err != nil {
		h.rpcError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, httputil.Reply{Success: resp.Success, Message: resp.Message})
}
