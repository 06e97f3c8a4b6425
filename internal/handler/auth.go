package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/service"
)

// AuthHandler exposes the sign-up, login and forgot-password flows.
type AuthHandler struct {
	Auth *service.AuthService
	Log  *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Regno    string `json:"regno"`
	Password string `json:"password"`
}
type forgotReq struct {
	Regno string `json:"regno"`
}
type otpReq struct {
	OTP string `json:"otp"`
}
type passwordReq struct {
	Password string `json:"password"`
}

// SignUp: POST /auth/sign-up. Mails an OTP and returns the SignUpAccessToken.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req service.SignUpInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	tok, err := h.Auth.SignUp(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgOTPSent, echo.Map{"token": tok})
}

// VerifySignUp: POST /auth/sign-up/verify behind a SignUpAccessToken gate.
func (h *AuthHandler) VerifySignUp(c echo.Context) error {
	var req otpReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	tok, err := h.Auth.VerifySignUp(c.Request().Context(), claims(c), req.OTP)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgAccountCreated, echo.Map{"useraccesstoken": tok})
}

// Login: POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	tok, err := h.Auth.Login(c.Request().Context(), req.Regno, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgAuthenticated, echo.Map{"useraccesstoken": tok})
}

// ForgotPassword: POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	tok, err := h.Auth.ForgotPassword(c.Request().Context(), req.Regno)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgOTPSent, echo.Map{"token": tok})
}

// VerifyForgotPassword: POST /auth/forgot-password/verify behind a
// ForgotPasswordAccessToken gate.
func (h *AuthHandler) VerifyForgotPassword(c echo.Context) error {
	var req otpReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	tok, err := h.Auth.VerifyForgotPassword(c.Request().Context(), claims(c), req.OTP)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgOTPVerified, echo.Map{"token": tok})
}

// UpdatePassword: POST /auth/forgot-password/update behind a
// ForgotPasswordVerifyAccessToken gate.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	if err := h.Auth.UpdatePassword(c.Request().Context(), claims(c), req.Password); err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgPasswordUpdated, nil)
}
