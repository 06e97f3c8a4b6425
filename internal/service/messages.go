package service

import (
	"strings"

	"github.com/connectpp/student-network/internal/token"
)

// Client-facing messages.
const (
	MsgInvalidCredentials    = "Invalid Credentials"
	MsgInvalidToken          = "Invalid Token"
	MsgUserAlreadyRegistered = "User already registered"
	MsgUserNotRegistered     = "User not registered"
	MsgIncorrectPassword     = "Incorrect Password"
	MsgIncorrectOTP          = "Incorrect OTP"
	MsgUserNotFound          = "User Not Found"
	MsgInternal              = "Internal Server Error"

	MsgOTPSent          = "OTP sent to email address"
	MsgAccountCreated   = "User Account Created"
	MsgAuthenticated    = "User Authenticated"
	MsgOTPVerified      = "OTP Verified"
	MsgPasswordUpdated  = "Password Updated"
	MsgUserFound        = "User Found"
	MsgReturningAllUser = "Returning all users"
)

// InvalidTokenMessage names the token kind whose embedded OTP envelope
// failed to open, e.g. "Invalid signUpAccessToken".
func InvalidTokenMessage(kind token.Kind) string {
	k := kind.String()
	if k == "" {
		return MsgInvalidToken
	}
	return "Invalid " + strings.ToLower(k[:1]) + k[1:]
}
