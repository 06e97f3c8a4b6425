package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/mail"
	"github.com/connectpp/student-network/internal/model"
	"github.com/connectpp/student-network/internal/queue"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/token"
	"github.com/connectpp/student-network/internal/utils"
)

// CallTimeout bounds every storage and mail call made by a flow step.
const CallTimeout = 5 * time.Second

// UserStore is the part of the user repository the auth flows need.
type UserStore interface {
	FindByRegno(ctx context.Context, regno string) (model.User, error)
	Insert(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, regno, hash string) error
}

// Mailer delivers one email and blocks until it is accepted or rejected.
type Mailer interface {
	Send(ctx context.Context, m mail.Message) error
}

// EventPublisher receives auth activity events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// AuthService runs the sign-up, login and forgot-password flows.
type AuthService struct {
	users  UserStore
	access *token.AccessCodec
	otp    *token.OTPCodec
	mailer Mailer
	events EventPublisher
	log    *zap.Logger

	domain  string
	newOTP  func() (string, error)
	timeout time.Duration
}

// NewAuthService wires the flows. domain is the institution mail domain
// used to derive a student's address from firstname and regno.
func NewAuthService(users UserStore, access *token.AccessCodec, otp *token.OTPCodec,
	mailer Mailer, events EventPublisher, log *zap.Logger, domain string) *AuthService {
	if events == nil {
		events = queue.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:   users,
		access:  access,
		otp:     otp,
		mailer:  mailer,
		events:  events,
		log:     log,
		domain:  domain,
		newOTP:  utils.NewOTP,
		timeout: CallTimeout,
	}
}

// SignUpInput is the body of POST /auth/sign-up.
type SignUpInput struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Regno     string `json:"regno"`
	Password  string `json:"password"`
}

var regnoRule = validation.By(func(v interface{}) error {
	s, _ := v.(string)
	if s != "" && !utils.IsValidRegno(s) {
		return errors.New("must be nine digits")
	}
	return nil
})

// MaxNameLength matches the width of users.firstname and users.lastname.
const MaxNameLength = 100

// Validate checks that every field is present, names are ASCII letters that
// fit their columns, regno is nine digits and the password fits bcrypt.
func (in SignUpInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Firstname, validation.Required, is.Alpha, validation.Length(1, MaxNameLength)),
		validation.Field(&in.Lastname, validation.Required, is.Alpha, validation.Length(1, MaxNameLength)),
		validation.Field(&in.Regno, validation.Required, regnoRule),
		validation.Field(&in.Password, validation.Required, validation.Length(1, utils.MaxPasswordBytes)),
	)
}

// validPassword reports whether password can be stored.
func validPassword(password string) bool {
	return password != "" && len(password) <= utils.MaxPasswordBytes
}

// Address derives the institution mailbox of a student.
func (s *AuthService) Address(firstname, regno string) string {
	return strings.ToLower(firstname) + "." + regno + "@" + s.domain
}

// SignUp starts a registration. Nothing is stored: the pending account,
// including the plaintext password, travels inside the returned
// SignUpAccessToken together with the OTP envelope.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", invalid(MsgInvalidCredentials)
	}

	if _, err := s.findUser(ctx, in.Regno); err == nil {
		return "", conflict(MsgUserAlreadyRegistered)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", storage("sign-up: find user", err)
	}

	code, envelope, err := s.issueOTP()
	if err != nil {
		return "", err
	}
	tok, err := s.access.Issue(token.Claims{
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Regno:        in.Regno,
		Password:     in.Password,
		EncryptedOTP: envelope,
	}, token.SignUpAccessToken)
	if err != nil {
		return "", storage("sign-up: issue token", err)
	}

	if err := s.sendOTP(ctx, mail.SignUpOTP, in.Firstname, in.Lastname, in.Regno, code); err != nil {
		return "", mailFailure("sign-up: send otp", err)
	}
	return tok, nil
}

// VerifySignUp finishes a registration from the claims of a verified
// SignUpAccessToken. When two verifications of the same pending regno
// race, the unique index lets exactly one insert win; the other gets
// "User already registered".
func (s *AuthService) VerifySignUp(ctx context.Context, claims token.Claims, otp string) (string, error) {
	if otp == "" || !validPassword(claims.Password) {
		return "", invalid(MsgInvalidCredentials)
	}
	if err := s.checkOTP(claims.EncryptedOTP, otp, token.SignUpAccessToken); err != nil {
		return "", err
	}

	hash, err := utils.HashPassword(claims.Password)
	if err != nil {
		return "", storage("verify sign-up: hash password", err)
	}
	u := &model.User{
		Firstname:    claims.Firstname,
		Lastname:     claims.Lastname,
		Regno:        claims.Regno,
		PasswordHash: hash,
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.users.Insert(cctx, u)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", conflict(MsgUserAlreadyRegistered)
		}
		return "", storage("verify sign-up: insert user", err)
	}

	s.publish(ctx, queue.NewAuthEvent(queue.UserRegistered, u.Regno, u.Firstname, u.Lastname))
	return s.userToken(*u)
}

// Login exchanges regno and password for a UserAccessToken.
func (s *AuthService) Login(ctx context.Context, regno, password string) (string, error) {
	if utils.ContainsEmpty(regno, password) || !utils.IsValidRegno(regno) {
		return "", invalid(MsgInvalidCredentials)
	}
	u, err := s.findUser(ctx, regno)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFound(MsgUserNotRegistered)
		}
		return "", storage("login: find user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return "", authFailure(MsgIncorrectPassword, nil)
	}
	return s.userToken(u)
}

// ForgotPassword emails a recovery OTP to the registered student and
// returns a ForgotPasswordAccessToken carrying its envelope.
func (s *AuthService) ForgotPassword(ctx context.Context, regno string) (string, error) {
	if regno == "" || !utils.IsValidRegno(regno) {
		return "", invalid(MsgInvalidCredentials)
	}
	u, err := s.findUser(ctx, regno)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFound(MsgUserNotRegistered)
		}
		return "", storage("forgot-password: find user", err)
	}

	code, envelope, err := s.issueOTP()
	if err != nil {
		return "", err
	}
	tok, err := s.access.Issue(token.Claims{
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		Regno:        u.Regno,
		EncryptedOTP: envelope,
	}, token.ForgotPasswordAccessToken)
	if err != nil {
		return "", storage("forgot-password: issue token", err)
	}

	if err := s.sendOTP(ctx, mail.ForgotPasswordOTP, u.Firstname, u.Lastname, u.Regno, code); err != nil {
		return "", mailFailure("forgot-password: send otp", err)
	}
	return tok, nil
}

// VerifyForgotPassword checks the OTP of a ForgotPasswordAccessToken and
// returns a new ForgotPasswordVerifyAccessToken. The envelope is carried
// over, so the verified token expires together with the OTP.
func (s *AuthService) VerifyForgotPassword(ctx context.Context, claims token.Claims, otp string) (string, error) {
	if otp == "" {
		return "", invalid(MsgInvalidCredentials)
	}
	if err := s.checkOTP(claims.EncryptedOTP, otp, token.ForgotPasswordAccessToken); err != nil {
		return "", err
	}
	tok, err := s.access.Issue(token.Claims{
		Firstname:    claims.Firstname,
		Lastname:     claims.Lastname,
		Regno:        claims.Regno,
		EncryptedOTP: claims.EncryptedOTP,
	}, token.ForgotPasswordVerifyAccessToken)
	if err != nil {
		return "", storage("verify forgot-password: issue token", err)
	}
	return tok, nil
}

// UpdatePassword stores a new password for the regno of a verified
// ForgotPasswordVerifyAccessToken.
func (s *AuthService) UpdatePassword(ctx context.Context, claims token.Claims, password string) error {
	if !validPassword(password) {
		return invalid(MsgInvalidCredentials)
	}
	if _, err := s.otp.Open(claims.EncryptedOTP); err != nil {
		return authFailure(InvalidTokenMessage(token.ForgotPasswordVerifyAccessToken), err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return storage("update password: hash", err)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.users.UpdatePassword(cctx, claims.Regno, hash)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(MsgUserNotRegistered)
		}
		return storage("update password", err)
	}

	s.publish(ctx, queue.NewAuthEvent(queue.PasswordUpdated, claims.Regno, claims.Firstname, claims.Lastname))
	return nil
}

func (s *AuthService) findUser(ctx context.Context, regno string) (model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.users.FindByRegno(ctx, regno)
}

func (s *AuthService) issueOTP() (code, envelope string, err error) {
	code, err = s.newOTP()
	if err != nil {
		return "", "", storage("generate otp", err)
	}
	envelope, err = s.otp.Issue(code)
	if err != nil {
		return "", "", storage("issue otp envelope", err)
	}
	return code, envelope, nil
}

// checkOTP opens envelope and compares it with the submitted code. A bad
// envelope is reported against the kind of the token that carried it.
func (s *AuthService) checkOTP(envelope, submitted string, kind token.Kind) error {
	code, err := s.otp.Open(envelope)
	if err != nil {
		return authFailure(InvalidTokenMessage(kind), err)
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(submitted)) != 1 {
		return authFailure(MsgIncorrectOTP, nil)
	}
	return nil
}

func (s *AuthService) sendOTP(ctx context.Context, t mail.Template, firstname, lastname, regno, code string) error {
	html, err := mail.Render(t, firstname+" "+lastname, code)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.mailer.Send(ctx, mail.Message{
		To:      s.Address(firstname, regno),
		Subject: t.Subject(),
		HTML:    html,
	})
}

func (s *AuthService) userToken(u model.User) (string, error) {
	tok, err := s.access.Issue(token.Claims{
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Regno:     u.Regno,
	}, token.UserAccessToken)
	if err != nil {
		return "", storage("issue user token", err)
	}
	return tok, nil
}

func (s *AuthService) publish(ctx context.Context, ev queue.AuthEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish auth event failed", zap.String("type", ev.Type), zap.String("regno", ev.Regno), zap.Error(err))
	}
}
