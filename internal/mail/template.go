package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Template selects one of the OTP emails.
type Template string

const (
	SignUpOTP         Template = "sign-up-otp"
	ForgotPasswordOTP Template = "forgot-password-otp"
)

var subjects = map[Template]string{
	SignUpOTP:         "Connect++ - Sign Up (OTP)",
	ForgotPasswordOTP: "Connect++ - Password Recovery (OTP)",
}

// Subject returns the subject line for t.
func (t Template) Subject() string { return subjects[t] }

// Render fills t with the recipient's name and the code.
func Render(t Template, name, otp string) (string, error) {
	if _, ok := subjects[t]; !ok {
		return "", fmt.Errorf("unknown mail template %q", t)
	}
	var buf bytes.Buffer
	data := struct{ Name, OTP string }{Name: name, OTP: otp}
	if err := templates.ExecuteTemplate(&buf, string(t)+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", t, err)
	}
	return buf.String(), nil
}
