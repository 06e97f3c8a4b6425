package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/handler"
	"github.com/connectpp/student-network/internal/service"
	"github.com/connectpp/student-network/internal/token"
)

var otpInMail = regexp.MustCompile(`<strong>([A-Za-z0-9]{10})</strong>`)

type app struct {
	e    *echo.Echo
	db   *store
	mail *inbox
}

func newApp(t *testing.T) *app {
	t.Helper()
	access, err := token.NewAccessCodec("app-secret")
	require.NoError(t, err)
	otp, err := token.NewOTPCodec("otp-secret")
	require.NoError(t, err)

	db := newStore()
	box := &inbox{}
	log := zap.NewNop()
	users := userStore{db}

	auth := service.NewAuthService(users, access, otp, box, nil, log, "students.example.edu")
	search := service.NewSearchService(users, access)

	e := New(Handlers{
		Auth:     handler.NewAuthHandler(auth, log),
		Profile:  handler.NewProfileHandler(publicStore{db}, programmingStore{db}, log),
		Projects: handler.NewProjectHandler(projectStore{db}, log),
		Tech:     handler.NewTechHandler(techStore{db}, log),
		Search:   handler.NewSearchHandler(search, log),
		Access:   access,
	}, log)
	return &app{e: e, db: db, mail: box}
}

type reply struct {
	code int
	body map[string]any
}

func (r reply) str(key string) string {
	s, _ := r.body[key].(string)
	return s
}

func (a *app) do(t *testing.T, method, target string, body any) reply {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, strings.NewReader(string(raw)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := reply{code: rec.Code, body: map[string]any{}}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.body), rec.Body.String())
	}
	return out
}

func (a *app) get(t *testing.T, path, tok string, params ...string) reply {
	t.Helper()
	q := url.Values{"token": {tok}}
	for i := 0; i+1 < len(params); i += 2 {
		q.Set(params[i], params[i+1])
	}
	return a.do(t, http.MethodGet, path+"?"+q.Encode(), nil)
}

func (a *app) lastOTP(t *testing.T) string {
	t.Helper()
	m := otpInMail.FindStringSubmatch(a.mail.last().HTML)
	require.Len(t, m, 2, "no otp in mail")
	return m[1]
}

// register runs the whole sign-up flow and returns the UserAccessToken.
func (a *app) register(t *testing.T, first, last, regno, password string) string {
	t.Helper()
	r := a.do(t, http.MethodPost, "/auth/sign-up", echo.Map{
		"firstname": first, "lastname": last, "regno": regno, "password": password,
	})
	require.Equal(t, http.StatusOK, r.code, r.body)

	r = a.do(t, http.MethodPost, "/auth/sign-up/verify", echo.Map{"token": r.str("token"), "otp": a.lastOTP(t)})
	require.Equal(t, http.StatusOK, r.code, r.body)
	require.NotEmpty(t, r.str("useraccesstoken"))
	return r.str("useraccesstoken")
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	a := newApp(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/auth/login"},
		{http.MethodPut, "/profile/public"},
	} {
		r := a.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, r.code, tc.path)
		assert.Equal(t, false, r.body["status"])
		assert.Equal(t, "This route does not exist", r.str("message"))
	}
}

func TestSignUpVerifyLogin(t *testing.T) {
	a := newApp(t)

	r := a.do(t, http.MethodPost, "/auth/sign-up", echo.Map{
		"firstname": "Ann", "lastname": "Lee", "regno": "123456789", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, true, r.body["status"])
	assert.Equal(t, service.MsgOTPSent, r.str("message"))
	assert.Equal(t, "ann.123456789@students.example.edu", a.mail.last().To)
	signUp := r.str("token")

	r = a.do(t, http.MethodPost, "/auth/sign-up/verify", echo.Map{"token": signUp, "otp": "wrongwrong"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgIncorrectOTP, r.str("message"))

	r = a.do(t, http.MethodPost, "/auth/sign-up/verify", echo.Map{"token": signUp, "otp": a.lastOTP(t)})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, service.MsgAccountCreated, r.str("message"))

	// the same sign-up token cannot create the account twice
	r = a.do(t, http.MethodPost, "/auth/sign-up/verify", echo.Map{"token": signUp, "otp": a.lastOTP(t)})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgUserAlreadyRegistered, r.str("message"))

	r = a.do(t, http.MethodPost, "/auth/login", echo.Map{"regno": "123456789", "password": "pw1"})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, service.MsgAuthenticated, r.str("message"))
	assert.NotEmpty(t, r.str("useraccesstoken"))

	r = a.do(t, http.MethodPost, "/auth/login", echo.Map{"regno": "123456789", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgIncorrectPassword, r.str("message"))
}

func TestSignUp_RejectsBadInput(t *testing.T) {
	a := newApp(t)
	for name, body := range map[string]echo.Map{
		"short regno":   {"firstname": "Ann", "lastname": "Lee", "regno": "12345", "password": "pw"},
		"digit name":    {"firstname": "Ann1", "lastname": "Lee", "regno": "123456789", "password": "pw"},
		"no password":   {"firstname": "Ann", "lastname": "Lee", "regno": "123456789"},
		"empty object":  {},
		"long password": {"firstname": "Ann", "lastname": "Lee", "regno": "123456789", "password": strings.Repeat("p", 73)},
		"long name":     {"firstname": strings.Repeat("a", 101), "lastname": "Lee", "regno": "123456789", "password": "pw"},
	} {
		r := a.do(t, http.MethodPost, "/auth/sign-up", body)
		assert.Equal(t, http.StatusBadRequest, r.code, name)
		assert.Equal(t, service.MsgInvalidCredentials, r.str("message"), name)
	}
	assert.Empty(t, a.mail.sent)
}

func TestForgotPasswordCycle(t *testing.T) {
	a := newApp(t)
	a.register(t, "Ann", "Lee", "123456789", "pw1")

	r := a.do(t, http.MethodPost, "/auth/forgot-password", echo.Map{"regno": "000000000"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgUserNotRegistered, r.str("message"))

	r = a.do(t, http.MethodPost, "/auth/forgot-password", echo.Map{"regno": "123456789"})
	require.Equal(t, http.StatusOK, r.code)
	forgot := r.str("token")

	// a forgot-password token does not pass the update gate
	r = a.do(t, http.MethodPost, "/auth/forgot-password/update", echo.Map{"token": forgot, "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgInvalidToken, r.str("message"))

	r = a.do(t, http.MethodPost, "/auth/forgot-password/verify", echo.Map{"token": forgot, "otp": a.lastOTP(t)})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, service.MsgOTPVerified, r.str("message"))
	verified := r.str("token")

	// and a verified token does not pass the verify gate again
	r = a.do(t, http.MethodPost, "/auth/forgot-password/verify", echo.Map{"token": verified, "otp": a.lastOTP(t)})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgInvalidToken, r.str("message"))

	r = a.do(t, http.MethodPost, "/auth/forgot-password/update", echo.Map{"token": verified, "password": "pw2"})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, service.MsgPasswordUpdated, r.str("message"))

	r = a.do(t, http.MethodPost, "/auth/login", echo.Map{"regno": "123456789", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	r = a.do(t, http.MethodPost, "/auth/login", echo.Map{"regno": "123456789", "password": "pw2"})
	assert.Equal(t, http.StatusOK, r.code)
}

func TestTokenGate(t *testing.T) {
	a := newApp(t)
	user := a.register(t, "Ann", "Lee", "123456789", "pw1")

	r := a.do(t, http.MethodGet, "/profile/public", nil)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgInvalidCredentials, r.str("message"))

	r = a.get(t, "/profile/public", user+"x")
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgInvalidToken, r.str("message"))

	req := httptest.NewRequest(http.MethodGet, "/profile/public", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicAndProgrammingProfile(t *testing.T) {
	a := newApp(t)
	user := a.register(t, "Ann", "Lee", "123456789", "pw1")

	r := a.get(t, "/profile/public", user)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Returning Public Profile", r.str("message"))
	assert.Equal(t, map[string]any{"firstname": "Ann", "lastname": "Lee", "regno": "123456789"}, r.body["profile"])

	r = a.do(t, http.MethodPost, "/profile/public", echo.Map{"token": user, "branch": "CSE", "joiningYear": ""})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Profile Updated", r.str("message"))

	r = a.get(t, "/profile/public", user)
	profile := r.body["profile"].(map[string]any)
	assert.Equal(t, "CSE", profile["branch"])
	assert.NotContains(t, profile, "joiningYear")

	r = a.get(t, "/profile/programming", user)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Returning User Programming Profile", r.str("message"))
	assert.Equal(t, map[string]any{}, r.body["profile"])

	r = a.do(t, http.MethodPost, "/profile/programming", echo.Map{"token": user, "preferedLanguage": "Go"})
	require.Equal(t, http.StatusOK, r.code)
	r = a.get(t, "/profile/programming", user)
	assert.Equal(t, map[string]any{"preferedLanguage": "Go"}, r.body["profile"])
}

func TestProjects(t *testing.T) {
	a := newApp(t)
	user := a.register(t, "Ann", "Lee", "123456789", "pw1")
	other := a.register(t, "Bob", "Ray", "987654321", "pw1")

	add := echo.Map{
		"token": user, "projectName": "Compiler", "briefDescription": "toy compiler",
		"gitHubUrl": "https://git.example/compiler", "startMonth": "July", "startYear": "2019",
	}
	r := a.do(t, http.MethodPost, "/profile/projects/add", add)
	require.Equal(t, http.StatusOK, r.code, r.body)
	assert.Equal(t, "Project Saved", r.str("message"))
	id := r.str("project_id")

	r = a.do(t, http.MethodPost, "/profile/projects/add", add)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "Project with same name already exists", r.str("message"))

	r = a.do(t, http.MethodPost, "/profile/projects/add", echo.Map{"token": user, "projectName": "Half"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgInvalidCredentials, r.str("message"))

	r = a.do(t, http.MethodPost, "/profile/projects/update", echo.Map{
		"token": user, "project_id": id, "endMonth": "May", "endYear": "2020",
	})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Project Updated", r.str("message"))

	r = a.get(t, "/profile/projects", user)
	require.Equal(t, http.StatusOK, r.code)
	projects := r.body["projects"].([]any)
	require.Len(t, projects, 1)
	p := projects[0].(map[string]any)
	assert.Equal(t, "July, 2019", p["startTime"])
	assert.Equal(t, "May, 2020", p["endTime"])

	// another user can neither change nor delete it
	r = a.do(t, http.MethodPost, "/profile/projects/update", echo.Map{"token": other, "project_id": id, "projectName": "X"})
	assert.Equal(t, "Project not found", r.str("message"))
	r = a.do(t, http.MethodDelete, "/profile/projects", echo.Map{"token": other, "project_id": id})
	assert.Equal(t, "Project not found", r.str("message"))

	r = a.do(t, http.MethodDelete, "/profile/projects", echo.Map{"token": user, "project_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgInvalidCredentials, r.str("message"))

	r = a.do(t, http.MethodDelete, "/profile/projects", echo.Map{"token": user, "project_id": id})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Project Deleted", r.str("message"))

	r = a.get(t, "/profile/projects", user)
	assert.Empty(t, r.body["projects"])
}

func TestTechs(t *testing.T) {
	a := newApp(t)
	user := a.register(t, "Ann", "Lee", "123456789", "pw1")

	tech := echo.Map{
		"token": user, "techName": "Go", "learningYear": "2020", "stillUseIt": false,
		"sourceName": "Tour", "sourceUrl": "https://go.dev/tour",
	}
	r := a.do(t, http.MethodPost, "/profile/tech/add", tech)
	assert.Equal(t, http.StatusBadRequest, r.code, "level is required")
	assert.Equal(t, service.MsgInvalidCredentials, r.str("message"))

	tech["level"] = 0
	r = a.do(t, http.MethodPost, "/profile/tech/add", tech)
	require.Equal(t, http.StatusOK, r.code, r.body)
	assert.Equal(t, "Tech saved", r.str("message"))
	id := r.str("tech_id")

	r = a.do(t, http.MethodPost, "/profile/tech/update", echo.Map{"token": user, "tech_id": id, "stillUseIt": true, "level": 3})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Tech Updated", r.str("message"))

	r = a.get(t, "/profile/tech", user)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Returning all Techs", r.str("message"))
	techs := r.body["techs"].([]any)
	require.Len(t, techs, 1)
	got := techs[0].(map[string]any)
	assert.Equal(t, true, got["stillUseIt"])
	assert.Equal(t, float64(3), got["level"])

	r = a.do(t, http.MethodDelete, "/profile/tech", echo.Map{"token": user, "tech_id": id})
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Tech Deleted", r.str("message"))
	r = a.do(t, http.MethodDelete, "/profile/tech", echo.Map{"token": user, "tech_id": id})
	assert.Equal(t, "Tech not found", r.str("message"))
}

func TestSearchThenReadProfiles(t *testing.T) {
	a := newApp(t)
	ann := a.register(t, "Ann", "Lee", "123456789", "pw1")
	bob := a.register(t, "Bob", "Ray", "987654321", "pw1")

	r := a.do(t, http.MethodPost, "/profile/public", echo.Map{"token": bob, "branch": "ECE"})
	require.Equal(t, http.StatusOK, r.code)

	r = a.get(t, "/search/text-match/get-all", ann)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, service.MsgReturningAllUser, r.str("message"))
	users := r.body["users"].([]any)
	require.Len(t, users, 2)
	assert.NotContains(t, users[0], "password")

	r = a.get(t, "/search/text-match/user/regno", ann, "regno", "000000000")
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, service.MsgUserNotFound, r.str("message"))

	r = a.get(t, "/search/text-match/user/fullname", ann, "fullname", "bob ray")
	assert.Equal(t, http.StatusBadRequest, r.code, "names match exactly")
	assert.Equal(t, service.MsgUserNotFound, r.str("message"))

	r = a.get(t, "/search/text-match/user/fullname", ann, "fullname", "Bob Ray")
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, service.MsgUserFound, r.str("message"))

	r = a.get(t, "/search/text-match/user/regno", ann, "regno", "987654321")
	require.Equal(t, http.StatusOK, r.code)
	found := r.str("searchAccessToken")
	require.NotEmpty(t, found)

	r = a.get(t, "/search/profiles/public", found)
	require.Equal(t, http.StatusOK, r.code)
	profile := r.body["profile"].(map[string]any)
	assert.Equal(t, "987654321", profile["regno"])
	assert.Equal(t, "ECE", profile["branch"])

	for _, path := range []string{"/search/profiles/programming", "/search/profiles/projects", "/search/profiles/tech"} {
		r = a.get(t, path, found)
		assert.Equal(t, http.StatusOK, r.code, path)
	}

	// tokens are not interchangeable between the two route families
	r = a.get(t, "/search/profiles/public", ann)
	assert.Equal(t, service.MsgInvalidToken, r.str("message"))
	r = a.get(t, "/profile/public", found)
	assert.Equal(t, service.MsgInvalidToken, r.str("message"))
	r = a.do(t, http.MethodPost, "/profile/public", echo.Map{"token": found, "branch": "X"})
	assert.Equal(t, service.MsgInvalidToken, r.str("message"))
}

func TestUnknownPathUnderGatedPrefix(t *testing.T) {
	a := newApp(t)
	r := a.do(t, http.MethodGet, "/search/profiles/nothing", nil)
	assert.Equal(t, http.StatusNotFound, r.code)
	assert.Equal(t, "This route does not exist", r.str("message"))
}
