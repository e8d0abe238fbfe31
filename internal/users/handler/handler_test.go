package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup/internal/platform/config"
	"signup/internal/platform/middleware"
	"signup/internal/users/models"
	"signup/internal/users/notify"
	"signup/internal/users/service"
	"signup/internal/users/store"
	"signup/pkg/testutil"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type testEnv struct {
	router http.Handler
	store  *store.InMemory
	logs   *bytes.Buffer
}

// newTestEnv wires the real service and fan-out over an in-memory store. The
// webhook points at a port nobody listens on unless webhookURL is given.
func newTestEnv(t *testing.T, webhookURL string) *testEnv {
	t.Helper()
	return newTestEnvWithMailer(t, webhookURL, nil)
}

// newTestEnvWithMailer is newTestEnv with a custom mailer; nil logs mail.
func newTestEnvWithMailer(t *testing.T, webhookURL string, mailer notify.Mailer) *testEnv {
	t.Helper()

	if webhookURL == "" {
		closed := httptest.NewServer(http.NotFoundHandler())
		webhookURL = closed.URL
		closed.Close()
	}

	var tick int64
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	users := store.NewInMemory(store.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	if mailer == nil {
		mailer = notify.NewLogMailer(logger)
	}
	fanOut := notify.New(config.Notification{
		ServiceURL: webhookURL,
		Timeout:    time.Second,
		AdminEmail: "admin@example.com",
		FromEmail:  "webmaster@localhost",
	}, mailer, notify.WithLogger(logger))

	svc, err := service.New(users, fanOut, service.WithLogger(logger))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ContentTypeJSON)
	New(svc, logger).Register(r)

	return &testEnv{router: r, store: users, logs: logs}
}

func (e *testEnv) count(t *testing.T) int {
	t.Helper()
	n, err := e.store.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (e *testEnv) create(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(e.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/users/", body))
}

func TestCreateUser(t *testing.T) {
	testutil.Given(t, "an empty store and an unreachable notification service", func(t *testing.T) {
		env := newTestEnv(t, "")

		testutil.When(t, "a valid user is posted", func(t *testing.T) {
			rr := env.create(t, map[string]string{"name": "Test", "email": "test@example.com", "phone": "1234"})

			testutil.Then(t, "it is created despite the failed webhook", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				resp := testutil.UnmarshalResponse[userResponse](t, rr)
				assert.NotZero(t, resp.ID)
				assert.Equal(t, "Test", resp.Name)
				assert.Equal(t, "test@example.com", resp.Email)
				require.NotNil(t, resp.Phone)
				assert.Equal(t, "1234", *resp.Phone)
				assert.False(t, resp.CreatedAt.IsZero())

				assert.Equal(t, 1, env.count(t))
				assert.Contains(t, env.logs.String(), "level=WARN")
				assert.Contains(t, env.logs.String(), "notification service call failed")
			})
		})

		testutil.When(t, "the same email is posted again", func(t *testing.T) {
			rr := env.create(t, map[string]string{"name": "Other", "email": "test@example.com"})

			testutil.Then(t, "it is rejected on the email field", func(t *testing.T) {
				fields := testutil.AssertFieldErrors(t, rr, "email")
				assert.Equal(t, []string{models.ErrDuplicateEmail.Error()}, fields["email"])
				assert.Equal(t, 1, env.count(t))
			})
		})

		testutil.When(t, "the email differs only by case", func(t *testing.T) {
			rr := env.create(t, map[string]string{"name": "Case", "email": "Test@example.com"})

			testutil.Then(t, "it is accepted as a different user", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				assert.Equal(t, 2, env.count(t))
			})
		})
	})
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		fields []string
	}{
		{"non-digit phone", map[string]any{"name": "A", "email": "a@example.com", "phone": "12-34"}, []string{"phone"}},
		{"missing name", map[string]any{"email": "a@example.com"}, []string{"name"}},
		{"missing email", map[string]any{"name": "A"}, []string{"email"}},
		{"malformed email", map[string]any{"name": "A", "email": "a@"}, []string{"email"}},
		{"overlong name", map[string]any{"name": strings.Repeat("x", models.MaxNameLength+1), "email": "a@example.com"}, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			rr := env.create(t, tt.body)

			testutil.AssertFieldErrors(t, rr, tt.fields...)
			assert.Equal(t, 0, env.count(t))
		})
	}
}

func TestCreateUserMalformedBody(t *testing.T) {
	env := newTestEnv(t, "")

	t.Run("invalid json", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, testutil.NewRequestWithBody(t, http.MethodPost, "/api/users/", "{not json"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("top-level array", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, testutil.NewRequestWithBody(t, http.MethodPost, "/api/users/", `[]`))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("non-json content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/", strings.NewReader("name=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusUnsupportedMediaType)
	})

	assert.Equal(t, 0, env.count(t))
}

func TestCreateUserWronglyTypedField(t *testing.T) {
	env := newTestEnv(t, "")
	rr := testutil.DoRequest(env.router, testutil.NewRequestWithBody(t, http.MethodPost, "/api/users/",
		`{"name": "Num", "email": "num@example.com", "phone": 1234}`))

	fields := testutil.AssertFieldErrors(t, rr, "phone")
	assert.Equal(t, []string{"not a valid string"}, fields["phone"])
	assert.Equal(t, 0, env.count(t))
}

type panickingMailer struct{}

func (panickingMailer) Send(context.Context, notify.Message) error {
	panic("mailer exploded")
}

func TestCreateUserSurvivesPanickingMailer(t *testing.T) {
	env := newTestEnvWithMailer(t, "", panickingMailer{})
	rr := env.create(t, map[string]string{"name": "Test", "email": "test@example.com"})

	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "email", "test@example.com")
	assert.Equal(t, 1, env.count(t))
	assert.Contains(t, env.logs.String(), "admin email failed")
	assert.NotContains(t, env.logs.String(), "panic recovered")
}

func TestCreateUserAbsentPhoneIsNull(t *testing.T) {
	env := newTestEnv(t, "")
	rr := env.create(t, map[string]string{"name": "Ana", "email": "ana@example.com"})

	testutil.AssertStatus(t, rr, http.StatusCreated)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["phone"]))
}

func TestCreateUserCallsWebhook(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if r.URL.Path == "/notify" && json.NewDecoder(r.Body).Decode(&payload) == nil {
			received <- payload
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)
	rr := env.create(t, map[string]string{"name": "Test", "email": "test@example.com", "phone": "1234"})

	testutil.AssertStatus(t, rr, http.StatusCreated)
	var payload map[string]any
	select {
	case payload = <-received:
	default:
		t.Fatal("webhook was not called before the response")
	}
	assert.Equal(t, "Test", payload["name"])
	assert.Equal(t, "test@example.com", payload["email"])
	assert.Equal(t, "1234", payload["phone"])
	assert.NotEmpty(t, payload["createdAt"])
	assert.NotContains(t, env.logs.String(), "notification service call failed")
}

func TestListUsers(t *testing.T) {
	testutil.Given(t, "an empty store", func(t *testing.T) {
		env := newTestEnv(t, "")

		testutil.When(t, "users are listed", func(t *testing.T) {
			rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/api/users/"))

			testutil.Then(t, "an empty array is returned", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.JSONEq(t, "[]", rr.Body.String())
			})
		})

		testutil.When(t, "several users are created", func(t *testing.T) {
			const n = 4
			for i := range n {
				rr := env.create(t, map[string]string{
					"name":  fmt.Sprintf("User %d", i),
					"email": fmt.Sprintf("user%d@example.com", i),
				})
				testutil.AssertStatus(t, rr, http.StatusCreated)
			}

			testutil.Then(t, "all are listed newest first on both routes", func(t *testing.T) {
				for _, path := range []string{"/api/users/", "/api/users"} {
					rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, path))
					testutil.AssertStatusOK(t, rr)

					users := *testutil.UnmarshalResponse[[]userResponse](t, rr)
					require.Len(t, users, n)
					assert.Equal(t, "user3@example.com", users[0].Email)
					assert.Equal(t, "user0@example.com", users[n-1].Email)
					for i := 1; i < len(users); i++ {
						assert.True(t, users[i-1].CreatedAt.After(users[i].CreatedAt))
					}
				}
			})
		})
	})
}

func TestRoutesWithoutTrailingSlash(t *testing.T) {
	env := newTestEnv(t, "")
	rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/users",
		map[string]string{"name": "Slash", "email": "slash@example.com"}))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.Equal(t, 1, env.count(t))
}
