package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/handlers"
	"github.com/encontrar/shopping-api/internal/hash"
	"github.com/encontrar/shopping-api/internal/models"
	"github.com/encontrar/shopping-api/internal/mykafka"
	"github.com/encontrar/shopping-api/internal/service"
	"github.com/encontrar/shopping-api/internal/session"
	httpserver "github.com/encontrar/shopping-api/internal/transport/http"
)

type captureMailer struct {
	to, code string
}

func (m *captureMailer) SendVerificationCode(to, code string) error {
	m.to, m.code = to, code
	return nil
}

type captureWriter struct {
	messages []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

// lastEvent decodes the most recent message published to a topic.
func (w *captureWriter) lastEvent(t *testing.T, topic string) (string, map[string]any) {
	t.Helper()
	for i := len(w.messages) - 1; i >= 0; i-- {
		if w.messages[i].Topic != topic {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal(w.messages[i].Value, &event))
		return string(w.messages[i].Key), event
	}
	t.Fatalf("no message on topic %s", topic)
	return "", nil
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.Manager
	Mail     *captureMailer
	Events   *captureWriter
	ESQuery  *[]byte
}

const esStubResponse = `{
	"hits": {
		"total": {"value": 1},
		"hits": [{"_source": {"id": 1, "name": "Visible Lamp", "price": 30, "visible": true}}]
	}
}`

// newStubES serves canned search hits and records the last query body.
func newStubES(t *testing.T) (*elasticsearch.Client, *[]byte) {
	t.Helper()
	captured := new([]byte)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			if len(body) > 0 {
				*captured = body
			}
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(esStubResponse))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, captured
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.VerificationCode{}, &models.Session{},
		&models.Shop{}, &models.Product{}, &models.ProductAttribute{},
		&models.Category{}, &models.Promotion{}, &models.ShopkeeperSale{},
	))

	sessions := session.NewManager(session.NewGormStore(db), db, time.Hour)
	mail := &captureMailer{}
	events := &captureWriter{}
	producer := mykafka.NewProducerWithWriter(events)
	esClient, esQuery := newStubES(t)

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		DB:       db,
		Sessions: sessions,
		AuthHandler: &handlers.AuthHandler{
			Auth:     &service.AuthService{DB: db, Mailer: mail},
			Sessions: sessions,
			Producer: producer,
		},
		ProductHandler:   &handlers.ProductHandler{Catalog: &service.CatalogService{DB: db}, Producer: producer},
		PromotionHandler: &handlers.PromotionHandler{Promotions: &service.PromotionService{DB: db}},
		SalesHandler:     &handlers.SalesHandler{Sales: &service.SalesService{DB: db}, Producer: producer},
		DashboardHandler: &handlers.DashboardHandler{Dashboard: &service.DashboardService{DB: db}},
		SearchHandler:    handlers.NewSearchHandler(esClient, "product"),
	})

	return &testEnv{T: t, E: e, DB: db, Sessions: sessions, Mail: mail, Events: events, ESQuery: esQuery}
}

func (env *testEnv) doJSON(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// loginAs seeds a verified user with the given role and logs in through the
// real endpoint, returning the session cookie.
func (env *testEnv) loginAs(t *testing.T, role string) *http.Cookie {
	t.Helper()
	pw, err := hash.HashPassword("test_password")
	require.NoError(t, err)
	user := models.User{
		Email:        role + "@example.com",
		PasswordHash: pw,
		FirstName:    "Test",
		Role:         role,
		Verified:     true,
	}
	require.NoError(t, env.DB.Create(&user).Error)

	rec := env.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"email":    user.Email,
		"password": "test_password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return sessionCookie(t, rec)
}
