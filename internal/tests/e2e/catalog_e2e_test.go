// Package e2e runs the catalog and user HTTP applications against a PostgreSQL container.
// Each test starts from an empty products table.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/belos/catalog/internal/catalog/app"
	"github.com/belos/catalog/internal/catalog/config"
	"github.com/belos/catalog/internal/catalog/service"
	"github.com/belos/catalog/internal/catalog/store"
	usersapp "github.com/belos/catalog/internal/users/app"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "CATALOG_SKIP_E2E_TESTS"

const productsURL = "/api/products"

type CatalogE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	server      *httptest.Server
	usersServer *httptest.Server
	httpClient  *http.Client
	logger      *slog.Logger
	ctx         context.Context
}

// testConfig returns the settings the HTTP handler and the store read.
func testConfig() *config.Config {
	var cfg config.Config
	cfg.HTTPServer.MaxHeaderBytes = 1 << 20
	cfg.HTTPServer.MaxBodyBytes = 1 << 20
	cfg.HTTPServer.Timeout.Read = 10 * time.Minute
	cfg.HTTPServer.Timeout.Write = 10 * time.Minute
	cfg.HTTPServer.Timeout.Idle = 60 * time.Minute
	cfg.HTTPServer.Timeout.ReadHeader = 5 * time.Minute
	cfg.Database.QueryTimeout = 5 * time.Second
	cfg.CircuitBreaker.ConsecutiveFailures = 5
	cfg.CircuitBreaker.MaxRequests = 1
	cfg.CircuitBreaker.OpenTimeout = 10 * time.Second
	return &cfg
}

func (s *CatalogE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")

	for i := range 10 {
		s.logger.Info("Pinging E2E PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	require.NoError(s.T(), store.Migrate(connStr), "Failed to apply migrations")

	cfg := testConfig()
	deps := app.SetupDependencies(app.NewProductStore(s.dbPool, cfg, s.logger), nil, s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps, cfg))
	s.usersServer = httptest.NewServer(usersapp.SetupHttpHandler(s.logger, cfg.HTTPServer.MaxBodyBytes))
	s.httpClient = s.server.Client()
}

func (s *CatalogE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.usersServer != nil {
		s.usersServer.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

func (s *CatalogE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestCatalogE2ESuite(t *testing.T) {
	if os.Getenv(skipE2ETests) != "" {
		t.Skip("Skipping E2E tests")
	}
	suite.Run(t, new(CatalogE2ESuite))
}

func (s *CatalogE2ESuite) do(method, url string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		switch v := body.(type) {
		case string:
			reader = bytes.NewBufferString(v)
		default:
			b, err := json.Marshal(v)
			s.Require().NoError(err)
			reader = bytes.NewBuffer(b)
		}
	}
	req, err := http.NewRequestWithContext(s.ctx, method, url, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	respBody, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, respBody
}

func (s *CatalogE2ESuite) TestWelcome() {
	status, body := s.do(http.MethodGet, s.server.URL+"/", nil)
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"message":"Welcome to this application","age":21}`, string(body))
}

func (s *CatalogE2ESuite) TestCreateThenList() {
	status, body := s.do(http.MethodGet, s.server.URL+productsURL, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`[]`, string(body))

	status, body = s.do(http.MethodPost, s.server.URL+productsURL,
		`{"name":"Monitor","description":"27 inch","price":299.99,"quantity":10}`)
	s.Require().Equal(http.StatusOK, status, string(body))

	var created service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &created))
	s.Require().NotNil(created.ID)
	s.Equal(int64(1), *created.ID)
	s.Equal("Monitor", created.Name)
	s.Equal(299.99, created.Price)

	status, body = s.do(http.MethodPost, s.server.URL+productsURL,
		`{"name":"Keyboard","description":"","price":0,"quantity":0}`)
	s.Require().Equal(http.StatusOK, status, string(body))

	status, body = s.do(http.MethodGet, s.server.URL+productsURL, nil)
	s.Require().Equal(http.StatusOK, status)
	var products []service.ProductDto
	s.Require().NoError(json.Unmarshal(body, &products))
	s.Require().Len(products, 2)
	s.Equal("Monitor", products[0].Name)
	s.Equal("Keyboard", products[1].Name)
	s.Equal(int64(2), *products[1].ID)
}

func (s *CatalogE2ESuite) TestCreateRejected() {
	testCases := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{name: "negative price", body: `{"name":"A","description":"d","price":-1,"quantity":1}`, status: http.StatusBadRequest, field: "price"},
		{name: "negative quantity", body: `{"name":"A","description":"d","price":1,"quantity":-1}`, status: http.StatusBadRequest, field: "quantity"},
		{name: "missing name", body: `{"description":"d","price":1,"quantity":1}`, status: http.StatusBadRequest, field: "name"},
		{name: "malformed json", body: `{"name":`, status: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			status, body := s.do(http.MethodPost, s.server.URL+productsURL, tc.body)
			s.Equal(tc.status, status, string(body))
			if tc.field != "" {
				s.Contains(string(body), `"`+tc.field+`"`)
			}
		})
	}

	status, body := s.do(http.MethodGet, s.server.URL+productsURL, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`[]`, string(body))
}

func (s *CatalogE2ESuite) TestUsers() {
	status, body := s.do(http.MethodGet, s.usersServer.URL+"/usuarios/2", nil)
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"id":2,"name":"Bob","email":"bob@example.com"}`, string(body))

	status, body = s.do(http.MethodGet, s.usersServer.URL+"/usuarios/7", nil)
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"id":7,"name":"Usuario Desconocido","email":"desconocido@example.com"}`, string(body))
}
