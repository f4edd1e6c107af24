package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/coronavstech/companies/internal/company/cache"
	"github.com/coronavstech/companies/internal/company/controller"
	"github.com/coronavstech/companies/internal/company/db"
	"github.com/coronavstech/companies/internal/company/events"
	"github.com/coronavstech/companies/internal/company/handlers"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const integrationEnv = "COMPANIES_INTEGRATION"

type IntegrationTestSuite struct {
	suite.Suite
	dbRepo      *db.Repository
	producer    *events.Producer
	redis       *miniredis.Miniredis
	server      *httptest.Server
	brokers     []string
	topic       string
	testTimeout time.Duration

	mu       sync.Mutex
	received []events.Event
	cancel   context.CancelFunc
	consumer *events.Consumer
}

// TestIntegrationSuite needs Postgres on localhost:5432 and Kafka on
// localhost:9092.
func TestIntegrationSuite(t *testing.T) {
	if testing.Short() || os.Getenv(integrationEnv) == "" {
		t.Skipf("Skipping integration tests, set %s=1 to run them", integrationEnv)
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	logger := zap.NewNop()
	s.testTimeout = 30 * time.Second
	s.brokers = []string{"localhost:9092"}
	s.topic = "companies-it-" + uuid.NewString()[:8]

	var err error
	s.dbRepo, err = initializeDBWithRetry()
	s.Require().NoError(err, "Database initialization failed")

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()
	err = backoff.Retry(func() error {
		return events.EnsureTopic(ctx, s.brokers, s.topic, 1)
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx))
	s.Require().NoError(err, "Kafka topic creation failed")
	s.producer = events.NewProducer(s.brokers, s.topic, logger)

	s.redis = miniredis.NewMiniRedis()
	s.Require().NoError(s.redis.Start())
	listCache := cache.NewListCache(redis.NewClient(&redis.Options{Addr: s.redis.Addr()}), time.Minute)

	svc := controller.NewCompanyService(s.dbRepo, s.producer, listCache, logger)
	router := handlers.NewRouter(handlers.NewHTTPHandler(svc, s.dbRepo, logger), handlers.RouterOptions{})
	s.server = httptest.NewServer(router)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	s.cancel = consumerCancel
	s.consumer = events.NewConsumer(s.brokers, "it-"+uuid.NewString(), s.topic, logger)
	s.consumer.RegisterHandler(func(_ context.Context, event events.Event) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.received = append(s.received, event)
		return nil
	})
	s.consumer.Start(consumerCtx)
}

func initializeDBWithRetry() (*db.Repository, error) {
	cfg := &db.Config{
		Driver:   db.DriverPostgres,
		Host:     "localhost",
		Port:     5432,
		User:     "test",
		Password: "test",
		DBName:   "test",
		SSLMode:  "disable",
	}

	var repo *db.Repository
	err := backoff.Retry(func() error {
		var err error
		repo, err = db.NewRepository(cfg)
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10))
	return repo, err
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.consumer != nil {
		s.consumer.Close()
	}
	if s.producer != nil {
		s.producer.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if s.dbRepo != nil {
		_ = s.dbRepo.Close()
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	s.Require().NoError(s.dbRepo.Exec(ctx, "TRUNCATE TABLE companies CASCADE"), "Failed to clean database")
	s.redis.FlushAll()
}

func (s *IntegrationTestSuite) do(method, path string, body interface{}) (int, []byte) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, buf.Bytes()
}

func (s *IntegrationTestSuite) createCompany(body map[string]interface{}) map[string]interface{} {
	code, raw := s.do(http.MethodPost, "/companies/", body)
	s.Require().Equal(http.StatusCreated, code, string(raw))

	var created map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &created))
	return created
}

func (s *IntegrationTestSuite) TestCompanyCreate() {
	created := s.createCompany(map[string]interface{}{"name": "Pfizer"})

	assert.Equal(s.T(), "Pfizer", created["name"])
	assert.Equal(s.T(), "Hiring", created["status"])
	s.verifyKafkaEvent(events.CompanyCreated, created["id"].(string))

	code, raw := s.do(http.MethodPost, "/companies/", map[string]interface{}{"name": "Pfizer"})
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.JSONEq(s.T(), `{"name":["company with this name already exists."]}`, string(raw))
}

func (s *IntegrationTestSuite) TestCompanyUpdate() {
	created := s.createCompany(map[string]interface{}{"name": "Moderna", "status": "Hiring Freeze"})
	id := created["id"].(string)

	code, raw := s.do(http.MethodPatch, "/companies/"+id+"/", map[string]interface{}{"status": "Layoffs"})
	s.Require().Equal(http.StatusOK, code, string(raw))

	var updated map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &updated))
	assert.Equal(s.T(), "Moderna", updated["name"])
	assert.Equal(s.T(), "Layoffs", updated["status"])
	s.verifyKafkaEvent(events.CompanyUpdated, id)
}

func (s *IntegrationTestSuite) TestCompanyDelete() {
	created := s.createCompany(map[string]interface{}{"name": "Novavax"})
	id := created["id"].(string)

	code, _ := s.do(http.MethodDelete, "/companies/"+id, nil)
	assert.Equal(s.T(), http.StatusNoContent, code)
	code, _ = s.do(http.MethodDelete, "/companies/"+id, nil)
	assert.Equal(s.T(), http.StatusNotFound, code)

	s.verifyKafkaEvent(events.CompanyDeleted, id)
}

func (s *IntegrationTestSuite) TestListIsCachedAndInvalidated() {
	s.createCompany(map[string]interface{}{"name": "Bayer"})

	code, raw := s.do(http.MethodGet, "/companies/", nil)
	s.Require().Equal(http.StatusOK, code)
	assert.True(s.T(), s.redis.Exists(cache.ListKey), "list should be cached after a read")
	assert.Contains(s.T(), string(raw), "Bayer")

	s.createCompany(map[string]interface{}{"name": "Astra"})
	assert.False(s.T(), s.redis.Exists(cache.ListKey), "write should invalidate the cached list")

	code, raw = s.do(http.MethodGet, "/companies/", nil)
	s.Require().Equal(http.StatusOK, code)

	var list []map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &list))
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c["name"].(string))
	}
	assert.Equal(s.T(), []string{"Astra", "Bayer"}, names)
}

func (s *IntegrationTestSuite) verifyKafkaEvent(eventType events.EventType, companyID string) {
	ok := assert.Eventually(s.T(), func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, event := range s.received {
			if event.Type == eventType && event.Company != nil &&
				strings.EqualFold(event.Company.ID.String(), companyID) {
				return true
			}
		}
		return false
	}, 60*time.Second, 500*time.Millisecond, "no %s event for %s", eventType, companyID)
	require.True(s.T(), ok)
}
