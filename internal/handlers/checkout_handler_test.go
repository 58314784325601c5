package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/services"
)

func setupCheckoutRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(raw, "sqlmock")}
	logger := testLogger()

	tourRepo := database.NewTourRepository(db)
	holdRepo := database.NewHoldRepository(db)
	capacity := services.NewCapacityService(
		database.NewAvailabilityRepository(db),
		database.NewBookingRepository(db),
		holdRepo,
	)
	holds := services.NewHoldService(db, holdRepo, capacity, logger, 15*time.Minute)
	checkout := services.NewCheckoutService(tourRepo, services.NewPricingService(), holds)
	handler := NewCheckoutHandler(checkout, holds, logger)

	router := gin.New()
	router.POST("/checkout/quote", handler.Quote)
	router.POST("/holds/:id", handler.HoldAction)
	return router, mock
}

var tourColumns = []string{
	"id", "agent_id", "title", "description", "base_price", "currency",
	"duration_days", "max_group_size", "free_cancellation_days", "status",
	"images", "tour_types", "created_at", "updated_at",
}

var availabilityColumns = []string{
	"id", "tour_id", "date", "type", "spots_available", "note",
	"created_at", "updated_at",
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestQuoteEndpoint_Success(t *testing.T) {
	router, mock := setupCheckoutRouter(t)

	tourID := uuid.New()
	now := time.Now()
	start := now.AddDate(0, 0, 10).Format("2006-01-02")

	// One-day tour at $400 a head, platform default pricing
	mock.ExpectQuery(`SELECT (.+) FROM tours`).
		WithArgs(tourID).
		WillReturnRows(sqlmock.NewRows(tourColumns).AddRow(
			tourID, uuid.New(), "Knuckles Day Hike", nil, 400.0, "USD",
			1, 8, 14, "active",
			[]byte(`{}`), []byte(`{}`), now, now,
		))
	mock.ExpectQuery(`SELECT (.+) FROM tour_pricing_configs`).
		WithArgs(tourID).
		WillReturnError(sql.ErrNoRows)

	// Hold placement: lock the day, count occupancy, insert
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM tour_availability`).
		WillReturnRows(sqlmock.NewRows(availabilityColumns))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(adults \+ children \+ infants\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(spots\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO holds`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"tour_id":"` + tourID.String() + `","start_date":"` + start + `","adults":2}`
	w := postJSON(router, "/checkout/quote", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	breakdown := resp["price_breakdown"].(map[string]interface{})
	assert.Equal(t, 800.0, breakdown["base_amount"])
	// 5% platform service fee on the discounted subtotal
	assert.Equal(t, 40.0, breakdown["tax_amount"])
	assert.Equal(t, 840.0, breakdown["total_amount"])
	// Deposits are disabled by default: full amount due now
	assert.Equal(t, 840.0, resp["deposit_due"])
	assert.NotEmpty(t, resp["hold_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteEndpoint_ValidationError(t *testing.T) {
	router, mock := setupCheckoutRouter(t)

	// adults is required
	w := postJSON(router, "/checkout/quote", `{"tour_id":"`+uuid.NewString()+`","start_date":"2026-07-15"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteEndpoint_PastStartDate(t *testing.T) {
	router, mock := setupCheckoutRouter(t)

	w := postJSON(router, "/checkout/quote", `{"tour_id":"`+uuid.NewString()+`","start_date":"2020-01-01","adults":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldAction_InvalidAction(t *testing.T) {
	router, mock := setupCheckoutRouter(t)

	w := postJSON(router, "/holds/"+uuid.NewString(), `{"action":"freeze"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldAction_InvalidHoldID(t *testing.T) {
	router, mock := setupCheckoutRouter(t)

	w := postJSON(router, "/holds/not-a-uuid", `{"action":"release"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldAction_UnknownHold(t *testing.T) {
	router, mock := setupCheckoutRouter(t)

	holdID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM holds`).
		WithArgs(holdID).
		WillReturnError(sql.ErrNoRows)

	w := postJSON(router, "/holds/"+holdID.String(), `{"action":"extend"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
