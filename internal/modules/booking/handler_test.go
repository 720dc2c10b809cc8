package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studiospace/internal/database"
	"studiospace/internal/middleware"
	"studiospace/internal/pkg/jwt"
	"studiospace/internal/repository"
)

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type testEnv struct {
	router *gin.Engine
	jwt    *jwt.Service
}

func setupTestRouter(t *testing.T, clock Clock) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:booking_handler_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	jwtService := jwt.New("handler-test-secret", time.Hour)
	svc := NewService(repository.NewReservationRepository(db), clock, nil, nil, time.Second)

	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtService))
	NewHandler(svc).RegisterRoutes(protected)

	return &testEnv{router: r, jwt: jwtService}
}

func newRouterWithService(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(1))
		c.Set(middleware.ContextRole, "member")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func (e *testEnv) token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken(userID, role)
	require.NoError(t, err)
	return tok
}

func doRequest(r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, testResponse) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var resp testResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	return rr, resp
}

func bookingBody(start, end time.Time) map[string]any {
	return map[string]any{
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
}

func decodeBooking(t *testing.T, resp testResponse) BookingResponse {
	t.Helper()
	var data struct {
		Booking BookingResponse `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.Booking
}

func decodeBookings(t *testing.T, resp testResponse) []BookingResponse {
	t.Helper()
	var data struct {
		Bookings []BookingResponse `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.Bookings
}

func TestBookingEndpoints_Unauthorized(t *testing.T) {
	env := setupTestRouter(t, nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings?date=2024-06-01"},
		{http.MethodGet, "/api/v1/users/me/bookings/upcoming"},
		{http.MethodDelete, "/api/v1/bookings/" + uuid.NewString()},
	}
	for _, tc := range cases {
		rr, _ := doRequest(env.router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCreateBooking_FullFlow(t *testing.T) {
	env := setupTestRouter(t, fixedClock(at(1, 0, 0)))
	alice := env.token(t, 1, "member")
	bob := env.token(t, 2, "member")

	rr, resp := doRequest(env.router, http.MethodPost, "/api/v1/bookings", alice, bookingBody(at(1, 9, 0), at(1, 10, 0)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decodeBooking(t, resp)
	assert.Equal(t, int64(1), first.OwnerID)
	assert.NotEqual(t, uuid.Nil, first.ID)

	// back-to-back is fine
	rr, _ = doRequest(env.router, http.MethodPost, "/api/v1/bookings", bob, bookingBody(at(1, 10, 0), at(1, 11, 0)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// a single minute of overlap is not
	rr, resp = doRequest(env.router, http.MethodPost, "/api/v1/bookings", bob, bookingBody(at(1, 9, 59), at(1, 10, 30)))
	assert.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SLOT_UNAVAILABLE", resp.Error.Code)

	rr, resp = doRequest(env.router, http.MethodPost, "/api/v1/bookings", bob, bookingBody(at(1, 12, 0), at(1, 12, 0)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INTERVAL", resp.Error.Code)

	rr, resp = doRequest(env.router, http.MethodGet, "/api/v1/bookings?date=2024-06-01", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	day := decodeBookings(t, resp)
	require.Len(t, day, 2)
	assert.Equal(t, first.ID, day[0].ID)
	assert.True(t, day[0].StartTime.Before(day[1].StartTime))

	rr, resp = doRequest(env.router, http.MethodGet, "/api/v1/bookings/"+first.ID.String(), bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first.ID, decodeBooking(t, resp).ID)

	rr, resp = doRequest(env.router, http.MethodGet, "/api/v1/users/me/bookings/upcoming", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBookings(t, resp), 1)

	// bob cannot cancel alice's booking
	rr, resp = doRequest(env.router, http.MethodDelete, "/api/v1/bookings/"+first.ID.String(), bob, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	rr, _ = doRequest(env.router, http.MethodDelete, "/api/v1/bookings/"+first.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr, resp = doRequest(env.router, http.MethodDelete, "/api/v1/bookings/"+first.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	// freed slot can be booked again
	rr, _ = doRequest(env.router, http.MethodPost, "/api/v1/bookings", bob, bookingBody(at(1, 9, 0), at(1, 10, 0)))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCancelBooking_AdminCanCancelAnyBooking(t *testing.T) {
	env := setupTestRouter(t, nil)
	member := env.token(t, 1, "member")
	admin := env.token(t, 50, "admin")

	rr, resp := doRequest(env.router, http.MethodPost, "/api/v1/bookings", member, bookingBody(at(1, 9, 0), at(1, 10, 0)))
	require.Equal(t, http.StatusCreated, rr.Code)
	b := decodeBooking(t, resp)

	rr, _ = doRequest(env.router, http.MethodDelete, "/api/v1/bookings/"+b.ID.String(), admin, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCreateBooking_BadRequest(t *testing.T) {
	env := setupTestRouter(t, nil)
	tok := env.token(t, 1, "member")

	rr, resp := doRequest(env.router, http.MethodPost, "/api/v1/bookings", tok, map[string]any{"start_time": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestListBookingsForDay_BadDate(t *testing.T) {
	env := setupTestRouter(t, nil)
	tok := env.token(t, 1, "member")

	for _, path := range []string{"/api/v1/bookings", "/api/v1/bookings?date=01-06-2024"} {
		rr, resp := doRequest(env.router, http.MethodGet, path, tok, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	}
}

func TestGetBooking_InvalidID(t *testing.T) {
	env := setupTestRouter(t, nil)
	tok := env.token(t, 1, "member")

	rr, resp := doRequest(env.router, http.MethodGet, "/api/v1/bookings/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
}

func TestStoreUnavailable_ReadIsRetryableWriteIsNot(t *testing.T) {
	store := new(MockReservationStore)
	store.On("Find", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)
	r := newRouterWithService(NewService(store, nil, nil, nil, 0))

	rr, resp := doRequest(r, http.MethodGet, "/api/v1/bookings?date=2024-06-01", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Error.Code)

	rr, resp = doRequest(r, http.MethodPost, "/api/v1/bookings", "", bookingBody(at(1, 9, 0), at(1, 10, 0)))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, rr.Header().Get("Retry-After"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Error.Code)
}

func TestListUserUpcomingBookings_AdminOnly(t *testing.T) {
	env := setupTestRouter(t, fixedClock(at(1, 0, 0)))
	member := env.token(t, 1, "member")
	admin := env.token(t, 50, "admin")

	rr, _ := doRequest(env.router, http.MethodPost, "/api/v1/bookings", member, bookingBody(at(1, 9, 0), at(1, 10, 0)))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, _ = doRequest(env.router, http.MethodGet, "/api/v1/admin/users/1/bookings/upcoming", member, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, resp := doRequest(env.router, http.MethodGet, "/api/v1/admin/users/1/bookings/upcoming", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBookings(t, resp), 1)

	rr, _ = doRequest(env.router, http.MethodGet, "/api/v1/admin/users/abc/bookings/upcoming", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
