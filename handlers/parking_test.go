package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parkngo/services"
	"parkngo/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceipts struct{}

func (fakeReceipts) Generate(slot int, carNumber string, checkIn, checkOut time.Time, cost float64) (string, error) {
	return "receipts/test.pdf", nil
}

func newTestRouter(t *testing.T, capacity int) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	registry := services.NewSlotRegistry(capacity, mem)
	require.NoError(t, registry.Reconcile(context.Background()))
	svc := services.NewParkingService(registry, services.NewRevenueLedger(mem), fakeReceipts{}, mem)
	handler := NewParkingHandler(svc, t.TempDir())

	r := gin.New()
	r.POST("/park", handler.Park)
	r.POST("/checkout", handler.Checkout)
	r.GET("/slots", handler.Slots)
	return r, mem
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestParkAssignsSlot(t *testing.T) {
	r, _ := newTestRouter(t, 3)

	w, resp := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": "KA-01-A-1111"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 1, data["slot"])
}

func TestParkRejectsMissingCarNumber(t *testing.T) {
	r, _ := newTestRouter(t, 3)

	w, resp := doJSON(t, r, http.MethodPost, "/park", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_INPUT", resp.Code)
}

func TestParkWhenFull(t *testing.T) {
	r, _ := newTestRouter(t, 2)

	for i := 1; i <= 2; i++ {
		w, _ := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": fmt.Sprintf("CAR-%d", i)})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": "CAR-3"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_NO_SLOTS_AVAILABLE", resp.Code)
}

func TestParkSameCarTwice(t *testing.T) {
	r, _ := newTestRouter(t, 3)

	w, _ := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": "KA-01-A-1111"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": "KA-01-A-1111"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_ALREADY_PARKED", resp.Code)
}

func TestCheckoutFlow(t *testing.T) {
	r, _ := newTestRouter(t, 3)

	w, _ := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": "KA-01-A-1111"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, r, http.MethodPost, "/checkout", gin.H{"car_number": "KA-01-A-1111"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 1, data["slot"])
	assert.InDelta(t, 50, data["cost"].(float64), 1e-9) // 剛進就走，起跳價

	// 結帳後車位回到空位
	w, resp = doJSON(t, r, http.MethodGet, "/slots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := resp.Data.([]interface{})
	first := board[0].(map[string]interface{})
	assert.Equal(t, false, first["occupied"])

	// 重複結帳回覆前次結果
	w, resp = doJSON(t, r, http.MethodPost, "/checkout", gin.H{"car_number": "KA-01-A-1111"})
	assert.Equal(t, http.StatusOK, w.Code)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["duplicate"])
}

func TestCheckoutUnknownCar(t *testing.T) {
	r, _ := newTestRouter(t, 3)

	w, resp := doJSON(t, r, http.MethodPost, "/checkout", gin.H{"car_number": "NOPE-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_VEHICLE_NOT_FOUND", resp.Code)
}

func TestParkWhenStoreDown(t *testing.T) {
	r, mem := newTestRouter(t, 3)
	mem.Err = store.ErrUnavailable

	w, resp := doJSON(t, r, http.MethodPost, "/park", gin.H{"car_number": "KA-01-A-1111"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "ERR_PERSISTENCE_UNAVAILABLE", resp.Code)
}
