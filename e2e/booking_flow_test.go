package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// issueToken はテスト用のBearerトークンを発行する
// 本番ではIDプロバイダが発行するが、E2Eでは同じ秘密鍵で自前署名する
func issueToken(t *testing.T, userID, name, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"name":  name,
		"email": userID + "@example.com",
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return token
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

// TestE2E_CompleteBookingJourney は座席登録から予約・キャンセルまでの一連の流れをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := getTestServer(t)

	adminToken := issueToken(t, "admin-suzuki", "鈴木管理者", "admin")
	userToken := issueToken(t, "user-yamada", "山田太郎", "employee")
	date := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	var seatID, bookingID string

	// 1. 管理者が座席を登録
	t.Run("座席登録", func(t *testing.T) {
		body := map[string]interface{}{
			"name":        "A-01",
			"type":        "solo",
			"has_monitor": true,
			"position_x":  1,
			"position_y":  1,
		}

		rec := server.Request("POST", "/api/admin/seats", body, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		seatID = resp["id"].(string)
		assert.NotEmpty(t, seatID)
	})

	// 2. 空き確認
	t.Run("空き確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/availability?seat_id=%s&date=%s&slot=AM", seatID, date)
		rec := server.Request("GET", path, nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, true, resp["bookable"])
	})

	// 3. 予約作成
	t.Run("予約作成", func(t *testing.T) {
		body := map[string]interface{}{
			"seat_id": seatID,
			"date":    date,
			"slot":    "AM",
		}

		rec := server.Request("POST", "/api/bookings", body, userToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		bookingID = resp["id"].(string)
		assert.Equal(t, "user-yamada", resp["user_id"])
		assert.Equal(t, "山田太郎", resp["user_name"])
		assert.Equal(t, date, resp["date"])
	})

	// 4. 出社数が増えていることを確認
	t.Run("出社数確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/dates/%s/occupancy", date)
		rec := server.Request("GET", path, nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(1), resp["count"])
	})

	// 5. 自分の予約一覧に表示される
	t.Run("自分の予約一覧", func(t *testing.T) {
		rec := server.Request("GET", "/api/bookings/mine", nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, bookingID, resp[0]["id"])
	})

	// 6. キャンセル
	t.Run("キャンセル", func(t *testing.T) {
		path := fmt.Sprintf("/api/bookings/%s", bookingID)
		rec := server.Request("DELETE", path, nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NotNil(t, resp["cancelled_at"])
	})

	// 7. 出社数が戻っていることを確認
	t.Run("キャンセル後の出社数", func(t *testing.T) {
		path := fmt.Sprintf("/api/dates/%s/occupancy", date)
		rec := server.Request("GET", path, nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(0), resp["count"])
	})
}

// TestE2E_BookingConflict は同一枠の予約競合をテスト
func TestE2E_BookingConflict(t *testing.T) {
	server := getTestServer(t)

	adminToken := issueToken(t, "admin-suzuki", "鈴木管理者", "admin")
	tokenA := issueToken(t, "user-A", "社員A", "employee")
	tokenB := issueToken(t, "user-B", "社員B", "employee")
	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

	rec := server.Request("POST", "/api/admin/seats", map[string]interface{}{
		"name": "B-01", "type": "solo",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var seatResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &seatResp)
	seatID := seatResp["id"].(string)

	body := map[string]interface{}{"seat_id": seatID, "date": date, "slot": "PM"}

	t.Run("ユーザーAが予約成功", func(t *testing.T) {
		rec := server.Request("POST", "/api/bookings", body, tokenA)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("ユーザーBが同じ枠を予約しようとして409", func(t *testing.T) {
		rec := server.Request("POST", "/api/bookings", body, tokenB)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("反対の枠は予約できる", func(t *testing.T) {
		amBody := map[string]interface{}{"seat_id": seatID, "date": date, "slot": "AM"}
		rec := server.Request("POST", "/api/bookings", amBody, tokenB)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

// TestE2E_CancelAndRebook はキャンセル後の再予約をテスト
func TestE2E_CancelAndRebook(t *testing.T) {
	server := getTestServer(t)

	adminToken := issueToken(t, "admin-suzuki", "鈴木管理者", "admin")
	tokenA := issueToken(t, "user-A", "社員A", "employee")
	tokenB := issueToken(t, "user-B", "社員B", "employee")
	date := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
	var seatID, bookingID string

	rec := server.Request("POST", "/api/admin/seats", map[string]interface{}{
		"name": "C-01", "type": "solo",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var seatResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &seatResp)
	seatID = seatResp["id"].(string)

	body := map[string]interface{}{"seat_id": seatID, "date": date, "slot": "AM"}

	t.Run("ユーザーAが予約", func(t *testing.T) {
		rec := server.Request("POST", "/api/bookings", body, tokenA)
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		bookingID = resp["id"].(string)
	})

	t.Run("ユーザーBのキャンセルは403", func(t *testing.T) {
		path := fmt.Sprintf("/api/bookings/%s", bookingID)
		rec := server.Request("DELETE", path, nil, tokenB)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ユーザーAがキャンセル", func(t *testing.T) {
		path := fmt.Sprintf("/api/bookings/%s", bookingID)
		rec := server.Request("DELETE", path, nil, tokenA)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ユーザーBが再予約に成功", func(t *testing.T) {
		rec := server.Request("POST", "/api/bookings", body, tokenB)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("管理者は他人の予約をキャンセルできる", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/dates/%s/bookings", date), nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var bookings []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &bookings)
		require.Len(t, bookings, 1)

		path := fmt.Sprintf("/api/bookings/%s", bookings[0]["id"].(string))
		rec = server.Request("DELETE", path, nil, adminToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

// TestE2E_BulkBooking は一括予約の部分成功をテスト
func TestE2E_BulkBooking(t *testing.T) {
	server := getTestServer(t)

	adminToken := issueToken(t, "admin-suzuki", "鈴木管理者", "admin")
	userToken := issueToken(t, "user-yamada", "山田太郎", "employee")
	date := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	var seatIDs []string

	// 座席を2つ登録し、片方を利用停止にする
	for i, name := range []string{"D-01", "D-02"} {
		rec := server.Request("POST", "/api/admin/seats", map[string]interface{}{
			"name": name, "type": "solo", "position_x": i,
		}, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		seatIDs = append(seatIDs, resp["id"].(string))
	}

	rec := server.Request("PUT", fmt.Sprintf("/api/admin/seats/%s/blocked", seatIDs[1]), map[string]interface{}{
		"blocked": true,
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("利用停止座席は競合として報告され残りは作成される", func(t *testing.T) {
		body := map[string]interface{}{
			"seat_ids": seatIDs,
			"dates":    []string{date},
			"slots":    []string{"AM", "PM"},
		}

		rec := server.Request("POST", "/api/bookings/bulk", body, userToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(2), resp["created_count"])
		assert.Equal(t, float64(1), resp["failed_count"])
	})

	t.Run("全滅の場合は409", func(t *testing.T) {
		body := map[string]interface{}{
			"seat_ids": seatIDs,
			"dates":    []string{date},
			"slots":    []string{"AM", "PM"},
		}

		rec := server.Request("POST", "/api/bookings/bulk", body, userToken)
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(0), resp["created_count"])
	})
}

// TestE2E_AdminAuthorization は管理者権限の境界をテスト
func TestE2E_AdminAuthorization(t *testing.T) {
	server := getTestServer(t)

	userToken := issueToken(t, "user-yamada", "山田太郎", "employee")

	t.Run("一般社員は座席を登録できない", func(t *testing.T) {
		rec := server.Request("POST", "/api/admin/seats", map[string]interface{}{
			"name": "X-01", "type": "solo",
		}, userToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("トークンなしは401", func(t *testing.T) {
		rec := server.Request("GET", "/api/seats", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
