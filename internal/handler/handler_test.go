package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/router"
	"github.com/credvault/cvs/internal/store/memstore"
)

const (
	creatorAddr   = "0x1234567890123456789012345678901234567890"
	supporterAddr = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter() *gin.Engine {
	store := memstore.New()
	l := ledger.NewLedger(store, nil)
	return router.Setup(l, store, "memory")
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func validCampaignBody() map[string]interface{} {
	return map[string]interface{}{
		"title":          "My First Campaign",
		"description":    "This description is definitely long enough.",
		"goalAmount":     1000,
		"duration":       30,
		"creatorAddress": creatorAddr,
	}
}

func TestCreateCampaignEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/campaigns", validCampaignBody())
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, float64(0), data["raisedAmount"])
	assert.Equal(t, float64(0), data["supporterCount"])
}

func TestCreateCampaignEndpoint_Validation(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/campaigns", map[string]interface{}{
		"title":          "abcd",
		"description":    "short",
		"goalAmount":     -1,
		"duration":       0,
		"creatorAddress": "0xBAD",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Validation failed", resp["error"])

	details := resp["details"].([]interface{})
	fields := make(map[string]bool)
	for _, d := range details {
		entry := d.(map[string]interface{})
		fields[entry["field"].(string)] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["description"])
	assert.True(t, fields["goalAmount"])
	assert.True(t, fields["creatorAddress"])

	// 校验失败不创建活动
	w = doRequest(t, r, http.MethodGet, "/api/campaigns", nil)
	resp = decode(t, w)
	assert.Equal(t, float64(0), resp["total"])
}

func TestGetCampaignsEndpoint(t *testing.T) {
	r := newTestRouter()

	for i := 0; i < 3; i++ {
		w := doRequest(t, r, http.MethodPost, "/api/campaigns", validCampaignBody())
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, r, http.MethodGet, "/api/campaigns", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(3), resp["total"])
	assert.Len(t, resp["data"].([]interface{}), 3)
}

func TestGetCampaignEndpoint_NotFound(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/api/campaigns/999", "/api/campaigns/nonexistent-id"} {
		w := doRequest(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusNotFound, w.Code, path)

		resp := decode(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "Campaign not found", resp["error"])
	}
}

func TestSupportCampaignEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/campaigns", validCampaignBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/campaigns/1/support", map[string]interface{}{
		"supporterAddress": supporterAddr,
		"amount":           0.1,
		"tokenUri":         "uri://1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	receipt := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), receipt["tokenId"])
	assert.Equal(t, supporterAddr, receipt["owner"])

	// 活动计数已更新
	w = doRequest(t, r, http.MethodGet, "/api/campaigns/1", nil)
	resp = decode(t, w)
	campaign := resp["data"].(map[string]interface{})
	assert.Equal(t, 0.1, campaign["raisedAmount"])
	assert.Equal(t, float64(1), campaign["supporterCount"])

	// 凭证持有查询
	w = doRequest(t, r, http.MethodGet, "/api/campaigns/1/receipts/"+supporterAddr, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, true, resp["data"].(map[string]interface{})["hasReceipt"])

	w = doRequest(t, r, http.MethodGet, "/api/campaigns/1/receipts/"+creatorAddr, nil)
	resp = decode(t, w)
	assert.Equal(t, false, resp["data"].(map[string]interface{})["hasReceipt"])
}

func TestSupportCampaignEndpoint_NotFound(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/campaigns/42/support", map[string]interface{}{
		"supporterAddress": supporterAddr,
		"amount":           1,
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "Campaign not found", resp["error"])
}

func TestCancelCampaignEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/campaigns", validCampaignBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/api/campaigns/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 终态活动拒绝支持
	w = doRequest(t, r, http.MethodPost, "/api/campaigns/1/support", map[string]interface{}{
		"supporterAddress": supporterAddr,
		"amount":           1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 再次取消冲突
	w = doRequest(t, r, http.MethodDelete, "/api/campaigns/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCampaignStatsEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/campaigns", validCampaignBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/campaigns/1/support", map[string]interface{}{
		"supporterAddress": supporterAddr,
		"amount":           250,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/campaigns/1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(250), stats["raisedAmount"])
	assert.Equal(t, float64(25), stats["completionPercentage"])
	assert.Equal(t, float64(1), stats["supporterCount"])
	assert.Equal(t, "active", stats["status"])
}

func TestCreatorEndpoints(t *testing.T) {
	r := newTestRouter()

	// 新建返回 201
	w := doRequest(t, r, http.MethodPost, "/api/creators", map[string]interface{}{
		"address": creatorAddr,
		"name":    "Alice",
		"bio":     "Independent creator",
		"socialLinks": map[string]string{
			"twitter": "https://twitter.com/alice",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 更新返回 200
	w = doRequest(t, r, http.MethodPost, "/api/creators", map[string]interface{}{
		"address": creatorAddr,
		"name":    "Alice Cooper",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Alice Cooper", data["name"])

	// 大小写不敏感查询
	w = doRequest(t, r, http.MethodGet, "/api/creators/0x1234567890123456789012345678901234567890", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, r, http.MethodGet, "/api/creators/0X1234567890123456789012345678901234567890", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 列表
	w = doRequest(t, r, http.MethodGet, "/api/creators", nil)
	resp = decode(t, w)
	assert.Equal(t, float64(1), resp["total"])
}

func TestCreatorEndpoints_Validation(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodPost, "/api/creators", map[string]interface{}{
		"address": "not-an-address",
		"name":    "A",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Validation failed", resp["error"])

	details := resp["details"].([]interface{})
	fields := make(map[string]bool)
	for _, d := range details {
		fields[d.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["address"])
	assert.True(t, fields["name"])
}

func TestCreatorEndpoint_NotFound(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodGet, "/api/creators/"+creatorAddr, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "Creator not found", resp["error"])
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "ok", resp["status"])

	w = doRequest(t, r, http.MethodGet, "/api/health/detailed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, "ok", resp["status"])
	storage := resp["storage"].(map[string]interface{})
	assert.Equal(t, "memory", storage["driver"])
	assert.Equal(t, "ok", storage["status"])
}
