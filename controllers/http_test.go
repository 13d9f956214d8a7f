package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gin_sqlite_equip_tool/app"
	"gin_sqlite_equip_tool/config"
	"gin_sqlite_equip_tool/db"
	"gin_sqlite_equip_tool/models"
	"gin_sqlite_equip_tool/routes"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	r := gin.New()
	a := &app.App{
		Router: r,
		DB:     conn,
		Log:    zap.NewNop(),
		Config: config.Config{},
	}
	routes.RegisterRoutes(r, a)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func createAsset(t *testing.T, r *gin.Engine, name, tag string) models.Asset {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/assets", gin.H{"name": name, "asset_tag": tag})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[models.Asset](t, w)
}

func TestCreateAssetAPI(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/assets", gin.H{
		"name": "プロジェクター", "asset_tag": "P-001", "category": "AV機器",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	a := decodeBody[models.Asset](t, w)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, models.StatusAvailable, a.Status)
	require.NotNil(t, a.Category)
	assert.Equal(t, "AV機器", *a.Category)

	// missing required fields
	w = doJSON(t, r, http.MethodPost, "/assets", gin.H{"name": "タグなし"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// duplicate tag
	w = doJSON(t, r, http.MethodPost, "/assets", gin.H{"name": "別物", "asset_tag": "P-001"})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.Equal(t, "asset_tag already exists", body["error"])
}

func TestListAssetsAPI(t *testing.T) {
	r := newTestServer(t)

	for _, tag := range []string{"A-002", "A-001", "A-003"} {
		createAsset(t, r, "item "+tag, tag)
	}

	w := doJSON(t, r, http.MethodGet, "/assets?limit=2&sort=asset_tag&order=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[[]models.Asset](t, w)
	require.Len(t, got, 2)
	assert.Equal(t, "A-001", got[0].AssetTag)
	assert.Equal(t, "A-002", got[1].AssetTag)

	w = doJSON(t, r, http.MethodGet, "/assets?q=A-003", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[[]models.Asset](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "A-003", got[0].AssetTag)

	// filtering by a category nobody has drops the filter
	w = doJSON(t, r, http.MethodGet, "/assets?category=存在しない", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[[]models.Asset](t, w)
	assert.Len(t, got, 3)
}

func TestAssetsMetaAPI(t *testing.T) {
	r := newTestServer(t)

	for i := 1; i <= 5; i++ {
		createAsset(t, r, "m", fmt.Sprintf("M-%03d", i))
	}

	w := doJSON(t, r, http.MethodGet, "/assets/meta?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	meta := decodeBody[db.AssetsMeta](t, w)
	assert.Equal(t, int64(5), meta.Total)
	assert.Equal(t, 2, meta.Limit)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestGetUpdateDeleteAssetAPI(t *testing.T) {
	r := newTestServer(t)
	a := createAsset(t, r, "ノートPC", "N-001")
	b := createAsset(t, r, "他のPC", "N-002")

	w := doJSON(t, r, http.MethodGet, "/assets/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/assets/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// invalid status
	w = doJSON(t, r, http.MethodPatch, "/assets/"+a.ID, gin.H{"status": "broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// tag collision with another asset
	w = doJSON(t, r, http.MethodPatch, "/assets/"+a.ID, gin.H{"asset_tag": b.AssetTag})
	assert.Equal(t, http.StatusConflict, w.Code)

	// keeping your own tag is fine
	w = doJSON(t, r, http.MethodPatch, "/assets/"+a.ID, gin.H{"asset_tag": "N-001", "name": "ノートPC 13インチ"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[models.Asset](t, w)
	assert.Equal(t, "ノートPC 13インチ", got.Name)

	w = doJSON(t, r, http.MethodDelete, "/assets/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/assets/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoanLifecycleAPI(t *testing.T) {
	r := newTestServer(t)
	a := createAsset(t, r, "カメラ", "C-001")

	w := doJSON(t, r, http.MethodPost, "/assets/"+a.ID+"/loan", gin.H{"borrower": "佐藤"})
	require.Equal(t, http.StatusCreated, w.Code)
	loan := decodeBody[models.Loan](t, w)
	assert.Equal(t, a.ID, loan.AssetID)
	assert.Nil(t, loan.ReturnedAt)

	// second loan refused while out
	w = doJSON(t, r, http.MethodPost, "/assets/"+a.ID+"/loan", gin.H{"borrower": "鈴木"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// borrower is required
	w = doJSON(t, r, http.MethodPost, "/assets/"+a.ID+"/loan", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/assets/"+a.ID+"/return", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[models.Asset](t, w)
	assert.Equal(t, models.StatusAvailable, got.Status)

	w = doJSON(t, r, http.MethodGet, "/assets/"+a.ID+"/loans?status=returned", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decodeBody[map[string][]models.Loan](t, w)
	require.Len(t, hist["items"], 1)
	assert.Equal(t, "佐藤", hist["items"][0].Borrower)

	w = doJSON(t, r, http.MethodPost, "/assets/no-such-id/loan", gin.H{"borrower": "誰か"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriesAPI(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "工具", "sort_order": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	cat := decodeBody[models.Category](t, w)

	w = doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "工具"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/assets", gin.H{"name": "ハンマー", "asset_tag": "H-001", "category": "工具"})
	require.Equal(t, http.StatusCreated, w.Code)
	a := decodeBody[models.Asset](t, w)

	// rename cascades into the assets by default
	w = doJSON(t, r, http.MethodPost, "/categories/"+cat.ID+"/rename", gin.H{"new_name": "ハンドツール"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/assets/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[models.Asset](t, w)
	require.NotNil(t, got.Category)
	assert.Equal(t, "ハンドツール", *got.Category)

	// delete is refused while referenced
	w = doJSON(t, r, http.MethodDelete, "/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/assets/"+a.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[map[string][]models.Category](t, w)
	assert.Empty(t, list["items"])
}

func TestLocationsAPI(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/locations", gin.H{"name": "棚A"})
	require.Equal(t, http.StatusCreated, w.Code)
	loc := decodeBody[models.Location](t, w)

	w = doJSON(t, r, http.MethodPost, "/locations", gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/locations/"+loc.ID+"/rename", gin.H{"new_name": "倉庫1", "cascade_assets": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/locations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[map[string][]models.Location](t, w)
	require.Len(t, list["items"], 1)
	assert.Equal(t, "倉庫1", list["items"][0].Name)
}

func TestImportCSVAPI(t *testing.T) {
	r := newTestServer(t)
	createAsset(t, r, "既存", "E-001")

	csvData := "名前,管理番号,カテゴリ\nドリル,T-001,工具\n,T-002,\n既存のコピー,E-001,\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "assets.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeBody[db.ImportResult](t, w)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "row 2: name/asset_tag is empty", res.Errors[0])

	// no file part
	w = doJSON(t, r, http.MethodPost, "/assets/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSVAPI(t *testing.T) {
	r := newTestServer(t)
	createAsset(t, r, "プロジェクター", "P-001")
	createAsset(t, r, "スクリーン", "P-002")

	w := doJSON(t, r, http.MethodGet, "/assets/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "assets_export.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,asset_tag,category,location,status,updated_at,note", strings.TrimSpace(lines[0]))
	assert.Contains(t, w.Body.String(), "P-001")
	assert.Contains(t, w.Body.String(), "P-002")

	// export honors the list filters
	w = doJSON(t, r, http.MethodGet, "/assets/export?q=P-002", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "P-001")
	assert.Contains(t, w.Body.String(), "P-002")
}

func TestUIFormsRedirect(t *testing.T) {
	r := newTestServer(t)

	postForm := func(path string, form map[string]string) *httptest.ResponseRecorder {
		vals := make([]string, 0, len(form))
		for k, v := range form {
			vals = append(vals, k+"="+v)
		}
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(strings.Join(vals, "&")))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := postForm("/ui/assets", map[string]string{"name": "desk", "asset_tag": "D-001"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/ui/assets", w.Header().Get("Location"))

	// duplicate tag: no error page, just the same redirect
	w = postForm("/ui/assets", map[string]string{"name": "another", "asset_tag": "D-001"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/ui/assets", w.Header().Get("Location"))

	// the duplicate was not created
	lw := doJSON(t, r, http.MethodGet, "/assets", nil)
	require.Equal(t, http.StatusOK, lw.Code)
	assets := decodeBody[[]models.Asset](t, lw)
	require.Len(t, assets, 1)
	assert.Equal(t, "desk", assets[0].Name)

	// blank required fields also just bounce back
	w = postForm("/ui/assets", map[string]string{"name": "", "asset_tag": ""})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	// loan and return through the form endpoints
	id := assets[0].ID
	w = postForm("/ui/assets/"+id+"/loan", map[string]string{"borrower": "tanaka", "due_date": "2026-09-01"})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	gw := doJSON(t, r, http.MethodGet, "/assets/"+id, nil)
	require.Equal(t, http.StatusOK, gw.Code)
	got := decodeBody[models.Asset](t, gw)
	assert.Equal(t, models.StatusLoaned, got.Status)

	w = postForm("/ui/assets/"+id+"/return", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm("/ui/assets/"+id+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	gw = doJSON(t, r, http.MethodGet, "/assets/"+id, nil)
	assert.Equal(t, http.StatusNotFound, gw.Code)

	// master forms
	w = postForm("/ui/categories", map[string]string{"name": "tools"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/ui/categories", w.Header().Get("Location"))
}
