package food

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/wasteless-api/internal/category"
	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
)

func newTestRouter(env *testEnv, maxBytes int64) http.Handler {
	h := NewHandler(env.svc, maxBytes)
	r := chi.NewRouter()
	r.Post("/postFood", h.PostFood)
	r.Get("/foodList", h.FoodList)
	r.Get("/foodList/{userId}", h.FoodListByUser)
	r.Get("/foodDetail/{id}", h.FoodDetail)
	r.Get("/food/search", h.Search)
	return r
}

func withIdentity(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{UserID: userID, Name: "Sari"}))
}

func multipartDonation(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("fotoMakanan", "rice.jpg")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func donationFields() map[string]string {
	return map[string]string{
		"foodName":    "Rice",
		"description": "Steamed rice",
		"quantity":    "2",
		"location":    "Malioboro",
		"expiredAt":   "31-12-2030",
		"foodType":    "nasi_mie_pastaT",
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestPostFood_Created(t *testing.T) {
	env := newTestEnv()
	body, contentType := multipartDonation(t, donationFields(), jpegBytes)

	req := httptest.NewRequest(http.MethodPost, "/postFood", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, env.owner.ID)
	rec := httptest.NewRecorder()

	newTestRouter(env, 1<<20).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp PostFoodResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "food donated successfully", resp.Message)
	require.NotNil(t, resp.Food)
	assert.Equal(t, "Rice", resp.Food.Name)
	assert.Equal(t, 1, env.store.count())
}

func TestPostFood_RequiresIdentity(t *testing.T) {
	env := newTestEnv()
	body, contentType := multipartDonation(t, donationFields(), jpegBytes)

	req := httptest.NewRequest(http.MethodPost, "/postFood", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestRouter(env, 1<<20).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, env.geocoder.calls)
}

func TestPostFood_MissingFields(t *testing.T) {
	env := newTestEnv()
	fields := donationFields()
	delete(fields, "foodName")
	delete(fields, "quantity")
	body, contentType := multipartDonation(t, fields, nil)

	req := httptest.NewRequest(http.MethodPost, "/postFood", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, env.owner.ID)
	rec := httptest.NewRecorder()

	newTestRouter(env, 1<<20).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, resp.Code)
	assert.Len(t, resp.Errors, 3)
	assert.Equal(t, 0, env.geocoder.calls)
}

func TestPostFood_NotMultipart(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		fields      []string
	}{
		{
			name:        "urlencoded form without photo",
			contentType: "application/x-www-form-urlencoded",
			body:        "foodName=Rice&description=Steamed+rice&quantity=2&location=Malioboro&expiredAt=31-12-2030&foodType=nasi_mie_pastaT",
			fields:      []string{"fotoMakanan"},
		},
		{
			name:        "json body",
			contentType: "application/json",
			body:        `{"foodName":"Rice"}`,
			fields:      []string{"foodName", "description", "quantity", "location", "expiredAt", "foodType", "fotoMakanan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := httptest.NewRequest(http.MethodPost, "/postFood", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			req = withIdentity(req, env.owner.ID)
			rec := httptest.NewRecorder()

			newTestRouter(env, 1<<20).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, httputil.CodeValidationFailed, resp.Code)

			fields := make([]string, 0, len(resp.Errors))
			for _, fe := range resp.Errors {
				fields = append(fields, fe.Field)
			}
			assert.ElementsMatch(t, tt.fields, fields)
			assert.Equal(t, 0, env.geocoder.calls)
		})
	}
}

func TestPostFood_InvalidLocation(t *testing.T) {
	env := newTestEnv()
	env.geocoder.results = nil
	fields := donationFields()
	fields["location"] = "Nonexistent Place, Nowhere"
	body, contentType := multipartDonation(t, fields, jpegBytes)

	req := httptest.NewRequest(http.MethodPost, "/postFood", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, env.owner.ID)
	rec := httptest.NewRecorder()

	newTestRouter(env, 1<<20).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidLocation, decodeError(t, rec).Code)
	assert.Equal(t, 0, env.store.count())
}

func TestPostFood_TooLarge(t *testing.T) {
	env := newTestEnv()
	body, contentType := multipartDonation(t, donationFields(), bytes.Repeat(jpegBytes, 200))

	req := httptest.NewRequest(http.MethodPost, "/postFood", body)
	req.Header.Set("Content-Type", contentType)
	req = withIdentity(req, env.owner.ID)
	rec := httptest.NewRecorder()

	newTestRouter(env, 512).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, env.geocoder.calls)
}

func TestFoodDetail(t *testing.T) {
	env := newTestEnv()
	existing := Food{ID: uuid.New(), Name: "Tempe", FoodType: category.TahuTempeTelur, ExpiredAt: time.Now().Add(time.Hour)}
	env.store.foods = []Food{existing}
	router := newTestRouter(env, 1<<20)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"found", existing.ID.String(), http.StatusOK},
		{"unknown id", uuid.NewString(), http.StatusNotFound},
		{"malformed id", "not-a-uuid", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/foodDetail/"+tt.id, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNotFound {
				resp := decodeError(t, rec)
				assert.Equal(t, httputil.CodeNotFound, resp.Code)
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestFoodList_Anonymous(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foodList", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, msgNoDonations, resp.Message)
	assert.Empty(t, resp.Foods)
	assert.Empty(t, env.recommender.got)
}

func TestFoodList_Recommended(t *testing.T) {
	env := newTestEnv()
	seedFoods(env.store, category.Sayur, 3)
	router := newTestRouter(env, 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/foodList", nil), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "sayurT", resp.Category)
	assert.Len(t, resp.Foods, 3)
	assert.Empty(t, resp.Message)
}

func TestFoodList_RecommendedEmpty(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, 1<<20)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/foodList", nil), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, msgNoRecommended, resp.Message)
}

func TestFoodListByUser(t *testing.T) {
	env := newTestEnv()
	env.store.foods = []Food{{ID: uuid.New(), Name: "Sambal", UserID: env.owner.ID}}
	router := newTestRouter(env, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foodList/"+env.owner.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Foods, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foodList/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = ListResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, msgNoOwnedListings, resp.Message)
}

func TestSearch(t *testing.T) {
	env := newTestEnv()
	env.store.foods = []Food{
		{ID: uuid.New(), Name: "Nasi Goreng", Description: "fried rice", ExpiredAt: time.Now().Add(time.Hour)},
		{ID: uuid.New(), Name: "Bakso", Description: "meatball soup", ExpiredAt: time.Now().Add(time.Hour)},
	}
	router := newTestRouter(env, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/food/search?q=rice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Foods, 1)
	assert.Equal(t, "Nasi Goreng", resp.Foods[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/food/search?q=pizza", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/food/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
