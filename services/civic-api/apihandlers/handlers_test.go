package apihandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civic-lens/civic-backend/pkg/civic"
	"github.com/civic-lens/civic-backend/pkg/civic/civictest"
	"github.com/civic-lens/civic-backend/pkg/spamcheck"
	civicTypes "github.com/civic-lens/civic-backend/pkg/civic/types"
	jwthandling "github.com/civic-lens/civic-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSignKey = "test-sign-key"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type apiEnv struct {
	router *gin.Engine
	store  *civictest.MemStore
	blobs  *civictest.MemBlobs
	spam   *civictest.StubSpam
	user   primitive.ObjectID
	token  string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	spam := &civictest.StubSpam{}
	env := newAPIEnvWithSpam(t, spam)
	env.spam = spam
	return env
}

func newAPIEnvWithSpam(t *testing.T, spam civic.SpamChecker) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &apiEnv{
		store: civictest.NewMemStore(),
		blobs: civictest.NewMemBlobs(),
		user:  primitive.NewObjectID(),
	}
	token, err := jwthandling.GenerateNewIdentityToken(time.Hour, env.user.Hex(), nil, testSignKey)
	require.NoError(t, err)
	env.token = token

	svc := civic.NewService(env.store, env.store, env.store, env.blobs, spam)
	env.router = gin.New()
	NewHTTPHandler(svc, testSignKey, 1<<20, t.TempDir(), "1.2.3").AddRoutes(env.router.Group(""))
	return env
}

func (env *apiEnv) do(t *testing.T, method, path string, body io.Reader, contentType string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+env.token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *apiEnv) doJSON(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return env.do(t, method, path, r, "application/json", true)
}

type errorBody struct {
	Error struct {
		Kind    string          `json:"kind"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

const potholeReport = `{"title":"Pothole","description":"Large pothole on Main St","coordinates":[{"latitude":1.0,"longitude":2.0}]}`

func (env *apiEnv) createReport(t *testing.T) civicTypes.Report {
	t.Helper()
	w := env.doJSON(t, http.MethodPost, "/reports", potholeReport)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report civicTypes.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return report
}

func multipartBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, "photo.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestCreateReportExample(t *testing.T) {
	env := newAPIEnv(t)

	w := env.doJSON(t, http.MethodPost, "/reports", potholeReport)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotEmpty(t, raw["id"])
	assert.Equal(t, "proposed", raw["status"])
	assert.Equal(t, []any{}, raw["media"])
	assert.Equal(t, []any{}, raw["upvoters"])
	assert.Equal(t, env.user.Hex(), raw["authorId"])
	assert.Nil(t, raw["lastUpdatedAt"])
}

func TestCreateReportErrors(t *testing.T) {
	env := newAPIEnv(t)

	t.Run("missing identity", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/reports", strings.NewReader(potholeReport), "application/json", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("all violations are listed", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/reports", `{"coordinates":[{"latitude":100}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		e := decodeError(t, w)
		assert.Equal(t, "ValidationError", e.Error.Kind)

		var violations []struct {
			Field string `json:"field"`
		}
		require.NoError(t, json.Unmarshal(e.Error.Details, &violations))
		fields := []string{}
		for _, v := range violations {
			fields = append(fields, v.Field)
		}
		assert.ElementsMatch(t, []string{"title", "description", "coordinates[0].latitude", "coordinates[0].longitude"}, fields)
	})

	t.Run("spam", func(t *testing.T) {
		env.spam.Spam = true
		defer func() { env.spam.Spam = false }()

		w := env.doJSON(t, http.MethodPost, "/reports", potholeReport)
		require.Equal(t, http.StatusBadRequest, w.Code)
		e := decodeError(t, w)
		assert.Equal(t, "SpamRejected", e.Error.Kind)
		assert.JSONEq(t, `{"text":"Large pothole on Main St"}`, string(e.Error.Details))
	})

	t.Run("internal details are hidden", func(t *testing.T) {
		env.store.FailWrites = assert.AnError
		defer func() { env.store.FailWrites = nil }()

		w := env.doJSON(t, http.MethodPost, "/reports", potholeReport)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		e := decodeError(t, w)
		assert.Equal(t, "InternalError", e.Error.Kind)
		assert.Empty(t, e.Error.Details)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}

func TestGetReport(t *testing.T) {
	env := newAPIEnv(t)
	report := env.createReport(t)

	w := env.do(t, http.MethodGet, "/reports/"+report.ID.Hex(), nil, "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/reports/not-an-id", nil, "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidIdentifier", decodeError(t, w).Error.Kind)

	w = env.do(t, http.MethodGet, "/reports/"+primitive.NewObjectID().Hex(), nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", decodeError(t, w).Error.Kind)

	w = env.do(t, http.MethodGet, "/reports", nil, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	var all []civicTypes.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestPatchAndDeleteReport(t *testing.T) {
	env := newAPIEnv(t)
	report := env.createReport(t)
	path := "/reports/" + report.ID.Hex()

	w := env.doJSON(t, http.MethodPatch, path, `{"status":"considered","media":["injected"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, path, nil, "", false)
	var got civicTypes.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, civicTypes.REPORT_STATUS_CONSIDERED, got.Status)
	assert.Empty(t, got.Media)
	assert.NotNil(t, got.LastUpdatedAt)

	w = env.doJSON(t, http.MethodPatch, path, `{"status":"finished"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.doJSON(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestToggleUpvote(t *testing.T) {
	env := newAPIEnv(t)
	report := env.createReport(t)
	path := "/reports/" + report.ID.Hex() + "/upvoters"

	w := env.doJSON(t, http.MethodPut, path+"?action=down", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodPut, path+"?action=up", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.doJSON(t, http.MethodPut, path+"?action=up", "")
	assert.Equal(t, http.StatusOK, w.Code)

	got, err := env.store.GetReportByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{env.user}, got.Upvoters)

	w = env.doJSON(t, http.MethodPut, path+"?action=sideways", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidQueryParameter", decodeError(t, w).Error.Kind)
}

func TestMediaRoutes(t *testing.T) {
	env := newAPIEnv(t)
	report := env.createReport(t)
	path := "/reports/" + report.ID.Hex() + "/media"

	body, contentType := multipartBody(t, MEDIA_FORM_FIELD, pngBytes)
	w := env.do(t, http.MethodPost, path, body, contentType, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var attached struct {
		Media string `json:"media"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attached))
	assert.True(t, strings.HasSuffix(attached.Media, ".png"))
	assert.True(t, env.blobs.Has(attached.Media))

	w = env.do(t, http.MethodGet, path, nil, "", false)
	assert.JSONEq(t, `["`+attached.Media+`"]`, w.Body.String())

	t.Run("unsupported type", func(t *testing.T) {
		body, contentType := multipartBody(t, MEDIA_FORM_FIELD, []byte("just some text"))
		w := env.do(t, http.MethodPost, path, body, contentType, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ValidationError", decodeError(t, w).Error.Kind)
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartBody(t, "other", pngBytes)
		w := env.do(t, http.MethodPost, path, body, contentType, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty media reference", func(t *testing.T) {
		w := env.doJSON(t, http.MethodDelete, path+"?media=", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "InvalidQueryParameter", decodeError(t, w).Error.Kind)
	})

	t.Run("detach", func(t *testing.T) {
		w := env.doJSON(t, http.MethodDelete, path+"?media="+attached.Media, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.blobs.Has(attached.Media))

		w = env.doJSON(t, http.MethodDelete, path+"?media="+attached.Media, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSolutionRoutes(t *testing.T) {
	env := newAPIEnv(t)
	report := env.createReport(t)

	w := env.doJSON(t, http.MethodPost, "/solutions", `{"reportId":"`+primitive.NewObjectID().Hex()+`","title":"Fill","description":"Asphalt"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, http.MethodPost, "/solutions", `{"reportId":"`+report.ID.Hex()+`","title":"Fill","description":"Asphalt"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var solution civicTypes.Solution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &solution))
	assert.Nil(t, solution.Budget)
	path := "/solutions/" + solution.ID.Hex()

	w = env.doJSON(t, http.MethodPut, path+"/budget", `{"cost":1200,"startDate":"2024-05-01T00:00:00Z","endDate":"2024-06-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodPut, path+"/budget", `{"startDate":"2024-06-01T00:00:00Z","endDate":"2024-05-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodPut, path+"/budget", `null`)
	assert.Equal(t, http.StatusOK, w.Code)
	got, err := env.store.GetSolutionByID(context.Background(), solution.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Budget)

	w = env.doJSON(t, http.MethodPatch, path, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/solutions", nil, "", false)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestVersion(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(t, http.MethodGet, "/version", nil, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", HealthCheckHandle)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateReportWhileClassifierDown(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "classifier hangs",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(500 * time.Millisecond):
				case <-r.Context().Done():
				}
			},
		},
		{
			name: "classifier errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			gate, err := spamcheck.NewGate(spamcheck.Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
			require.NoError(t, err)
			env := newAPIEnvWithSpam(t, gate)

			w := env.doJSON(t, http.MethodPost, "/reports", potholeReport)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var report civicTypes.Report
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
			assert.Equal(t, civicTypes.REPORT_STATUS_PROPOSED, report.Status)

			stored, err := env.store.GetReportByID(context.Background(), report.ID)
			require.NoError(t, err)
			assert.Equal(t, "Pothole", stored.Title)
		})
	}
}
