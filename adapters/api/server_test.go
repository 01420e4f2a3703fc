package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locatego/adapters/wire"
	"locatego/src"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	predictor := locate.NewSyntheticPredictor()
	require.NoError(t, predictor.SetSession("test"))
	return NewServer(locate.DefaultEngineConfig(), predictor)
}

func postLocate(t *testing.T, s *Server, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/locate", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleLocateReturnsResponseForValidRequest(t *testing.T) {
	s := newTestServer(t)
	req := wire.Request{
		SourceLat: 10.0,
		SourceLon: 20.0,
		InputData: []wire.Pick{
			{Site: wire.Site{Station: "AAA", Latitude: 40.0, Longitude: 20.0}, Time: 100000, PickedPhase: "P", Use: true},
		},
	}
	rec := postLocate(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp wire.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Status)
}

func TestHandleLocateRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/locate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLocateRejectsValidationFailure(t *testing.T) {
	s := newTestServer(t)
	req := wire.Request{SourceLat: 200.0, SourceLon: 20.0, InputData: []wire.Pick{
		{Site: wire.Site{Station: "AAA", Latitude: 40.0, Longitude: 20.0}, Time: 100000, PickedPhase: "P"},
	}}
	rec := postLocate(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
