package ingest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolabel/pkg/model"
)

func TestSubmit(t *testing.T) {
	ing, _ := newIngestor(&mockFileStore{})
	router := httprouter.New()
	NewIngestHandler(ing).RegisterRoutes(router)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	valid := `{"resource_id":"img_001.jpg","aircraft_class":"A320","aircraft_confidence":0.9,"airline_class":"DLH","airline_confidence":0.8}`

	rec := post(valid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = post(valid)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data model.IngestResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.IngestDuplicate, body.Data.Outcome)

	rec = post(`{"resource_id":"img_002.jpg","aircraft_class":"A320","aircraft_confidence":1.5,"airline_class":"DLH"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
