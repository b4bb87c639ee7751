package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/characters/c1/trackers/hope", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("defer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TrackerSetRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(Tracker{Tracker: "hope", Value: req.Value, Max: 6})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	c.SetToken("tok")
	tr, err := c.SetTracker("c1", "hope", 4, true)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Value)
	assert.Equal(t, 6, tr.Max)
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: []FieldError{{Field: "traits", Message: "invalid pool"}},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitBuild(BuildPayload(`{"basics":{}}`))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Response.Code)
	assert.Len(t, apiErr.Response.Fields, 1)
}

func TestRawRequestPassesJSONThrough(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).RawRequest(http.MethodPost, "/x", `{"index":3}`))
	assert.JSONEq(t, `{"index":3}`, got)
}

func TestPollRollsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/moderator/players/p1/rolls", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("after"))
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		json.NewEncoder(w).Encode(RollHistoryResponse{Rolls: []RollEntry{{RollID: 13, Dice: "2d12"}}})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).PollRolls("p1", 12, true)
	require.NoError(t, err)
	require.Len(t, resp.Rolls, 1)
	assert.Equal(t, int64(13), resp.Rolls[0].RollID)
}
