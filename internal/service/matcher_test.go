package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/resumematch-web/internal/model"
)

func newClient(url string) *MatcherClient {
	return NewMatcherClient(url, 5*time.Second)
}

func TestMatcherClient_ParseResume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload-resume", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		require.Len(t, r.MultipartForm.File["file"], 1)
		assert.Equal(t, "cv.pdf", r.MultipartForm.File["file"][0].Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","extracted_data":{"SKILLS":"Go, SQL","SUMMARY":""}}`))
	}))
	defer srv.Close()

	extracted, err := newClient(srv.URL).ParseResume(context.Background(), model.Document{
		Filename: "cv.pdf",
		Data:     []byte("%PDF-fake"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go, SQL", extracted["SKILLS"])
	assert.Contains(t, extracted, "SUMMARY")
}

func TestMatcherClient_MatchResumeJD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match-resume-jd", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "We need a Go engineer.", r.FormValue("jd_text"))
		require.Len(t, r.MultipartForm.File["resume"], 1)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","match_score":8.25,"parsed_resume":{"EXPERIENCE":"5 years"}}`))
	}))
	defer srv.Close()

	result, err := newClient(srv.URL).MatchResumeJD(context.Background(), model.Document{
		Filename: "cv.pdf",
		Data:     []byte("%PDF-fake"),
	}, "We need a Go engineer.")
	require.NoError(t, err)
	assert.Equal(t, 8.25, result.MatchScore)
	assert.Equal(t, "5 years", result.ParsedResume["EXPERIENCE"])
}

func TestMatcherClient_BulkMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bulk-match", r.URL.Path)
		assert.Equal(t, "6.5", r.URL.Query().Get("min_score"))

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "JD text", r.FormValue("jd_text"))
		require.Len(t, r.MultipartForm.File["resumes"], 2)
		assert.Equal(t, "a.pdf", r.MultipartForm.File["resumes"][0].Filename)
		assert.Equal(t, "b.docx", r.MultipartForm.File["resumes"][1].Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","matches":[{"filename":"a.pdf","score":9.1},{"filename":"b.docx","score":7.0}]}`))
	}))
	defer srv.Close()

	docs := []model.Document{
		{Filename: "a.pdf", Data: []byte("one")},
		{Filename: "b.docx", Data: []byte("two")},
	}
	matches, err := newClient(srv.URL).BulkMatch(context.Background(), docs, "JD text", 6.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Service order preserved (it sorts descending by score)
	assert.Equal(t, "a.pdf", matches[0].Filename)
	assert.Equal(t, 9.1, matches[0].Score)
	assert.Equal(t, "b.docx", matches[1].Filename)
}

func TestMatcherClient_BulkMatchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","matches":null}`))
	}))
	defer srv.Close()

	matches, err := newClient(srv.URL).BulkMatch(context.Background(),
		[]model.Document{{Filename: "a.pdf", Data: []byte("x")}}, "JD", 7)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestMatcherClient_ServiceDetailError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Azure returned non-JSON"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).ParseResume(context.Background(), model.Document{Filename: "cv.pdf", Data: []byte("x")})
	require.Error(t, err)

	svcErr, ok := err.(*ServiceError)
	require.True(t, ok, "expected *ServiceError, got %T", err)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.Equal(t, "Azure returned non-JSON", svcErr.Message)
}

func TestMatcherClient_NonSuccessStatusField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"model not loaded"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).MatchResumeJD(context.Background(),
		model.Document{Filename: "cv.pdf", Data: []byte("x")}, "JD")
	require.Error(t, err)

	svcErr, ok := err.(*ServiceError)
	require.True(t, ok)
	assert.Equal(t, "model not loaded", svcErr.Message)
}

func TestMatcherClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).ParseResume(context.Background(), model.Document{Filename: "cv.pdf", Data: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding matcher response")
}

func TestMatcherClient_ConnectionRefused(t *testing.T) {
	// Grab a port that is not listening
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(url).ParseResume(context.Background(), model.Document{Filename: "cv.pdf", Data: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calling matcher service")
}
