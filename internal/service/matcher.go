package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yourusername/resumematch-web/internal/model"
)

// MatcherClient wraps the external resume extraction/matching service.
// Every operation is a single multipart round trip: no retries, no
// caching, no streaming.
type MatcherClient struct {
	baseURL string
	client  *http.Client
}

func NewMatcherClient(baseURL string, timeout time.Duration) *MatcherClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &MatcherClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured service address.
func (c *MatcherClient) BaseURL() string {
	return c.baseURL
}

// ── Service response envelopes ────────────────────────

type parseResponse struct {
	Status        string            `json:"status"`
	ExtractedData map[string]string `json:"extracted_data"`
}

type matchResponse struct {
	Status       string            `json:"status"`
	MatchScore   float64           `json:"match_score"`
	ParsedResume map[string]string `json:"parsed_resume"`
}

type bulkResponse struct {
	Status  string            `json:"status"`
	Matches []model.BulkMatch `json:"matches"`
}

// errorEnvelope covers both failure shapes the service produces:
// FastAPI-style {"detail": "..."} and {"status": "...", "message": "..."}.
type errorEnvelope struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// ── Operations ────────────────────────────────────────

// ParseResume submits one resume for extraction only.
// POST {base}/upload-resume, multipart field "file".
func (c *MatcherClient) ParseResume(ctx context.Context, doc model.Document) (map[string]string, error) {
	form, contentType, err := buildForm(nil, []filePart{{field: "file", doc: doc}})
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	var resp parseResponse
	if err := c.post(ctx, "/upload-resume", contentType, form, &resp, &resp.Status); err != nil {
		return nil, err
	}
	return resp.ExtractedData, nil
}

// MatchResumeJD submits one resume plus job-description text and
// returns the score with the parsed resume fields.
// POST {base}/match-resume-jd, multipart fields "resume" and "jd_text".
func (c *MatcherClient) MatchResumeJD(ctx context.Context, doc model.Document, jdText string) (*model.MatchResult, error) {
	form, contentType, err := buildForm(
		map[string]string{"jd_text": jdText},
		[]filePart{{field: "resume", doc: doc}},
	)
	if err != nil {
		return nil, fmt.Errorf("building match form: %w", err)
	}

	var resp matchResponse
	if err := c.post(ctx, "/match-resume-jd", contentType, form, &resp, &resp.Status); err != nil {
		return nil, err
	}
	return &model.MatchResult{
		MatchScore:   resp.MatchScore,
		ParsedResume: resp.ParsedResume,
	}, nil
}

// BulkMatch submits several resumes against one job description. The
// service filters by minScore and returns surviving entries sorted by
// score descending.
// POST {base}/bulk-match?min_score=X, multipart "jd_text" + repeated "resumes".
func (c *MatcherClient) BulkMatch(ctx context.Context, docs []model.Document, jdText string, minScore float64) ([]model.BulkMatch, error) {
	parts := make([]filePart, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, filePart{field: "resumes", doc: doc})
	}

	form, contentType, err := buildForm(map[string]string{"jd_text": jdText}, parts)
	if err != nil {
		return nil, fmt.Errorf("building bulk form: %w", err)
	}

	path := "/bulk-match?min_score=" + url.QueryEscape(strconv.FormatFloat(minScore, 'f', -1, 64))

	var resp bulkResponse
	if err := c.post(ctx, path, contentType, form, &resp, &resp.Status); err != nil {
		return nil, err
	}
	if resp.Matches == nil {
		resp.Matches = []model.BulkMatch{}
	}
	return resp.Matches, nil
}

// ── Transport ─────────────────────────────────────────

// post performs one round trip and decodes the body into out. status
// points at out's status field so the success check can run after
// decoding without reflection.
func (c *MatcherClient) post(ctx context.Context, path, contentType string, body *bytes.Buffer, out any, status *string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling matcher service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{StatusCode: resp.StatusCode, Message: serviceErrorText(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding matcher response: %w", err)
	}
	if *status != "success" {
		return &ServiceError{StatusCode: resp.StatusCode, Message: serviceErrorText(raw)}
	}
	return nil
}

// serviceErrorText pulls the user-facing sentence out of a failure
// body: "detail" first, then "message". Empty when the body carries
// neither (the status code still reaches the log).
func serviceErrorText(raw []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Detail != "" {
		return env.Detail
	}
	return env.Message
}

// ── Multipart assembly ────────────────────────────────

type filePart struct {
	field string
	doc   model.Document
}

func buildForm(fields map[string]string, files []filePart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", key, err)
		}
	}

	for _, fp := range files {
		part, err := w.CreateFormFile(fp.field, fp.doc.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part %s: %w", fp.field, err)
		}
		if _, err := part.Write(fp.doc.Data); err != nil {
			return nil, "", fmt.Errorf("writing file part %s: %w", fp.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
