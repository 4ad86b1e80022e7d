package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumematch-web/internal/document"
	"github.com/yourusername/resumematch-web/internal/model"
	"github.com/yourusername/resumematch-web/internal/repository"
	"github.com/yourusername/resumematch-web/internal/service"
)

// ResumeHandler owns the three matcher operations. history may be nil
// when no database is configured; recording is then skipped.
type ResumeHandler struct {
	matcher         *service.MatcherClient
	history         *repository.HistoryRepo
	maxUploadBytes  int64
	defaultMinScore float64
}

func NewResumeHandler(matcher *service.MatcherClient, history *repository.HistoryRepo, maxUploadBytes int64, defaultMinScore float64) *ResumeHandler {
	return &ResumeHandler{
		matcher:         matcher,
		history:         history,
		maxUploadBytes:  maxUploadBytes,
		defaultMinScore: defaultMinScore,
	}
}

// Parse handles POST /api/upload-resume
// Accepts one resume via multipart field "file", forwards it to the
// matcher service for extraction, returns the extracted fields.
func (h *ResumeHandler) Parse(c *gin.Context) {
	doc, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	extracted, err := h.matcher.ParseResume(c.Request.Context(), doc)
	if err != nil {
		log.Error().Err(err).Str("filename", doc.Filename).Msg("Resume parse failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErrorText(err)})
		return
	}

	log.Info().
		Str("filename", doc.Filename).
		Int("fields", len(extracted)).
		Msg("Resume parsed")

	h.record(c, &model.HistoryEntry{
		Kind:      model.KindParse,
		Filenames: []string{doc.Filename},
	})

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"extracted_data": extracted,
	})
}

// Match handles POST /api/match-resume-jd
// Accepts one resume (field "resume") plus pasted job-description text
// (field "jd_text"), returns the match score and parsed resume.
func (h *ResumeHandler) Match(c *gin.Context) {
	doc, ok := h.readUpload(c, "resume")
	if !ok {
		return
	}

	jdText := strings.TrimSpace(c.PostForm("jd_text"))
	if jdText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please paste the job description text."})
		return
	}

	result, err := h.matcher.MatchResumeJD(c.Request.Context(), doc, jdText)
	if err != nil {
		log.Error().Err(err).Str("filename", doc.Filename).Msg("Resume match failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErrorText(err)})
		return
	}

	log.Info().
		Str("filename", doc.Filename).
		Float64("score", result.MatchScore).
		Msg("Resume matched against JD")

	score := result.MatchScore
	h.record(c, &model.HistoryEntry{
		Kind:      model.KindMatch,
		Filenames: []string{doc.Filename},
		Score:     &score,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"match_score":   result.MatchScore,
		"parsed_resume": result.ParsedResume,
	})
}

// BulkMatch handles POST /api/bulk-match?min_score=7
// Accepts repeated "resumes" files plus "jd_text"; the service returns
// one entry per resume scoring at or above min_score.
func (h *ResumeHandler) BulkMatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload. Please try again."})
		return
	}

	headers := form.File["resumes"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select at least one resume file."})
		return
	}

	jdText := strings.TrimSpace(c.PostForm("jd_text"))
	if jdText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please paste the job description text."})
		return
	}

	minScore := h.defaultMinScore
	if raw := c.Query("min_score"); raw != "" {
		minScore, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be a number."})
			return
		}
	}
	if minScore < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must not be negative."})
		return
	}

	docs := make([]model.Document, 0, len(headers))
	filenames := make([]string, 0, len(headers))
	for _, header := range headers {
		doc, ok := h.readHeader(c, header)
		if !ok {
			return
		}
		docs = append(docs, doc)
		filenames = append(filenames, doc.Filename)
	}

	matches, err := h.matcher.BulkMatch(c.Request.Context(), docs, jdText, minScore)
	if err != nil {
		log.Error().Err(err).Int("resumes", len(docs)).Msg("Bulk match failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErrorText(err)})
		return
	}

	log.Info().
		Int("resumes", len(docs)).
		Int("matches", len(matches)).
		Float64("minScore", minScore).
		Msg("Bulk match completed")

	h.record(c, &model.HistoryEntry{
		Kind:       model.KindBulkMatch,
		Filenames:  filenames,
		MatchCount: len(matches),
	})

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"matches": matches,
	})
}

// ── Helpers ──────────────────────────────────────────

// readUpload pulls a single file out of the form and validates it.
// On failure it writes the error response and returns ok=false.
func (h *ResumeHandler) readUpload(c *gin.Context, field string) (model.Document, bool) {
	_, header, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a resume file first."})
		return model.Document{}, false
	}
	return h.readHeader(c, header)
}

func (h *ResumeHandler) readHeader(c *gin.Context, header *multipart.FileHeader) (model.Document, bool) {
	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "File too large. Maximum size is " + strconv.FormatInt(h.maxUploadBytes/(1024*1024), 10) + "MB.",
		})
		return model.Document{}, false
	}

	file, err := header.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file."})
		return model.Document{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file."})
		return model.Document{}, false
	}

	doc := model.Document{Filename: header.Filename, Data: data}
	if err := document.Validate(doc, h.maxUploadBytes); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": capitalize(err.Error()) + "."})
		return model.Document{}, false
	}
	return doc, true
}

// record writes the activity entry when history is enabled. Failures
// are logged and never fail the user's operation.
func (h *ResumeHandler) record(c *gin.Context, entry *model.HistoryEntry) {
	if h.history == nil {
		return
	}
	if err := h.history.Record(c.Request.Context(), entry); err != nil {
		log.Warn().Err(err).Str("kind", entry.Kind).Msg("Failed to record operation history")
	}
}

// upstreamErrorText surfaces the service's own sentence when it sent
// one; transport failures and malformed bodies reduce to a generic
// message while the full chain goes to the log.
func upstreamErrorText(err error) string {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return "The matching service is unavailable. Please try again."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
