package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ingest"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/report"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/store"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/textnorm"
)

// fakeClassifier labels anything containing "free" as spam
type fakeClassifier struct{}

func (c *fakeClassifier) Predict(ctx context.Context, text string) (core.Prediction, error) {
	confidence := 0.97
	if strings.Contains(text, "free") {
		return core.Prediction{Label: core.LabelSpam, Confidence: &confidence, ModelName: "FakeModel"}, nil
	}
	return core.Prediction{Label: core.LabelHam, Confidence: &confidence, ModelName: "FakeModel"}, nil
}

func newTestServer(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()

	logger := zap.NewNop()
	repo := store.NewMemoryStore(logger)
	service := core.NewClassifierService(textnorm.New(logger), &fakeClassifier{}, logger)
	ingestor := ingest.NewIngestor(service, repo, logger)
	reporter := report.NewReporter(repo, logger)

	server := NewServer(service, repo, ingestor, reporter, logger, "127.0.0.1:0", time.Second)
	return server.Routes(), repo
}

func doJSON(t *testing.T, handler http.Handler, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestCreateEmailRequiresUser(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/emails", "", createEmailRequest{Body: "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	detail := map[string]string{}
	decodeBody(t, rec, &detail)
	assert.Equal(t, "authentication required", detail["detail"])
}

func TestCreateEmailRequiresBody(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/emails", "alice", createEmailRequest{Body: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEmailClassifiesAndStores(t *testing.T) {
	handler, repo := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/emails", "alice", createEmailRequest{
		Sender:    "promo@deals.example.com",
		Recipient: "alice@example.com",
		Subject:   "offer",
		Body:      "Claim your FREE prize http://scam.example.com now!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := emailResponse{}
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "alice", resp.Owner)
	assert.Equal(t, core.LabelSpam, resp.Label)
	assert.Equal(t, "claim your free prize now", resp.CleanedText)
	assert.Equal(t, 0.97, resp.Confidence)
	assert.Equal(t, "FakeModel", resp.ModelVersion)
	assert.Equal(t, string(core.SourceManual), resp.Source)

	stored, err := repo.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, core.LabelSpam, stored.Label)
	assert.Equal(t, core.SourceManual, stored.Source)
}

func TestListEmailsFilters(t *testing.T) {
	handler, repo := newTestServer(t)
	ctx := context.Background()

	seed := func(owner, sender, label string) {
		require.NoError(t, repo.Create(ctx, &core.EmailRecord{
			Owner: owner, Sender: sender, RawBody: "body", Label: label,
			Source: core.SourceManual,
		}))
	}
	seed("alice", "promo@deals.example.com", core.LabelSpam)
	seed("alice", "friend@example.com", core.LabelHam)
	seed("bob", "promo@deals.example.com", core.LabelSpam)

	rec := doJSON(t, handler, http.MethodGet, "/emails", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := []emailResponse{}
	decodeBody(t, rec, &all)
	assert.Len(t, all, 2)

	rec = doJSON(t, handler, http.MethodGet, "/emails?label=spam&sender=DEALS", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := []emailResponse{}
	decodeBody(t, rec, &filtered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "promo@deals.example.com", filtered[0].Sender)
}

func TestGetEmailEnforcesOwnership(t *testing.T) {
	handler, repo := newTestServer(t)

	record := &core.EmailRecord{Owner: "alice", RawBody: "body", Label: core.LabelHam, Source: core.SourceManual}
	require.NoError(t, repo.Create(context.Background(), record))

	rec := doJSON(t, handler, http.MethodGet, "/emails/"+record.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/emails/"+record.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/emails/no-such-id", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReclassifyKeepsProvenance(t *testing.T) {
	handler, repo := newTestServer(t)

	confidence := 0.88
	record := &core.EmailRecord{
		Owner: "alice", RawBody: "body", Label: core.LabelSpam,
		Confidence: &confidence, ModelVersion: "FakeModel", Source: core.SourceManual,
	}
	require.NoError(t, repo.Create(context.Background(), record))

	rec := doJSON(t, handler, http.MethodPost, "/emails/"+record.ID+"/reclassify", "alice",
		reclassifyRequest{Label: core.LabelHam})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := repo.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, core.LabelHam, stored.Label)
	require.NotNil(t, stored.Confidence)
	assert.Equal(t, 0.88, *stored.Confidence)
	assert.Equal(t, "FakeModel", stored.ModelVersion)

	rec = doJSON(t, handler, http.MethodPost, "/emails/"+record.ID+"/reclassify", "alice",
		reclassifyRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestBulkUpload(t *testing.T) {
	handler, repo := newTestServer(t)

	csvContent := "from,subject,body\n" +
		"a@example.com,hi,just checking in\n" +
		"b@example.com,offer,free money waiting\n" +
		"c@example.com,blank,\n"
	body, contentType := multipartUpload(t, "file", "emails.csv", csvContent)

	req := httptest.NewRequest(http.MethodPost, "/emails/bulk_upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User", "alice")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	result := struct {
		Created int               `json:"created"`
		IDs     []string          `json:"ids"`
		Errors  []ingest.RowError `json:"errors"`
	}{}
	decodeBody(t, rec, &result)
	assert.Equal(t, 2, result.Created)
	assert.Len(t, result.IDs, 2)
	assert.Empty(t, result.Errors)

	records, err := repo.List(context.Background(), core.ListFilter{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, core.SourceBulk, record.Source)
	}
}

func TestBulkUploadRejectsMissingFile(t *testing.T) {
	handler, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "attachment", "emails.csv", "from,body\n")
	req := httptest.NewRequest(http.MethodPost, "/emails/bulk_upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User", "alice")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	detail := map[string]string{}
	decodeBody(t, rec, &detail)
	assert.Equal(t, "no file uploaded", detail["detail"])
}

func TestBulkUploadRejectsUnparsableCSV(t *testing.T) {
	handler, _ := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "emails.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/emails/bulk_upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User", "alice")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	detail := map[string]string{}
	decodeBody(t, rec, &detail)
	assert.Equal(t, "failed to parse CSV", detail["detail"])
}

func TestReports(t *testing.T) {
	handler, repo := newTestServer(t)
	ctx := context.Background()

	day := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	seed := func(label string) {
		require.NoError(t, repo.Create(ctx, &core.EmailRecord{
			Owner: "alice", RawBody: "body", Label: label,
			Source: core.SourceManual, CreatedAt: day, UpdatedAt: day,
		}))
	}
	seed(core.LabelSpam)
	seed(core.LabelSpam)
	seed(core.LabelHam)

	rec := doJSON(t, handler, http.MethodGet, "/reports/label-distribution", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	distribution := map[string]int{}
	decodeBody(t, rec, &distribution)
	assert.Equal(t, map[string]int{"Spam": 2, "Ham": 1}, distribution)

	rec = doJSON(t, handler, http.MethodGet, "/reports/spam-trend", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trend := map[string]report.DayBuckets{}
	decodeBody(t, rec, &trend)
	assert.Equal(t, report.DayBuckets{Spam: 2, Ham: 1}, trend["2024-04-01"])
}

func TestExportCSV(t *testing.T) {
	handler, repo := newTestServer(t)

	confidence := 0.97
	require.NoError(t, repo.Create(context.Background(), &core.EmailRecord{
		Owner: "alice", Sender: "promo@deals.example.com", Recipient: "alice@example.com",
		Subject: "offer", RawBody: "body", Label: core.LabelSpam,
		Confidence: &confidence, Source: core.SourceManual,
	}))

	rec := doJSON(t, handler, http.MethodGet, "/exports/csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Sender,Recipient,Subject,Label,Confidence", lines[0])
	assert.Equal(t, "promo@deals.example.com,alice@example.com,offer,Spam,0.970", lines[1])
}

func TestConfidenceJSON(t *testing.T) {
	assert.Equal(t, "N/A", confidenceJSON(nil))

	v := 0.98765
	assert.Equal(t, 0.988, confidenceJSON(&v))
}
