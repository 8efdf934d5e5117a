package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appSubmission "github.com/sahayak/sahayak-sync/internal/application/submission"
	appTracking "github.com/sahayak/sahayak-sync/internal/application/tracking"
	profileMocks "github.com/sahayak/sahayak-sync/internal/domain/profile/mocks"
	"github.com/sahayak/sahayak-sync/internal/domain/submission"
	submissionMocks "github.com/sahayak/sahayak-sync/internal/domain/submission/mocks"
	"github.com/sahayak/sahayak-sync/internal/domain/sync"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
)

type serverFixture struct {
	repo   *submissionMocks.MockRepository
	users  *profileMocks.MockUserRepository
	router http.Handler
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	f := &serverFixture{
		repo:  &submissionMocks.MockRepository{},
		users: &profileMocks.MockUserRepository{},
	}
	submissionSvc := appSubmission.NewService(f.repo, f.users, zerolog.Nop())
	trackingSvc := appTracking.NewService(f.repo, zerolog.Nop())
	f.router = NewServer(submissionSvc, trackingSvc, workflow.BuiltinCatalog(), zerolog.Nop()).Router()
	return f
}

func (f *serverFixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSyncEndpoint(t *testing.T) {
	f := newServerFixture(t)

	f.repo.On("GetByLocalID", mock.Anything, "item-1").Return(nil, submission.ErrNotFound)
	f.repo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*submission.Record).ID = 42
	}).Return(nil)

	payload, _ := json.Marshal(sync.WorkflowSubmissionPayload{
		WorkflowID:   "pan-application",
		WorkflowData: map[string]string{"ask_name": "John Doe"},
	})
	body, _ := json.Marshal(sync.BatchRequest{
		DeviceID: "device-1",
		Items: []sync.BatchItem{
			{LocalID: "item-1", Type: sync.TypeWorkflowSubmission, Payload: payload, Timestamp: time.Now().UTC()},
		},
	})

	rec := f.do(t, http.MethodPost, "/v1/sync", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sync.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Processed)
	assert.Equal(t, 1, resp.Successful)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "item-1", resp.Results[0].LocalID)
	assert.Equal(t, "42", resp.Results[0].ServerID)
	assert.True(t, strings.HasPrefix(resp.Results[0].ReferenceNumber, "REF"))
	assert.False(t, resp.SyncTime.IsZero())
}

func TestSyncEndpointRejectsMissingItems(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/sync", []byte(`{"deviceId":"device-1"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_SYNC_DATA")
}

func TestSyncEndpointRejectsMalformedBody(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/sync", []byte(`not json`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSyncFailures(t *testing.T) {
	f := newServerFixture(t)
	f.repo.On("ListFailures", mock.Anything, "device-1", 5).Return([]*submission.Failure{
		{LocalID: "bad", ItemType: sync.TypeProfileUpdate, Reason: "user not found"},
	}, nil)

	rec := f.do(t, http.MethodGet, "/v1/sync/failures?deviceId=device-1&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Failures []submission.Failure `json:"failures"`
		Count    int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "bad", resp.Failures[0].LocalID)
}

func TestListSyncFailuresRequiresDeviceID(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodGet, "/v1/sync/failures", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "deviceId is required")
}

func TestListWorkflows(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/workflows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []workflowSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	rec = f.do(t, http.MethodGet, "/v1/workflows?category=identity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var identity []workflowSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
	require.Len(t, identity, 1)
	assert.Equal(t, "aadhaar-application", identity[0].ID)
}

func TestGetWorkflow(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/workflows/pan-application", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var def workflow.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "pan-application", def.ID)
	assert.NotEmpty(t, def.Steps)

	rec = f.do(t, http.MethodGet, "/v1/workflows/driving-license", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "WORKFLOW_NOT_FOUND")
}

func TestTrackWorkflow(t *testing.T) {
	f := newServerFixture(t)

	f.repo.On("GetByReference", mock.Anything, "REF123456ABC").Return(&submission.Record{
		ID:              1,
		WorkflowType:    "aadhaar-application",
		Status:          submission.StatusSubmitted,
		ReferenceNumber: "REF123456ABC",
		SubmittedAt:     time.Now().UTC(),
	}, nil)
	f.repo.On("GetByReference", mock.Anything, "REF000000XXX").Return(nil, submission.ErrNotFound)

	rec := f.do(t, http.MethodGet, "/v1/workflows/track/REF123456ABC", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info appTracking.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 25, info.Progress)
	assert.Equal(t, "90 days", info.ProcessingTime)

	rec = f.do(t, http.MethodGet, "/v1/workflows/track/REF000000XXX", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
