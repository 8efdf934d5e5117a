package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sahayak/sahayak-sync/internal/collaborators"
	"github.com/sahayak/sahayak-sync/internal/domain/record"
	recordMocks "github.com/sahayak/sahayak-sync/internal/domain/record/mocks"
	domainSync "github.com/sahayak/sahayak-sync/internal/domain/sync"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
)

type fakeEnqueuer struct {
	calls   int
	localID string
	last    domainSync.WorkflowSubmissionPayload
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, itemType domainSync.ItemType, payload json.RawMessage) (string, error) {
	f.calls++
	if itemType != domainSync.TypeWorkflowSubmission {
		panic("unexpected item type " + string(itemType))
	}
	if err := json.Unmarshal(payload, &f.last); err != nil {
		panic(err)
	}
	return f.localID, nil
}

func newTestService(t *testing.T) (*Service, *fakeEnqueuer, *recordMocks.MockRepository) {
	t.Helper()
	queue := &fakeEnqueuer{localID: "local-1"}
	records := &recordMocks.MockRepository{}
	svc := NewService(workflow.BuiltinCatalog(), queue, records, &collaborators.StubExtractor{}, zerolog.Nop())
	return svc, queue, records
}

func TestStartRejectsSecondSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Start("aadhaar-application")
	require.NoError(t, err)

	_, err = svc.Start("pan-application")
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestStartUnknownWorkflow(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Start("driving-license")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestCompletionHandsOffToQueueOnce(t *testing.T) {
	svc, queue, records := newTestService(t)
	ctx := context.Background()

	var created *record.WorkflowRecord
	records.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*record.WorkflowRecord)
	}).Return(nil)

	_, err := svc.Start("aadhaar-application")
	require.NoError(t, err)

	// welcome -> ask_name
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RecordAnswer("ask_name", "John Doe"))
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RecordAnswer("ask_age", "30"))
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.ScanDocument(ctx, []byte("image-bytes")))
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	_, err = svc.Advance(ctx)
	require.NoError(t, err)

	completion, err := svc.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, completion)

	assert.Equal(t, 1, queue.calls)
	assert.Equal(t, "aadhaar-application", queue.last.WorkflowID)
	assert.Equal(t, "John Doe", queue.last.WorkflowData["ask_name"])

	require.NotNil(t, created)
	assert.Equal(t, "local-1", created.LocalID)
	assert.Equal(t, record.StatusPending, created.Status)
	require.NotNil(t, created.CompletedAt)

	// the slot is free again
	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Start("pan-application")
	assert.NoError(t, err)
}

// walkToSubmit answers every step of the aadhaar workflow up to the
// final submit step.
func walkToSubmit(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Start("aadhaar-application")
	require.NoError(t, err)
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RecordAnswer("ask_name", "John Doe"))
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RecordAnswer("ask_age", "30"))
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.ScanDocument(ctx, []byte("image-bytes")))
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
	_, err = svc.Advance(ctx)
	require.NoError(t, err)
}

func TestHandoffFailureRetainsCompletion(t *testing.T) {
	svc, queue, records := newTestService(t)
	ctx := context.Background()

	records.On("Create", ctx, mock.Anything).Return(assert.AnError).Once()
	records.On("Create", ctx, mock.Anything).Return(nil).Once()

	walkToSubmit(t, svc)
	completion, err := svc.Advance(ctx)
	require.Error(t, err)
	require.Nil(t, completion)

	// the finished form is retained; the slot stays occupied
	_, err = svc.Start("pan-application")
	assert.ErrorIs(t, err, ErrSessionActive)

	// the next advance retries the hand-off without enqueueing twice
	completion, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, completion)
	assert.Equal(t, "aadhaar-application", completion.WorkflowType)
	assert.Equal(t, "John Doe", completion.Data["ask_name"])
	assert.Equal(t, 1, queue.calls)

	_, err = svc.Start("pan-application")
	assert.NoError(t, err)
}

func TestAbandonDiscardsStuckHandoff(t *testing.T) {
	svc, _, records := newTestService(t)
	ctx := context.Background()

	records.On("Create", ctx, mock.Anything).Return(assert.AnError)

	walkToSubmit(t, svc)
	_, err := svc.Advance(ctx)
	require.Error(t, err)

	require.NoError(t, svc.Abandon())
	_, err = svc.Start("pan-application")
	assert.NoError(t, err)
}

func TestScanDocumentRequiresOCRStep(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start("aadhaar-application")
	require.NoError(t, err)

	err = svc.ScanDocument(ctx, []byte("image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an ocr step")
}

func TestAbandonFreesSlotWithoutHandoff(t *testing.T) {
	svc, queue, records := newTestService(t)

	_, err := svc.Start("aadhaar-application")
	require.NoError(t, err)
	require.NoError(t, svc.Retreat())

	require.NoError(t, svc.Abandon())
	assert.Equal(t, 0, queue.calls)
	records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	assert.ErrorIs(t, svc.Abandon(), ErrNoSession)
	_, err = svc.Start("passport-application")
	assert.NoError(t, err)
}
