package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/infra"
)

type processorFunc func(ctx context.Context, raw json.RawMessage) error

func (f processorFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

func newTestDispatcher(q Queue, attempts int) *Dispatcher {
	d := NewDispatcher(q, attempts)
	d.backoff = func(int) time.Duration { return 0 }
	return d
}

func popJob(t *testing.T, q Queue, key string) Job {
	t.Helper()
	_, raw, err := q.Pop(context.Background(), 10*time.Millisecond, key)
	require.NoError(t, err)
	var j Job
	require.NoError(t, json.Unmarshal(raw, &j))
	return j
}

// ── Queue ────────────────────────────────────────────────────────────────────

func TestMemoryQueue_FIFOAndKeyOrder(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	require.NoError(t, q.Push(ctx, "b", []byte("b1")))
	require.NoError(t, q.Push(ctx, "a", []byte("a1")))
	require.NoError(t, q.Push(ctx, "a", []byte("a2")))

	n, _ := q.Len(ctx, "a")
	assert.Equal(t, int64(2), n)

	key, data, err := q.Pop(ctx, time.Millisecond, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", key)
	assert.Equal(t, "a1", string(data))

	_, data, _ = q.Pop(ctx, time.Millisecond, "a", "b")
	assert.Equal(t, "a2", string(data))
	key, _, _ = q.Pop(ctx, time.Millisecond, "a", "b")
	assert.Equal(t, "b", key)

	_, _, err = q.Pop(ctx, time.Millisecond, "a", "b")
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestMemoryQueue_PopWakesOnPush(t *testing.T) {
	q := NewMemoryQueue()
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = q.Push(context.Background(), "k", []byte("x"))
	}()
	_, data, err := q.Pop(context.Background(), 2*time.Second, "k")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestMemoryQueue_PopHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewMemoryQueue().Pop(ctx, time.Second, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

// ── Dispatcher ───────────────────────────────────────────────────────────────

func TestDispatcher_ProcessesRegisteredJob(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 3)

	var got LabelJobPayload
	d.Register(JobTypeLabels, processorFunc(func(_ context.Context, raw json.RawMessage) error {
		return json.Unmarshal(raw, &got)
	}))

	listID := uuid.New()
	id, err := d.EnqueueLabels(ctx, LabelJobPayload{PackingListID: listID, Email: "ops@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	key, raw, err := q.Pop(ctx, 10*time.Millisecond, QueueLabels, QueueEmail)
	require.NoError(t, err)
	d.processJob(ctx, key, raw)

	assert.Equal(t, id, got.JobID)
	assert.Equal(t, listID, got.PackingListID)
	n, _ := DLQLength(ctx, q, QueueLabels)
	assert.Zero(t, n)
}

func TestDispatcher_RetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 3)

	calls := 0
	d.Register(JobTypeEmail, processorFunc(func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("smtp down")
	}))
	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{To: "a@b.c"}))

	key, raw, err := q.Pop(ctx, 10*time.Millisecond, QueueEmail)
	require.NoError(t, err)
	d.processJob(ctx, key, raw)

	assert.Equal(t, 3, calls)
	_, dead, err := q.Pop(ctx, 10*time.Millisecond, DLQPrefix+QueueEmail)
	require.NoError(t, err)
	var e DLQEntry
	require.NoError(t, json.Unmarshal(dead, &e))
	assert.Equal(t, QueueEmail, e.OriginalQueue)
	assert.Equal(t, JobTypeEmail, e.JobType)
	assert.Equal(t, 3, e.Attempts)
	assert.Equal(t, "smtp down", e.Reason)
}

func TestDispatcher_UnknownTypeGoesToDLQ(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 1)
	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{To: "a@b.c"}))

	key, raw, _ := q.Pop(ctx, 10*time.Millisecond, QueueEmail)
	d.processJob(ctx, key, raw)

	n, _ := DLQLength(ctx, q, QueueEmail)
	assert.Equal(t, int64(1), n)
}

func TestDispatcher_RequeueRespectsMaxRedrives(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 1)

	payload := json.RawMessage(`{"to":"a@b.c"}`)
	SendToDLQ(ctx, q, DLQEntry{OriginalQueue: QueueEmail, JobType: JobTypeEmail, Payload: payload, Redrives: 1})
	SendToDLQ(ctx, q, DLQEntry{OriginalQueue: QueueEmail, JobType: JobTypeEmail, Payload: payload, Redrives: MaxRedrives})

	moved, err := d.Requeue(ctx, QueueEmail, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	j := popJob(t, q, QueueEmail)
	assert.Equal(t, JobTypeEmail, j.Type)
	assert.Equal(t, 2, j.Redrives)
	assert.JSONEq(t, string(payload), string(j.Payload))

	n, _ := DLQLength(ctx, q, QueueEmail)
	assert.Equal(t, int64(1), n, "exhausted entry stays dead-lettered")
}

func TestStartWorkerPool_ConsumesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 1)

	var done atomic.Int32
	d.Register(JobTypeEmail, processorFunc(func(context.Context, json.RawMessage) error {
		done.Add(1)
		return nil
	}))
	d.StartWorkerPool(ctx, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{To: "a@b.c"}))
	}
	require.Eventually(t, func() bool { return done.Load() == 5 }, 2*time.Second, 10*time.Millisecond)
}

func TestWithRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, func(int) time.Duration { return 0 }, func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("again")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, time.Second, exponentialBackoff(1))
	assert.Equal(t, 2*time.Second, exponentialBackoff(2))
	assert.Equal(t, 4*time.Second, exponentialBackoff(3))
}

// ── Email ────────────────────────────────────────────────────────────────────

type stubMailer struct {
	mu   sync.Mutex
	err  error
	sent []EmailJobPayload
}

func (m *stubMailer) SendLabels(to, subject, body string, attachments ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, EmailJobPayload{To: to, Subject: subject, Body: body, Attachments: attachments})
	return nil
}

func TestEmailWorker_SendsThroughBreaker(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(m, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")))

	raw, _ := json.Marshal(EmailJobPayload{To: "ops@example.com", Subject: "Box labels", Attachments: []string{"/tmp/x.pdf"}})
	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"/tmp/x.pdf"}, m.sent[0].Attachments)
}

func TestEmailWorker_FailureOpensBreaker(t *testing.T) {
	m := &stubMailer{err: errors.New("relay refused")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp", FailureThreshold: 1, OpenTimeout: time.Hour})
	w := NewEmailWorker(m, cb)

	raw, _ := json.Marshal(EmailJobPayload{To: "ops@example.com"})
	assert.Error(t, w.Process(context.Background(), raw))
	assert.Equal(t, infra.CBOpen, cb.State())
	assert.ErrorIs(t, w.Process(context.Background(), raw), infra.ErrCircuitOpen)
}

func TestEmailWorker_SkipsEmptyRecipientAndBadPayload(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(m, nil)
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"to":""}`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`not json`)))
	assert.Empty(t, m.sent)
}

func TestRedriveEmails_SkipsWhenBreakerOpen(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 1)
	SendToDLQ(ctx, q, DLQEntry{OriginalQueue: QueueEmail, JobType: JobTypeEmail, Payload: json.RawMessage(`{}`)})

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	_ = cb.Execute(func() error { return errors.New("down") })
	assert.Zero(t, redriveEmails(ctx, d, cb))

	assert.Equal(t, 1, redriveEmails(ctx, d, nil))
}

// ── Labels ───────────────────────────────────────────────────────────────────

type stubRenderer struct {
	path string
	err  error
}

func (r stubRenderer) RenderLabelFile(_ context.Context, id uuid.UUID, dir string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return dir + "/" + id.String() + ".pdf", nil
}

func TestLabelWorker_RendersAndQueuesEmail(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	d := newTestDispatcher(q, 1)
	store := cache.NewMemoryStore()
	w := NewLabelWorker(stubRenderer{}, d, store, "/srv/labels")

	listID := uuid.New()
	raw, _ := json.Marshal(LabelJobPayload{JobID: "job-1", PackingListID: listID, Email: "ops@example.com"})
	require.NoError(t, w.Process(ctx, raw))

	st, ok, err := LoadJobStatus(ctx, store, "job-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, JobDone, st.Status)
	assert.Equal(t, "/srv/labels/"+listID.String()+".pdf", st.File)

	j := popJob(t, q, QueueEmail)
	var email EmailJobPayload
	require.NoError(t, json.Unmarshal(j.Payload, &email))
	assert.Equal(t, "ops@example.com", email.To)
	assert.Equal(t, []string{st.File}, email.Attachments)
}

func TestLabelWorker_RenderFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	w := NewLabelWorker(stubRenderer{err: errors.New("packing list not found")}, nil, store, t.TempDir())

	raw, _ := json.Marshal(LabelJobPayload{JobID: "job-2", PackingListID: uuid.New()})
	assert.Error(t, w.Process(ctx, raw))

	st, ok, _ := LoadJobStatus(ctx, store, "job-2")
	require.True(t, ok)
	assert.Equal(t, JobFailed, st.Status)
	assert.Contains(t, st.Error, "not found")
}
