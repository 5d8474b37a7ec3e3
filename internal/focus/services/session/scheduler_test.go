package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/albibenni/focus/internal/focus/common/clock"
	"github.com/albibenni/focus/internal/focus/domain"
	"github.com/albibenni/focus/internal/focus/repos/catalog"
	"github.com/albibenni/focus/internal/focus/services/editor"
	"github.com/albibenni/focus/internal/focus/services/resolver"
)

const original = "127.0.0.1\tlocalhost\n::1\tlocalhost ip6-localhost\n"

// memFile is an in-memory host file. writeErrs[i] fails the i-th write.
type memFile struct {
	path      string
	content   string
	readErr   error
	writeErrs map[int]error
	writes    []string
	reads     int
}

func (f *memFile) Path() string { return f.path }

func (f *memFile) ReadText() (string, error) {
	f.reads++
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.content, nil
}

func (f *memFile) WriteText(content string) error {
	n := len(f.writes)
	f.writes = append(f.writes, content)
	if err := f.writeErrs[n]; err != nil {
		return err
	}
	f.content = content
	return nil
}

type MockFlusher struct {
	mock.Mock
}

func (m *MockFlusher) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Begin(r domain.Record) (uint64, error) {
	args := m.Called(r)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockJournal) Finish(id uint64, outcome domain.Outcome, at time.Time) error {
	args := m.Called(id, outcome, at)
	return args.Error(0)
}

func (m *MockJournal) Pending() (domain.Record, bool, error) {
	args := m.Called()
	return args.Get(0).(domain.Record), args.Bool(1), args.Error(2)
}

var start = time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	file    *memFile
	flusher *MockFlusher
	clock   *clock.MockClock
	editor  *editor.Editor
	sched   *Scheduler
}

func newFixture(t *testing.T, j Journal) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	f := &fixture{
		file:    &memFile{path: "/etc/hosts", content: original},
		flusher: &MockFlusher{},
		clock:   &clock.MockClock{CurrentTime: start},
		editor:  editor.New(editor.Options{}),
	}
	f.sched = New(Options{
		Resolver: resolver.New(resolver.Options{Catalog: cat}),
		Hosts:    f.file,
		Editor:   f.editor,
		Flusher:  f.flusher,
		Journal:  j,
		Clock:    f.clock,
	})
	return f
}

func TestRun_Scenario(t *testing.T) {
	f := newFixture(t, nil)
	f.flusher.On("Flush", mock.Anything).Return(nil).Twice()

	report, err := f.sched.Run(context.Background(), Request{
		Tokens:   []string{"YOUTUBE", "x"},
		Duration: domain.HoldDuration(5),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StateRestored, report.State)
	assert.Equal(t, []string{"www.youtube.com", "www.x.com"}, report.BlockSet.Hosts())
	assert.Equal(t, []time.Duration{300 * time.Second}, f.clock.Sleeps)
	assert.Equal(t, start, report.StartedAt)
	assert.Equal(t, start.Add(300*time.Second), report.EndedAt)
	assert.NoError(t, report.FlushErr)

	require.Len(t, f.file.writes, 2)
	applied := original + f.editor.Line("www.youtube.com") + "\n" + f.editor.Line("www.x.com") + "\n"
	assert.Equal(t, applied, f.file.writes[0])
	assert.Equal(t, original, f.file.writes[1])
	assert.Equal(t, original, f.file.content)
	assert.Equal(t, 1, f.file.reads)
	f.flusher.AssertExpectations(t)
}

func TestRun_EmptyBlockSetLeavesContent(t *testing.T) {
	f := newFixture(t, nil)
	f.flusher.On("Flush", mock.Anything).Return(nil)

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"nope", "also-nope"}, Duration: time.Minute})
	require.NoError(t, err)

	assert.True(t, report.BlockSet.IsEmpty())
	assert.Equal(t, domain.StateRestored, report.State)
	assert.Equal(t, []string{original, original}, f.file.writes)
}

func TestRun_ZeroDuration(t *testing.T) {
	f := newFixture(t, nil)
	f.flusher.On("Flush", mock.Anything).Return(nil)

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"reddit"}})
	require.NoError(t, err)

	assert.Equal(t, domain.StateRestored, report.State)
	assert.Equal(t, []time.Duration{0}, f.clock.Sleeps)
	assert.Equal(t, report.StartedAt, report.EndedAt)
}

func TestRun_SnapshotFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.file.readErr = fmt.Errorf("%w: permission denied", domain.ErrFileUnavailable)

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"youtube"}, Duration: time.Minute})

	var serr *domain.SessionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.StageSnapshot, serr.Stage)
	assert.False(t, serr.HostFileModified())
	assert.ErrorIs(t, err, domain.ErrFileUnavailable)
	assert.Equal(t, domain.StateFailed, report.State)
	assert.Empty(t, f.file.writes)
	assert.Empty(t, f.clock.Sleeps)
	f.flusher.AssertNotCalled(t, "Flush", mock.Anything)
}

func TestRun_ApplyFailure(t *testing.T) {
	j := &MockJournal{}
	j.On("Pending").Return(domain.Record{}, false, nil)
	j.On("Begin", mock.Anything).Return(uint64(7), nil)

	f := newFixture(t, j)
	f.file.writeErrs = map[int]error{0: fmt.Errorf("%w: disk full", domain.ErrWriteFailure)}

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"youtube"}, Duration: time.Minute})

	var serr *domain.SessionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.StageApply, serr.Stage)
	assert.True(t, serr.HostFileModified())
	assert.ErrorIs(t, err, domain.ErrWriteFailure)
	assert.Equal(t, domain.StateFailed, report.State)
	assert.Len(t, f.file.writes, 1)
	assert.Empty(t, f.clock.Sleeps)
	f.flusher.AssertNotCalled(t, "Flush", mock.Anything)
	j.AssertNotCalled(t, "Finish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_RestoreFailure(t *testing.T) {
	j := &MockJournal{}
	j.On("Pending").Return(domain.Record{}, false, nil)
	j.On("Begin", mock.Anything).Return(uint64(3), nil)

	f := newFixture(t, j)
	f.flusher.On("Flush", mock.Anything).Return(nil).Once()
	f.file.writeErrs = map[int]error{1: fmt.Errorf("%w: read-only", domain.ErrWriteFailure)}

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"youtube"}, Duration: time.Minute})

	var serr *domain.SessionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.StageRestore, serr.Stage)
	assert.Equal(t, domain.StateFailed, report.State)
	assert.Equal(t, []time.Duration{time.Minute}, f.clock.Sleeps)
	assert.NotEqual(t, original, f.file.content)
	f.flusher.AssertExpectations(t)
	j.AssertNotCalled(t, "Finish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_FlushFailuresAreRecorded(t *testing.T) {
	f := newFixture(t, nil)
	f.flusher.On("Flush", mock.Anything).Return(fmt.Errorf("%w: exited with status 1", domain.ErrCacheFlush))

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"netflix"}, Duration: time.Minute})
	require.NoError(t, err)

	assert.Equal(t, domain.StateRestored, report.State)
	require.Error(t, report.FlushErr)
	assert.ErrorIs(t, report.FlushErr, domain.ErrCacheFlush)
	assert.Len(t, multierr.Errors(report.FlushErr), 2)
	assert.Equal(t, original, f.file.content)
}

func TestRun_JournalLifecycle(t *testing.T) {
	j := &MockJournal{}
	j.On("Pending").Return(domain.Record{}, false, nil)
	j.On("Begin", mock.MatchedBy(func(r domain.Record) bool {
		return r.HostsPath == "/etc/hosts" &&
			r.Snapshot == original &&
			assert.ObjectsAreEqual([]string{"www.youtube.com"}, r.Hosts) &&
			r.StartedAt.Equal(start) &&
			r.HoldUntil.Equal(start.Add(5*time.Minute))
	})).Return(uint64(9), nil).Once()
	j.On("Finish", uint64(9), domain.OutcomeRestored, start.Add(5*time.Minute)).Return(nil).Once()

	f := newFixture(t, j)
	f.flusher.On("Flush", mock.Anything).Return(nil)

	_, err := f.sched.Run(context.Background(), Request{Tokens: []string{"youtube"}, Duration: 5 * time.Minute})
	require.NoError(t, err)
	j.AssertExpectations(t)
}

func TestRun_JournalFailuresDoNotStopSession(t *testing.T) {
	j := &MockJournal{}
	j.On("Pending").Return(domain.Record{}, false, errors.New("corrupt"))
	j.On("Begin", mock.Anything).Return(uint64(0), errors.New("disk full"))

	f := newFixture(t, j)
	f.flusher.On("Flush", mock.Anything).Return(nil)

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"youtube"}, Duration: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, domain.StateRestored, report.State)
	j.AssertNotCalled(t, "Finish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_PendingSessionOnlyWarns(t *testing.T) {
	j := &MockJournal{}
	j.On("Pending").Return(domain.Record{ID: 1, HostsPath: "/etc/hosts", StartedAt: start.Add(-time.Hour)}, true, nil)
	j.On("Begin", mock.Anything).Return(uint64(2), nil)
	j.On("Finish", uint64(2), domain.OutcomeRestored, mock.Anything).Return(nil)

	f := newFixture(t, j)
	f.flusher.On("Flush", mock.Anything).Return(nil)

	report, err := f.sched.Run(context.Background(), Request{Tokens: []string{"youtube"}, Duration: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, domain.StateRestored, report.State)
	j.AssertExpectations(t)
}

type failingResolver struct{}

func (failingResolver) Resolve([]string) (domain.BlockSet, error) {
	return domain.BlockSet{}, domain.ErrUnknownPreset
}

func TestRun_ResolverInvariantViolation(t *testing.T) {
	file := &memFile{path: "/etc/hosts", content: original}
	s := New(Options{Resolver: failingResolver{}, Hosts: file, Editor: editor.New(editor.Options{}), Flusher: &MockFlusher{}, Clock: &clock.MockClock{}})

	report, err := s.Run(context.Background(), Request{Tokens: []string{"coding"}})
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)
	assert.Equal(t, domain.StateFailed, report.State)
	assert.Zero(t, file.reads)
}
