package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/surfsup-climate-api/internal/climate"
)

type stubResolver struct {
	mu     sync.Mutex
	bounds climate.Bounds
	err    error
	calls  int
}

func (s *stubResolver) Bounds(context.Context) (climate.Bounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.bounds, s.err
}

func (s *stubResolver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestProbeRecordsOutcome(t *testing.T) {
	mostRecent := climate.MustParseDate("2017-08-23")
	r := &stubResolver{bounds: climate.Bounds{
		Oldest:      climate.MustParseDate("2010-01-01"),
		MostRecent:  mostRecent,
		WindowStart: mostRecent.AddDays(-climate.WindowDays),
	}}
	p := New(r, time.Minute, nil)

	_, ok := p.Last()
	assert.False(t, ok)

	status := p.Probe(context.Background())
	assert.True(t, status.Healthy)
	require.NotNil(t, status.Bounds)
	assert.Equal(t, "2016-08-23", status.Bounds.WindowStart.String())

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, status, last)
}

func TestProbeEmptyAndFailing(t *testing.T) {
	r := &stubResolver{err: climate.ErrEmptyDataset}
	p := New(r, time.Minute, nil)

	status := p.Probe(context.Background())
	assert.True(t, status.Healthy)
	assert.True(t, status.Empty)
	assert.Nil(t, status.Bounds)

	r.err = &climate.StoreUnavailableError{Op: "date bounds", Err: errors.New("connection refused")}
	status = p.Probe(context.Background())
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Error, "connection refused")
}

func TestStartRunsImmediately(t *testing.T) {
	r := &stubResolver{err: climate.ErrEmptyDataset}
	p := New(r, time.Hour, nil)
	require.NoError(t, p.Start())
	defer p.Stop()

	assert.Eventually(t, func() bool {
		_, ok := p.Last()
		return ok && r.Calls() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
