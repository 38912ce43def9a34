package admin

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct{ logouts atomic.Int32 }

func (f *fakeSession) Snapshot() auth.Session {
	return auth.Session{User: &api.User{ID: "1", Role: api.RoleAdmin}, Token: "tok"}
}
func (f *fakeSession) Logout() { f.logouts.Add(1) }

type fakeStats struct {
	calls atomic.Int32
	err   error
}

func (f *fakeStats) Stats(ctx context.Context, token string) (*api.Stats, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &api.Stats{
		TotalScreenings:  42,
		RiskDistribution: map[string]int{"Low": 20, "Moderate": 12, "High": 10},
		AgeDistribution:  map[string]int{"18-30": 10, "31-45": 15, "46-60": 12, "61+": 5},
		RecentPredictions: []api.RecentPrediction{
			{Age: 34, Gender: api.GenderFemale, RiskLevel: api.RiskHigh, Probability: 78.5, Timestamp: "2025-03-01T09:30:00"},
		},
	}, nil
}

func TestInit_FirstRefreshRenders(t *testing.T) {
	loader := &fakeStats{}
	s := New(&fakeSession{}, loader, time.Hour)
	cmd := s.Init()
	defer s.Close()

	_, next := s.Update(cmd())
	require.NotNil(t, next, "screen should keep listening")
	require.NotNil(t, s.stats)

	view := s.View(120, 60)
	assert.Contains(t, view, "42")
	assert.Contains(t, view, "RISK DISTRIBUTION")
	assert.Contains(t, view, "61+")
	assert.Contains(t, view, "78.5%")
}

func TestRefreshRepeats(t *testing.T) {
	loader := &fakeStats{}
	s := New(&fakeSession{}, loader, 5*time.Millisecond)
	cmd := s.Init()
	defer s.Close()

	for i := 0; i < 3; i++ {
		msg := cmd()
		require.NotNil(t, msg)
		_, cmd = s.Update(msg)
	}
	assert.GreaterOrEqual(t, loader.calls.Load(), int32(3))
}

func TestClose_StopsPollingAndListener(t *testing.T) {
	loader := &fakeStats{}
	s := New(&fakeSession{}, loader, time.Millisecond)
	cmd := s.Init()
	s.Update(cmd())
	listen := s.listen()

	s.Close()
	s.Close()

	calls := loader.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, loader.calls.Load(), "stats fetched after Close")
	assert.Nil(t, listen(), "listener should stop once the loop exits")
}

func TestUnauthorizedSignsOut(t *testing.T) {
	sess := &fakeSession{}
	s := New(sess, &fakeStats{err: &api.ErrUnauthorized{Status: 401}}, time.Hour)
	cmd := s.Init()
	defer s.Close()

	_, next := s.Update(cmd())

	assert.Nil(t, next)
	assert.Equal(t, int32(1), sess.logouts.Load())
}

func TestForbiddenShowsMessage(t *testing.T) {
	s := New(&fakeSession{}, &fakeStats{err: &api.ErrAPI{Status: 403, Message: "Admin access required"}}, time.Hour)
	cmd := s.Init()
	defer s.Close()

	s.Update(cmd())

	assert.Equal(t, "Admin access required", s.errMsg)
	assert.Contains(t, s.View(100, 40), "Admin access required")
}

func TestMessageFromOtherInstanceIgnored(t *testing.T) {
	s := New(&fakeSession{}, &fakeStats{}, time.Hour)
	other := New(&fakeSession{}, &fakeStats{}, time.Hour)

	_, cmd := s.Update(statsMsg{owner: other, stats: &api.Stats{}})
	assert.Nil(t, cmd)
	assert.Nil(t, s.stats)
}
