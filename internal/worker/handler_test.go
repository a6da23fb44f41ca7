package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"session-service/internal/events"
	"session-service/internal/mailer"
	"session-service/internal/model"
	"session-service/internal/worker"

	"github.com/google/uuid"
	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type fakePusher struct {
	pushed []*apns2.Notification
}

func (p *fakePusher) Push(n *apns2.Notification) (*apns2.Response, error) {
	p.pushed = append(p.pushed, n)
	return &apns2.Response{StatusCode: apns2.StatusSent, ApnsID: "apns-1"}, nil
}

type fakeTokens map[string][]string

func (f fakeTokens) GetDeviceTokens(_ context.Context, userID string) ([]string, error) {
	return f[userID], nil
}

type memoryDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *memoryDeduper) FirstDelivery(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func bookedEvent(t *testing.T, coachID *string) []byte {
	t.Helper()
	dateStr := "2026-02-01"
	s := model.Session{
		ID:          uuid.New(),
		DateStr:     &dateStr,
		Time:        "10:00",
		Sport:       "tennis",
		State:       "RI",
		City:        "Providence",
		CoachName:   "Alex",
		CoachEmail:  "alex@example.com",
		CoachUserID: coachID,
	}
	s.ApplyReservation(model.PlayerDetails{PlayerName: "Sam", PlayerEmail: "sam@example.com", PlayerAge: 16})

	b, err := json.Marshal(events.SessionEvent{EventID: uuid.New(), EventType: events.SubjectSessionBooked, Session: s})
	require.NoError(t, err)
	return b
}

func TestHandleSessionBooked_EmailsAndPushesCoach(t *testing.T) {
	coachID := "coach-1"
	sender := &fakeSender{}
	pusher := &fakePusher{}
	w := worker.New(sender, pusher, fakeTokens{"coach-1": {"dev-a", "dev-b"}}, nil, "com.example.app")

	require.NoError(t, w.HandleSessionBooked(context.Background(), bookedEvent(t, &coachID)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "alex@example.com", sender.sent[0].To)
	assert.Equal(t, "New booking for tennis (Providence, RI)", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "Name: Sam")

	require.Len(t, pusher.pushed, 2)
	assert.Equal(t, "com.example.app", pusher.pushed[0].Topic)
	assert.Contains(t, string(pusher.pushed[0].Payload.([]byte)), "New booking for tennis")
}

func TestHandleSessionBooked_EmailFailureStillPushes(t *testing.T) {
	coachID := "coach-1"
	sender := &fakeSender{err: errors.New("smtp down")}
	pusher := &fakePusher{}
	w := worker.New(sender, pusher, fakeTokens{"coach-1": {"dev-a"}}, nil, "topic")

	require.NoError(t, w.HandleSessionBooked(context.Background(), bookedEvent(t, &coachID)))
	assert.Len(t, pusher.pushed, 1)
}

func TestHandleSessionBooked_SkipsDuplicates(t *testing.T) {
	sender := &fakeSender{}
	w := worker.New(sender, nil, fakeTokens{}, &memoryDeduper{seen: map[string]bool{}}, "topic")

	payload := bookedEvent(t, nil)
	require.NoError(t, w.HandleSessionBooked(context.Background(), payload))
	require.NoError(t, w.HandleSessionBooked(context.Background(), payload))

	assert.Len(t, sender.sent, 1)
}

func TestHandleSessionBooked_LegacyCoachWithoutUserID(t *testing.T) {
	sender := &fakeSender{}
	pusher := &fakePusher{}
	w := worker.New(sender, pusher, fakeTokens{}, nil, "topic")

	require.NoError(t, w.HandleSessionBooked(context.Background(), bookedEvent(t, nil)))
	assert.Len(t, sender.sent, 1)
	assert.Empty(t, pusher.pushed)
}

func TestHandleSessionBooked_RejectsGarbage(t *testing.T) {
	w := worker.New(&fakeSender{}, nil, fakeTokens{}, nil, "topic")
	require.Error(t, w.HandleSessionBooked(context.Background(), []byte("{not json")))
}
