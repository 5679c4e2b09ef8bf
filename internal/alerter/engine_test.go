package alerter

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismanotify/prismanotify/internal/types"
)

type sent struct {
	id     string
	policy string
}

type fakeSender struct {
	fail map[string]error
	sent []sent
}

func (f *fakeSender) SendAlert(_ context.Context, alert types.Alert, policyName string) error {
	f.sent = append(f.sent, sent{id: alert.ID, policy: policyName})
	return f.fail[alert.ID]
}

var policies = types.NewPolicyNames([]types.Policy{
	{PolicyID: "pol-1", Name: "Public bucket"},
	{PolicyID: "pol-2", Name: "Open security group"},
})

func testAlerts() []types.Alert {
	return []types.Alert{
		{ID: "a", PolicyID: "pol-1"},
		{ID: "b", PolicyID: "pol-unknown"},
		{ID: "c", PolicyID: "pol-2"},
	}
}

func TestProcess_ResolvesPolicyNames(t *testing.T) {
	sender := &fakeSender{}
	e := NewEngine(sender, policies, zerolog.Nop())

	report, err := e.Process(context.Background(), testAlerts())

	require.NoError(t, err)
	assert.Equal(t, []sent{
		{id: "a", policy: "Public bucket"},
		{id: "b", policy: "pol-unknown"},
		{id: "c", policy: "Open security group"},
	}, sender.sent)
	assert.Equal(t, []string{"a", "b", "c"}, report.Notified)
	assert.Empty(t, report.Failed)
}

func TestProcess_FailuresAreRecorded(t *testing.T) {
	sender := &fakeSender{fail: map[string]error{"b": errors.New("no display")}}
	e := NewEngine(sender, policies, zerolog.Nop())

	report, err := e.Process(context.Background(), testAlerts())

	require.NoError(t, err)
	assert.Len(t, sender.sent, 3)
	assert.Equal(t, []string{"a", "c"}, report.Notified)
	assert.Equal(t, []string{"b"}, report.Failed)
}

func TestProcess_FailFast(t *testing.T) {
	errNoDisplay := errors.New("no display")
	sender := &fakeSender{fail: map[string]error{"b": errNoDisplay}}
	e := NewEngine(sender, policies, zerolog.Nop(), WithFailFast(true))

	report, err := e.Process(context.Background(), testAlerts())

	require.ErrorIs(t, err, errNoDisplay)
	assert.Contains(t, err.Error(), "notifying alert b")
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"a"}, report.Notified)
	assert.Equal(t, []string{"b"}, report.Failed)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &fakeSender{}

	_, err := NewEngine(sender, policies, zerolog.Nop()).Process(ctx, testAlerts())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestProcess_NoAlerts(t *testing.T) {
	report, err := NewEngine(&fakeSender{}, nil, zerolog.Nop()).Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Notified)
	assert.Empty(t, report.Failed)
}
