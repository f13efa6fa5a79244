package services

import (
	"context"
	"testing"

	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	messages []string
	titles   []string
	errs     []error
}

func (f *fakeSender) Send(message string, params *stypes.Params) []error {
	f.messages = append(f.messages, message)
	if params != nil {
		f.titles = append(f.titles, (*params)["title"])
	}
	return f.errs
}

func TestShoutrrrDispatcher(t *testing.T) {
	sender := &fakeSender{}
	d := &ShoutrrrDispatcher{sender: sender}

	require.NoError(t, d.Dispatch(context.Background(), Notification{Title: "25 foods tried! 🎉", Body: "Well done"}))
	assert.Equal(t, []string{"Well done"}, sender.messages)
	assert.Equal(t, []string{"25 foods tried! 🎉"}, sender.titles)

	sender.errs = []error{nil, errBoom}
	assert.ErrorIs(t, d.Dispatch(context.Background(), Notification{Body: "x"}), errBoom)
}

func TestNewShoutrrrDispatcher_RequiresURL(t *testing.T) {
	_, err := NewShoutrrrDispatcher(nil, 0)
	require.Error(t, err)
}

func TestFanoutDispatcher(t *testing.T) {
	ok := &recordingDispatcher{}
	failing := &recordingDispatcher{err: errBoom}
	fan := FanoutDispatcher{failing, ok}

	err := fan.Dispatch(context.Background(), Notification{Title: "hi"})
	require.ErrorIs(t, err, errBoom)
	assert.Len(t, ok.all(), 1, "later dispatchers still run")
	assert.Len(t, failing.all(), 1)
}
