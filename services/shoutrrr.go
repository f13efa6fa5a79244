package services

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

type shoutrrrSender interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrDispatcher mirrors notifications to chat or webhook services
// (for example a family Telegram group) configured as shoutrrr URLs.
type ShoutrrrDispatcher struct {
	sender shoutrrrSender
}

func NewShoutrrrDispatcher(urls []string, timeout time.Duration) (*ShoutrrrDispatcher, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	return &ShoutrrrDispatcher{sender: sender}, nil
}

var _ shoutrrrSender = (*router.ServiceRouter)(nil)

func (d *ShoutrrrDispatcher) Dispatch(_ context.Context, n Notification) error {
	params := stypes.Params{}
	if n.Title != "" {
		params.SetTitle(n.Title)
	}
	return errors.Join(d.sender.Send(n.Body, &params)...)
}
