package slack

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/slack-go/slack"

	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// Responder delivers delayed replies to a slash command response_url.
type Responder interface {
	Respond(ctx context.Context, responseURL string, msg *slack.Msg) error
}

// RestyResponder posts messages with a resty client.
type RestyResponder struct {
	client *resty.Client
}

// NewResponder wraps client.
func NewResponder(client *resty.Client) *RestyResponder {
	return &RestyResponder{client: client}
}

// Respond posts msg as JSON to responseURL.
func (r *RestyResponder) Respond(ctx context.Context, responseURL string, msg *slack.Msg) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(responseURL)
	if err != nil {
		return fmt.Errorf("post to response_url: %w", err)
	}
	if resp.IsError() {
		return perrors.NewUpstreamError("slack", resp.StatusCode(), fmt.Errorf("%s", resp.String()))
	}
	return nil
}
