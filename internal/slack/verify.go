package slack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/slack-go/slack"
)

const maxBodyBytes = 1 << 20

// ErrUnauthorized is returned when a request does not carry a valid Slack signature.
var ErrUnauthorized = errors.New("invalid slack request signature")

// VerifyRequest checks the signing secret signature of r and returns the parsed slash command.
// The request body is consumed and replaced so that it can be read again.
func VerifyRequest(r *http.Request, secret string) (slack.SlashCommand, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return slack.SlashCommand{}, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return slack.SlashCommand{}, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}

	sv, err := slack.NewSecretsVerifier(r.Header, secret)
	if err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if _, err := sv.Write(body); err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := sv.Ensure(); err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		return slack.SlashCommand{}, fmt.Errorf("failed to parse slash command: %w", err)
	}
	return cmd, nil
}
