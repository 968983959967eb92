package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
)

// blockText concatenates the text objects of every block.
func blockText(msg *slack.Msg) string {
	var sb strings.Builder
	add := func(o *slack.TextBlockObject) {
		if o != nil {
			sb.WriteString(o.Text)
			sb.WriteString("\n")
		}
	}
	for _, b := range msg.Blocks.BlockSet {
		switch b := b.(type) {
		case *slack.HeaderBlock:
			add(b.Text)
		case *slack.SectionBlock:
			add(b.Text)
			for _, f := range b.Fields {
				add(f)
			}
		case *slack.ContextBlock:
			for _, e := range b.ContextElements.Elements {
				if o, ok := e.(*slack.TextBlockObject); ok {
					add(o)
				}
			}
		}
	}
	return sb.String()
}

func TestReportMessage(t *testing.T) {
	a := sampleAnalysis(t)
	msg := ReportMessage(a, 10)

	assert.Equal(t, slack.ResponseTypeInChannel, msg.ResponseType)
	assert.True(t, msg.ReplaceOriginal)

	require.NotEmpty(t, msg.Blocks.BlockSet)
	assert.IsType(t, &slack.HeaderBlock{}, msg.Blocks.BlockSet[0])
	body := blockText(msg)
	assert.Contains(t, body, "<https://github.com/acme/shop/pull/9|PR #9: Poll>")
	assert.Contains(t, body, "Score *75/100* (good)")
	assert.Contains(t, body, "<https://github.com/acme/shop/blob/headsha/src/poll.js#L1|src/poll.js:1>")
	assert.Contains(t, body, "bottlenecks/memory_leak")
	assert.Contains(t, body, "result `"+a.Result.ID+"`")
}

func TestReportMessageLimitsFindings(t *testing.T) {
	a := sampleAnalysis(t)
	a.Result.Bottlenecks.Bottlenecks = append(a.Result.Bottlenecks.Bottlenecks, a.Result.Bottlenecks.Bottlenecks[0], a.Result.Bottlenecks.Bottlenecks[0])

	assert.Contains(t, blockText(ReportMessage(a, 1)), "…and 2 more findings")
}

func TestEscapeAndTruncate(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; c", escape("a <b> & c"))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "x &lt;y&gt;", link("", "x <y>"))
}

func TestErrorMessage(t *testing.T) {
	msg := ErrorMessage("https://github.com/a/b", errors.New("boom <script>"))
	assert.Equal(t, slack.ResponseTypeEphemeral, msg.ResponseType)
	assert.Equal(t, ":x: Could not analyse https://github.com/a/b: boom &lt;script&gt;", msg.Text)
	assert.Equal(t, ":x: oops", ErrorMessage("", errors.New("oops")).Text)
}

func TestRestyResponder(t *testing.T) {
	var got slack.Msg
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Text == "fail" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewResponder(resty.New())
	require.NoError(t, r.Respond(context.Background(), srv.URL, &slack.Msg{Text: "hello"}))
	assert.Equal(t, "hello", got.Text)

	err := r.Respond(context.Background(), srv.URL, &slack.Msg{Text: "fail"})
	var up *perrors.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusNotFound, up.StatusCode)
}
