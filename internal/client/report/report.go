// Package report sends moderation reports about shared dreams to a
// chat webhook.
package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/netx"
)

// Reporter identifies the user filing a report.
type Reporter struct {
	UserID   string
	Username string
}

// DreamReport is one report about a dream document.
type DreamReport struct {
	Reporter Reporter
	DreamID  string
	Reason   string
}

// payload is the webhook message body.
type payload struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

func (r DreamReport) payload() payload {
	var b strings.Builder
	b.WriteString("**Report type:** Dream \n\n")
	fmt.Fprintf(&b, "**Report reason:**\n%s \n\n", r.Reason)
	fmt.Fprintf(&b, "**Dream UUID:** %s\n", r.DreamID)
	return payload{
		Username: fmt.Sprintf("%s (%s)", r.Reporter.Username, r.Reporter.UserID),
		Content:  b.String(),
	}
}

// Sender posts reports to webhookURL. The webhook answers 204 on success.
type Sender struct {
	webhookURL string
	client     *http.Client
	logger     logging.Logger
}

func NewSender(webhookURL string, client *http.Client, logger logging.Logger) *Sender {
	return &Sender{webhookURL: webhookURL, client: client, logger: logger.With("module", "report")}
}

// Enabled reports whether a webhook is configured.
func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}

// SendDreamReport delivers r. Without a webhook it only logs the report.
// Any failure is logged and returned wrapped in common.ErrReportRejected.
func (s *Sender) SendDreamReport(ctx context.Context, r DreamReport) error {
	if r.Reporter.UserID == "" {
		return common.ErrNotSignedIn
	}
	if !s.Enabled() {
		s.logger.Warn(ctx, "webhook not configured, report dropped", "dream", r.DreamID, "reporter", r.Reporter.UserID)
		return nil
	}

	err := netx.PostJSON(ctx, s.client, s.webhookURL, r.payload(), http.StatusNoContent)
	if err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) {
			s.logger.Error(ctx, "report rejected", "status", se.Code, "dream", r.DreamID)
		} else {
			s.logger.Error(ctx, "report delivery failed", "error", err, "dream", r.DreamID)
		}
		return fmt.Errorf("%w: %w", common.ErrReportRejected, err)
	}
	s.logger.Info(ctx, "report submitted", "dream", r.DreamID)
	return nil
}
