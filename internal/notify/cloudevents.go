package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-audit/internal/pipeline"
)

// EventTypeCompleted is the CloudEvents type of a completion notification.
const EventTypeCompleted = "com.creditaudit.analysis.completed"

// CloudEventsNotifier posts completions to an HTTP sink as binary-mode CloudEvents.
type CloudEventsNotifier struct {
	client cloudevents.Client
	target string
	source string
	logger *slog.Logger
	now    func() time.Time
}

func NewCloudEventsNotifier(target, source string, logger *slog.Logger) (*CloudEventsNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if source == "" {
		source = "credit-audit"
	}
	client, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, fmt.Errorf("create cloudevents client: %w", err)
	}
	return &CloudEventsNotifier{client: client, target: target, source: source, logger: logger, now: time.Now}, nil
}

func (n *CloudEventsNotifier) AnalysisCompleted(ctx context.Context, c pipeline.Completion) error {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetType(EventTypeCompleted)
	e.SetSource(n.source)
	e.SetSubject(c.ReportID.String())
	e.SetTime(n.now().UTC())
	if err := e.SetData(cloudevents.ApplicationJSON, c); err != nil {
		return fmt.Errorf("encode completion: %w", err)
	}

	res := n.client.Send(cloudevents.ContextWithTarget(ctx, n.target), e)
	if !cloudevents.IsACK(res) {
		n.logger.Warn("completion event not delivered", "report_id", c.ReportID, "target", n.target, "result", res)
		return fmt.Errorf("send completion event: %w", res)
	}
	n.logger.Debug("completion event sent", "report_id", c.ReportID, "event_id", e.ID())
	return nil
}
