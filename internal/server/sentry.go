package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// InitSentry initializes error reporting. An empty dsn leaves it disabled,
// and every capture becomes a no-op.
func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		Tags: map[string]string{
			"service": "publogs",
		},
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrubEvent(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	return nil
}

// FlushSentry waits for buffered events to be sent.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// scrubEvent drops client addresses and headers from an event. Reports are
// about the archive, not about who asked for it.
func scrubEvent(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	event.User = sentry.User{}
	if event.Request != nil {
		event.Request.Headers = nil
		event.Request.Cookies = ""
		event.Request.Env = nil
	}
	return event
}

// captureError reports err and returns the report id shown to the client.
func captureError(r *http.Request, err error, message string) string {
	reportID := uuid.NewString()

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("report_id", reportID)
		scope.SetTag("request_id", middleware.GetReqID(r.Context()))
		scope.SetTag("path", r.URL.Path)
		scope.SetTag("operation", message)
		hub.CaptureException(err)
	})
	return reportID
}
