package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dev-tams/sweepkit/internal/config"
)

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

// Event is the run-summary payload shared by all notifier implementations.
type Event struct {
	Bucket    string `json:"bucket"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	DryRun    bool   `json:"dry_run"`
	Listed    int    `json:"listed"`
	Matched   int    `json:"matched"`
	Processed int    `json:"processed"`
	Failures  int    `json:"failures"`
	Duration  string `json:"duration"`
	Error     string `json:"error,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type route struct {
	onSuccess bool
	onFailure bool
	notifier  Notifier
}

// Dispatcher fans an event out to every configured notifier whose on-list
// includes the event status. Partial runs count as failures for routing.
type Dispatcher struct {
	routes []route
}

func NewDispatcher(cfgs []config.NotificationConfig) (*Dispatcher, error) {
	routes := make([]route, 0, len(cfgs))
	for i, n := range cfgs {
		onSuccess, onFailure, err := parseOn(n.On)
		if err != nil {
			return nil, fmt.Errorf("notifications[%d]: %w", i, err)
		}

		var nf Notifier
		switch strings.ToLower(strings.TrimSpace(n.Type)) {
		case "webhook":
			nf, err = NewWebhook(n.Config.URL, n.Config.Headers)
		case "email":
			nf, err = NewEmail(n.Config.SMTPHost, n.Config.SMTPPort, n.Config.From, n.Config.To, n.Config.Username, n.Config.Password)
		default:
			err = fmt.Errorf("unknown type %q", n.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("notifications[%d]: %w", i, err)
		}

		routes = append(routes, route{onSuccess: onSuccess, onFailure: onFailure, notifier: nf})
	}
	return &Dispatcher{routes: routes}, nil
}

func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	failure := event.Status != StatusSuccess

	var errs []error
	for _, r := range d.routes {
		if failure && !r.onFailure {
			continue
		}
		if !failure && !r.onSuccess {
			continue
		}
		if err := r.notifier.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func parseOn(on []string) (onSuccess, onFailure bool, err error) {
	if len(on) == 0 {
		return true, true, nil
	}
	for _, v := range on {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case StatusSuccess:
			onSuccess = true
		case StatusFailure:
			onFailure = true
		default:
			return false, false, fmt.Errorf("invalid on value %q (want success or failure)", v)
		}
	}
	return onSuccess, onFailure, nil
}
