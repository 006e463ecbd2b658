package service

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

// ChangeListener is invoked with the recomputed state of a changed project
type ChangeListener func(projectID string, state *workflow.State)

type subscriber struct {
	id       ulid.ULID
	listener ChangeListener
}

// ChangeNotifier fans recomputed workflow states out to in-process listeners.
// Delivery is synchronous, in subscription order, on the announcing goroutine.
type ChangeNotifier struct {
	states  WorkflowStateProvider
	logger  app.Logger
	metrics output.CacheMetrics

	mu          sync.Mutex
	entropy     io.Reader
	subscribers []subscriber
}

// NotifierOption customizes a ChangeNotifier
type NotifierOption func(*ChangeNotifier)

// WithNotifierLogger sets the logger used for listener failures
func WithNotifierLogger(logger app.Logger) NotifierOption {
	return func(n *ChangeNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithNotifierMetrics sets the sink counting listener failures
func WithNotifierMetrics(metrics output.CacheMetrics) NotifierOption {
	return func(n *ChangeNotifier) {
		if metrics != nil {
			n.metrics = metrics
		}
	}
}

// NewChangeNotifier creates a notifier that recomputes through states
func NewChangeNotifier(states WorkflowStateProvider, opts ...NotifierOption) *ChangeNotifier {
	n := &ChangeNotifier{
		states:  states,
		logger:  app.GetLogger(),
		metrics: output.NopCacheMetrics{},
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscription is the handle returned by Subscribe
type Subscription struct {
	id       ulid.ULID
	notifier *ChangeNotifier
}

// ID returns the unique identifier of the subscription
func (s *Subscription) ID() ulid.ULID {
	return s.id
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.remove(s.id)
}

// Subscribe registers listener and returns its handle
func (n *ChangeNotifier) Subscribe(listener ChangeListener) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), n.entropy)
	n.subscribers = append(n.subscribers, subscriber{id: id, listener: listener})
	return &Subscription{id: id, notifier: n}
}

// SubscriberCount returns the number of registered listeners
func (n *ChangeNotifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers)
}

func (n *ChangeNotifier) remove(id ulid.ULID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, sub := range n.subscribers {
		if sub.id == id {
			n.subscribers = append(n.subscribers[:i:i], n.subscribers[i+1:]...)
			return
		}
	}
}

// AnnounceChange atomically replaces the cached state of projectID with one derived from marker and
// delivers it to every listener. The recomputed state is returned.
func (n *ChangeNotifier) AnnounceChange(projectID string, marker *workflow.Marker) *workflow.State {
	if marker != nil && marker.ProjectID != projectID {
		if marker.ProjectID != "" {
			n.logger.Warn("announce for project %s carries marker of project %s; using %s", projectID, marker.ProjectID, projectID)
		}
		adjusted := *marker
		adjusted.ProjectID = projectID
		marker = &adjusted
	}

	state := n.states.Refresh(projectID, marker)

	n.mu.Lock()
	snapshot := make([]subscriber, len(n.subscribers))
	copy(snapshot, n.subscribers)
	n.mu.Unlock()

	for _, sub := range snapshot {
		n.deliver(sub, projectID, state)
	}
	return state
}

// deliver runs one listener, containing any panic it raises
func (n *ChangeNotifier) deliver(sub subscriber, projectID string, state *workflow.State) {
	defer func() {
		if r := recover(); r != nil {
			n.metrics.SubscriberFailed()
			n.logger.Error("change listener %s failed for project %s: %v", sub.id, projectID, r)
		}
	}()
	sub.listener(projectID, state)
}
