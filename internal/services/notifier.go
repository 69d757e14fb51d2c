package services

import (
	"log"
	"sync"
	"time"
)

// Severity grades a status notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Notification is the transient state surfaced to a returning submitter.
type Notification struct {
	Visible      bool     `json:"visible"`
	AssessmentID string   `json:"assessment_id,omitempty"`
	Status       string   `json:"status,omitempty"`
	Severity     Severity `json:"severity,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// AssessmentSearcher is the lookup the notifier polls against.
type AssessmentSearcher interface {
	SearchAssessments(email string) ([]*Assessment, error)
}

// Classify maps an assessment status onto a notification severity and
// message. Unknown statuses produce no notification.
func Classify(status string) (Severity, string, bool) {
	switch status {
	case StatusReviewed, StatusCompleted:
		return SeveritySuccess, "Your assessment results are ready", true
	case StatusPending:
		return SeverityInfo, "Your assessment is under review", true
	}
	return "", "", false
}

// LatestAssessment picks the most recently created assessment. On equal
// timestamps the first one seen wins, which keeps the choice deterministic
// for a given result order.
func LatestAssessment(list []*Assessment) *Assessment {
	var latest *Assessment
	for _, a := range list {
		if a == nil {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	return latest
}

// DefaultPollInterval is how often a notifier re-checks the store.
const DefaultPollInterval = 30 * time.Second

// Notifier polls the assessment store for one remembered submitter and
// maintains their notification state. A dismissed notice stays hidden on
// re-polls for the same assessment and status, but a new assessment or a
// status change surfaces again. Poll failures are logged and leave the
// previous state untouched; the notifier is a convenience feature and
// fails silent.
type Notifier struct {
	email    string
	search   AssessmentSearcher
	interval time.Duration

	// Observe, when set, is called once per completed poll with its error.
	Observe func(err error)

	mu        sync.Mutex
	state     Notification
	dismissed map[string]string // assessment id -> status at dismissal
	stopped   bool

	stop     chan struct{}
	stopOnce sync.Once
}

func NewNotifier(search AssessmentSearcher, email string, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Notifier{
		email:     email,
		search:    search,
		interval:  interval,
		dismissed: map[string]string{},
		stop:      make(chan struct{}),
	}
}

// Start runs one poll synchronously, so callers observe a populated state
// right away, then launches the polling loop: one poll per interval until
// Stop. Polls run on a single goroutine, so a poll that outlasts the
// interval simply causes the missed ticks to be dropped rather than
// overlapping requests.
func (n *Notifier) Start() {
	n.Poll()
	go func() {
		t := time.NewTicker(n.interval)
		defer t.Stop()
		for {
			select {
			case <-n.stop:
				return
			case <-t.C:
				n.Poll()
			}
		}
	}()
}

// Stop cancels the polling loop. Results from a poll still in flight are
// discarded; state never changes after Stop.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		n.mu.Lock()
		n.stopped = true
		n.mu.Unlock()
		close(n.stop)
	})
}

// Poll runs one lookup/classify cycle. A notifier without a remembered
// email is a no-op and never calls the store.
func (n *Notifier) Poll() {
	if n.email == "" {
		return
	}
	list, err := n.search.SearchAssessments(n.email)
	if n.Observe != nil {
		n.Observe(err)
	}
	if err != nil {
		log.Printf("notifier: search %s: %v", n.email, err)
		return
	}
	n.apply(LatestAssessment(list))
}

// apply folds a poll result into the notification state. It is a no-op
// after Stop, which is the guard against a late response racing teardown.
func (n *Notifier) apply(a *Assessment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}
	if a == nil {
		n.state = Notification{}
		return
	}
	severity, message, ok := Classify(a.Status)
	if !ok {
		n.state = Notification{}
		return
	}
	if n.dismissed[a.ID] == a.Status {
		n.state = Notification{AssessmentID: a.ID, Status: a.Status}
		return
	}
	n.state = Notification{
		Visible:      true,
		AssessmentID: a.ID,
		Status:       a.Status,
		Severity:     severity,
		Message:      message,
	}
}

// State returns the current notification.
func (n *Notifier) State() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Dismiss hides the current notification and records the dismissal for its
// assessment and status, so only a genuinely new result resurfaces.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state.AssessmentID == "" {
		return
	}
	n.dismissed[n.state.AssessmentID] = n.state.Status
	n.state.Visible = false
	n.state.Severity = ""
	n.state.Message = ""
}

// NotifyCenter owns one notifier per remembered submitter, started lazily
// on first request and torn down together on shutdown.
type NotifyCenter struct {
	search   AssessmentSearcher
	interval time.Duration
	observe  func(err error)

	mu      sync.Mutex
	byEmail map[string]*Notifier
}

func NewNotifyCenter(search AssessmentSearcher, interval time.Duration, observe func(err error)) *NotifyCenter {
	return &NotifyCenter{
		search:   search,
		interval: interval,
		observe:  observe,
		byEmail:  map[string]*Notifier{},
	}
}

// For returns the notifier for email, starting one if needed. An empty
// email yields nil: visitors with no remembered submission get no poller.
func (c *NotifyCenter) For(email string) *Notifier {
	if email == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.byEmail[email]; ok {
		return n
	}
	n := NewNotifier(c.search, email, c.interval)
	n.Observe = c.observe
	n.Start()
	c.byEmail[email] = n
	return n
}

// Stop tears down every notifier.
func (c *NotifyCenter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.byEmail {
		n.Stop()
	}
	c.byEmail = map[string]*Notifier{}
}
