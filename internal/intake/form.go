package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the coarse submission lifecycle. The cycle is repeatable: success
// auto-reverts to idle after the configured hold.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

// Result is the submission endpoint's verdict.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Sender delivers a validated payload to the lead sink.
type Sender interface {
	Send(ctx context.Context, p Payload) (Result, error)
}

// Tracker receives fire-and-forget analytics events.
type Tracker interface {
	Track(event string, props map[string]any)
}

var ErrSubmitInFlight = errors.New("a submission is already in progress")

// SubmittedEvent is emitted once per confirmed successful submission.
const SubmittedEvent = "contact_form_submitted"

const (
	failedSendMsg     = "Failed to send. Please try again later."
	unexpectedSendMsg = "Unexpected error. Please try again later."
)

// Options configure a Form.
type Options struct {
	Sender         Sender
	Tracker        Tracker
	SuccessHold    time.Duration
	ClearOnSuccess bool
	Logger         *zap.SugaredLogger
	// After schedules the success→idle revert; overridable in tests.
	After func(d time.Duration, fn func())
}

// Form owns one visitor's intake state: the service discriminator, the
// superset value map, the last validation errors, and the submission
// lifecycle. Switching service type never discards values; it only changes
// which fields are displayed and validated.
type Form struct {
	mu      sync.Mutex
	service ServiceType
	values  map[string]any
	errors  Errors
	state   State

	sender         Sender
	tracker        Tracker
	successHold    time.Duration
	clearOnSuccess bool
	after          func(d time.Duration, fn func())
	log            *zap.SugaredLogger
}

func NewForm(service ServiceType, opts Options) *Form {
	if !service.Valid() {
		service = DefaultService
	}
	if opts.SuccessHold <= 0 {
		opts.SuccessHold = 5 * time.Second
	}
	if opts.After == nil {
		opts.After = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Form{
		service:        service,
		values:         DefaultValues(),
		errors:         Errors{},
		state:          StateIdle,
		sender:         opts.Sender,
		tracker:        opts.Tracker,
		successHold:    opts.SuccessHold,
		clearOnSuccess: opts.ClearOnSuccess,
		after:          opts.After,
		log:            opts.Logger,
	}
}

// SetService replaces the discriminator. Field values are kept.
func (f *Form) SetService(st ServiceType) {
	if !st.Valid() {
		return
	}
	f.mu.Lock()
	f.service = st
	f.mu.Unlock()
}

// ApplyServiceParam maps an incoming ?service= value onto the discriminator;
// unmatched input leaves the current type unchanged.
func (f *Form) ApplyServiceParam(raw string) {
	if st, ok := ParseServiceParam(raw); ok {
		f.SetService(st)
	}
}

// SetField overwrites a scalar field.
func (f *Form) SetField(name string, value string) {
	f.mu.Lock()
	f.values[name] = value
	f.mu.Unlock()
}

// ToggleListField appends value to the list field when checked, and removes
// every occurrence when unchecked.
func (f *Form) ToggleListField(name, value string, checked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, _ := f.values[name].([]string)
	if checked {
		f.values[name] = append(current, value)
		return
	}
	kept := make([]string, 0, len(current))
	for _, v := range current {
		if v != value {
			kept = append(kept, v)
		}
	}
	f.values[name] = kept
}

// FormView is the renderable snapshot of the form.
type FormView struct {
	ServiceType   ServiceType    `json:"serviceType"`
	ServiceLabel  string         `json:"serviceLabel"`
	State         State          `json:"state"`
	Values        map[string]any `json:"values"`
	Errors        Errors         `json:"errors"`
	CommonFields  []FieldSpec    `json:"commonFields"`
	ServiceFields []FieldSpec    `json:"serviceFields"`
}

func (f *Form) View() FormView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormView{
		ServiceType:   f.service,
		ServiceLabel:  f.service.Label(),
		State:         f.state,
		Values:        copyValues(f.values),
		Errors:        copyErrors(f.errors),
		CommonFields:  CommonFields(f.service),
		ServiceFields: ServiceFields(f.service),
	}
}

// Submit runs the lifecycle: validate locally, deliver on success, emit one
// analytics event, hold the success state briefly, then revert to idle.
// Validation or delivery failure reverts to idle immediately with the errors
// recorded; only a re-entrant call is an error.
func (f *Form) Submit(ctx context.Context) (Result, Errors, error) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return Result{}, nil, ErrSubmitInFlight
	}
	f.errors = Errors{}
	payload := BuildPayload(f.service, f.values)
	if errs := Validate(payload); len(errs) > 0 {
		f.errors = errs
		f.mu.Unlock()
		return Result{}, copyErrors(errs), nil
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	res, err := f.sender.Send(ctx, payload)
	if err != nil {
		f.log.Errorw("lead submission failed", "error", err)
		return f.failSubmit(unexpectedSendMsg)
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = failedSendMsg
		}
		return f.failSubmit(msg)
	}

	if f.tracker != nil {
		f.tracker.Track(SubmittedEvent, SubmissionEventProps(payload))
	}

	f.mu.Lock()
	f.state = StateSuccess
	if f.clearOnSuccess {
		f.values = DefaultValues()
	}
	f.mu.Unlock()

	f.after(f.successHold, func() {
		f.mu.Lock()
		if f.state == StateSuccess {
			f.state = StateIdle
		}
		f.mu.Unlock()
	})
	return res, Errors{}, nil
}

func (f *Form) failSubmit(msg string) (Result, Errors, error) {
	f.mu.Lock()
	f.errors = Errors{"submit": msg}
	f.state = StateIdle
	errs := copyErrors(f.errors)
	f.mu.Unlock()
	return Result{Success: false, Message: msg}, errs, nil
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

func copyErrors(e Errors) Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
