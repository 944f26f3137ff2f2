package quiz

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/google/uuid"
)

// AutoAdvanceDelay is the pause between a correct answer and moving to the next question
const AutoAdvanceDelay = 1500 * time.Millisecond

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithDuration sets the countdown length in seconds, non-positive values are ignored
func WithDuration(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.duration = seconds
		}
	}
}

func WithAutoAdvanceDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.advanceDelay = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Controller owns a single quiz session and serializes every mutation of it.
// User operations, timer ticks and delayed advances all go through the same lock.
type Controller struct {
	mu sync.Mutex

	bank         []models.Question
	sched        Scheduler
	duration     int
	advanceDelay time.Duration
	logger       *slog.Logger
	observers    []Observer
	rng          *rand.Rand
	newID        func() string

	sessionID string
	player    string
	state     models.SessionState
	active    []models.Question
	current   int
	answers   map[string]models.UserAnswer
	hints     map[string]models.Hint
	countdown Countdown
	navStart  int
	reason    models.FinishReason

	// generation invalidates callbacks scheduled by an earlier session
	generation    uint64
	stopTimer     func()
	cancelAdvance func()
}

// NewController creates a controller in the Start state over an immutable question bank
func NewController(bank []models.Question, opts ...Option) (*Controller, error) {
	if len(bank) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	c := &Controller{
		bank:         slices.Clone(bank),
		sched:        RealScheduler{},
		duration:     DefaultDurationSeconds,
		advanceDelay: AutoAdvanceDelay,
		logger:       slog.Default(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:        uuid.NewString,
		state:        models.StateStart,
		answers:      make(map[string]models.UserAnswer),
		hints:        make(map[string]models.Hint),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.countdown.Reset(c.duration)

	return c, nil
}

// ===== SESSION LIFECYCLE =====

// Start begins a session over the full bank for the named player
func (c *Controller) Start(player string) error {
	name := strings.TrimSpace(player)
	if name == "" {
		return ErrInvalidPlayerName
	}

	return c.do(func() ([]Event, error) {
		if c.state == models.StatePlaying {
			return nil, fmt.Errorf("%w: a session is already running", ErrInvalidOperation)
		}
		c.player = name
		return c.startLocked(c.bank)
	})
}

// StartSession begins a session over the given questions
func (c *Controller) StartSession(questions []models.Question) error {
	return c.do(func() ([]Event, error) {
		if c.state == models.StatePlaying {
			return nil, fmt.Errorf("%w: a session is already running", ErrInvalidOperation)
		}
		return c.startLocked(questions)
	})
}

// RetryAll restarts a finished session with the whole bank
func (c *Controller) RetryAll() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StateFinished {
			return nil, fmt.Errorf("%w: retry requires a finished session", ErrInvalidOperation)
		}
		return c.startLocked(c.bank)
	})
}

// RetryWrong restarts a finished session with the questions answered incorrectly, in bank order
func (c *Controller) RetryWrong() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StateFinished {
			return nil, fmt.Errorf("%w: retry requires a finished session", ErrInvalidOperation)
		}
		wrong := WrongQuestions(c.bank, c.answers)
		if len(wrong) == 0 {
			return nil, fmt.Errorf("%w: no incorrect answers to retry", ErrEmptyQuestionSet)
		}
		return c.startLocked(wrong)
	})
}

// Finish ends a running session and freezes its answers
func (c *Controller) Finish() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: no session is running", ErrInvalidOperation)
		}
		return c.finishLocked(models.FinishSubmitted), nil
	})
}

// Close stops pending timers. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTasksLocked()
	c.generation++
}

// ===== ANSWERING =====

// SubmitAnswer records a verdict for the current question from an already built raw response
func (c *Controller) SubmitAnswer(raw string) (models.UserAnswer, error) {
	var answer models.UserAnswer
	err := c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: answers are only accepted while playing", ErrInvalidOperation)
		}
		var events []Event
		var err error
		answer, events, err = c.submitLocked(raw)
		return events, err
	})
	return answer, err
}

// SubmitResponse builds the raw response for the current question type and submits it
func (c *Controller) SubmitResponse(r Response) (models.UserAnswer, error) {
	var answer models.UserAnswer
	err := c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: answers are only accepted while playing", ErrInvalidOperation)
		}
		raw, err := BuildResponse(c.active[c.current], r)
		if err != nil {
			return nil, err
		}
		var events []Event
		answer, events, err = c.submitLocked(raw)
		return events, err
	})
	return answer, err
}

// Hint returns the hint for the current unanswered question. It stays the same until the session restarts.
func (c *Controller) Hint() (models.Hint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StatePlaying {
		return models.Hint{}, fmt.Errorf("%w: hints are only available while playing", ErrInvalidOperation)
	}
	q := c.active[c.current]
	if _, answered := c.answers[q.ID]; answered {
		return models.Hint{}, ErrAlreadyAnswered
	}
	if h, ok := c.hints[q.ID]; ok {
		return h, nil
	}

	h, err := MakeHint(q, c.rng)
	if err != nil {
		return models.Hint{}, err
	}
	c.hints[q.ID] = h
	return h, nil
}

// ===== NAVIGATION =====

// Advance moves to the next question, doing nothing on the last one
func (c *Controller) Advance() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: no session is running", ErrInvalidOperation)
		}
		return c.advanceLocked(false), nil
	})
}

// Skip is Advance for an unanswered question
func (c *Controller) Skip() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: no session is running", ErrInvalidOperation)
		}
		if _, answered := c.answers[c.active[c.current].ID]; answered {
			return nil, ErrAlreadyAnswered
		}
		return c.advanceLocked(false), nil
	})
}

func (c *Controller) JumpTo(index int) error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: no session is running", ErrInvalidOperation)
		}
		if index < 0 || index >= len(c.active) {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(c.active))
		}
		return c.moveLocked(index, false), nil
	})
}

func (c *Controller) PageBack() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: no session is running", ErrInvalidOperation)
		}
		return c.pageLocked(PageBack(c.navStart)), nil
	})
}

func (c *Controller) PageForward() error {
	return c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying {
			return nil, fmt.Errorf("%w: no session is running", ErrInvalidOperation)
		}
		return c.pageLocked(PageForward(c.navStart, len(c.active))), nil
	})
}

// ===== READ MODEL =====

func (c *Controller) State() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() models.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Report summarizes the current or last session
func (c *Controller) Report() (models.SessionReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == models.StateStart {
		return models.SessionReport{}, fmt.Errorf("%w: no session has been started", ErrInvalidOperation)
	}

	report := BuildReport(c.active, c.answers)
	report.SessionID = c.sessionID
	report.PlayerName = c.player
	report.State = c.state
	report.FinishReason = c.reason
	report.TimeSpent = c.countdown.Elapsed()
	return report, nil
}

// Bank returns a copy of the full question bank
func (c *Controller) Bank() []models.Question {
	return slices.Clone(c.bank)
}

// ===== INTERNALS (caller holds c.mu) =====

func (c *Controller) do(op func() ([]Event, error)) error {
	c.mu.Lock()
	events, err := op()
	c.mu.Unlock()

	c.dispatch(events)
	return err
}

func (c *Controller) dispatch(events []Event) {
	for _, e := range events {
		for _, o := range c.observers {
			o.OnSessionEvent(e)
		}
	}
}

func (c *Controller) startLocked(questions []models.Question) ([]Event, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	c.cancelTasksLocked()
	c.generation++
	c.sessionID = c.newID()
	c.active = slices.Clone(questions)
	c.current = 0
	c.navStart = 0
	c.answers = make(map[string]models.UserAnswer)
	c.hints = make(map[string]models.Hint)
	c.reason = ""
	c.countdown.Reset(c.duration)
	c.state = models.StatePlaying

	gen := c.generation
	c.stopTimer = c.sched.Every(time.Second, func() { c.onTick(gen) })

	c.logger.Info("Session started",
		"session_id", c.sessionID,
		"player", c.player,
		"questions", len(c.active),
		"duration", c.duration)

	return []Event{c.eventLocked(EventSessionStarted)}, nil
}

func (c *Controller) submitLocked(raw string) (models.UserAnswer, []Event, error) {
	if strings.TrimSpace(raw) == "" {
		return models.UserAnswer{}, nil, ErrEmptyResponse
	}

	q := c.active[c.current]
	answer := models.UserAnswer{
		QuestionID:   q.ID,
		UserResponse: raw,
		IsCorrect:    Evaluate(q, raw),
		AnsweredAt:   time.Now(),
	}
	c.answers[q.ID] = answer

	// a newer verdict supersedes any advance scheduled by the previous one
	c.cancelAdvanceLocked()
	if answer.IsCorrect && c.current < len(c.active)-1 {
		gen, questionID := c.generation, q.ID
		c.cancelAdvance = c.sched.After(c.advanceDelay, func() { c.onAutoAdvance(gen, questionID) })
	}

	c.logger.Debug("Answer submitted",
		"session_id", c.sessionID,
		"question_id", q.ID,
		"is_correct", answer.IsCorrect)

	e := c.eventLocked(EventAnswerSubmitted)
	e.Answer = &answer
	return answer, []Event{e}, nil
}

func (c *Controller) advanceLocked(auto bool) []Event {
	if c.current >= len(c.active)-1 {
		return nil
	}
	return c.moveLocked(c.current+1, auto)
}

func (c *Controller) moveLocked(index int, auto bool) []Event {
	c.cancelAdvanceLocked()
	c.current = index
	c.navStart = WindowStart(index)

	e := c.eventLocked(EventQuestionChanged)
	e.AutoAdvanced = auto
	return []Event{e}
}

func (c *Controller) pageLocked(start int) []Event {
	if start == c.navStart {
		return nil
	}
	c.navStart = start
	return []Event{c.eventLocked(EventNavPaged)}
}

func (c *Controller) finishLocked(reason models.FinishReason) []Event {
	c.cancelTasksLocked()
	c.generation++
	c.state = models.StateFinished
	c.reason = reason

	t := TallyAnswers(c.answers)
	c.logger.Info("Session finished",
		"session_id", c.sessionID,
		"reason", reason,
		"correct", t.CorrectCount,
		"answered", t.AnsweredCount,
		"total", len(c.active),
		"time_left", c.countdown.Remaining())

	e := c.eventLocked(EventSessionFinished)
	e.Reason = reason
	return []Event{e}
}

func (c *Controller) onTick(gen uint64) {
	_ = c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying || c.generation != gen {
			return nil, nil
		}
		expired := c.countdown.Tick()
		events := []Event{c.eventLocked(EventTimerTick)}
		if expired {
			events = append(events, c.finishLocked(models.FinishTimeout)...)
		}
		return events, nil
	})
}

func (c *Controller) onAutoAdvance(gen uint64, questionID string) {
	_ = c.do(func() ([]Event, error) {
		if c.state != models.StatePlaying || c.generation != gen {
			return nil, nil
		}
		if c.active[c.current].ID != questionID {
			return nil, nil
		}
		c.cancelAdvance = nil
		return c.advanceLocked(true), nil
	})
}

func (c *Controller) cancelAdvanceLocked() {
	if c.cancelAdvance != nil {
		c.cancelAdvance()
		c.cancelAdvance = nil
	}
}

func (c *Controller) cancelTasksLocked() {
	c.cancelAdvanceLocked()
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

func (c *Controller) eventLocked(t EventType) Event {
	return Event{
		Type:       t,
		SessionID:  c.sessionID,
		Snapshot:   c.snapshotLocked(),
		OccurredAt: time.Now(),
	}
}

func (c *Controller) snapshotLocked() models.SessionSnapshot {
	t := TallyAnswers(c.answers)
	s := models.SessionSnapshot{
		SessionID:     c.sessionID,
		PlayerName:    c.player,
		State:         c.state,
		Total:         len(c.active),
		CurrentIndex:  c.current,
		Score:         t.Score,
		CorrectCount:  t.CorrectCount,
		AnsweredCount: t.AnsweredCount,
		TimeLeft:      c.countdown.Remaining(),
		Clock:         FormatClock(c.countdown.Remaining()),
		Nav:           NavWindow(c.navStart, c.current, c.active, c.answers),
		FinishReason:  c.reason,
	}
	if len(c.active) == 0 {
		return s
	}

	q := c.active[c.current]
	answer, answered := c.answers[q.ID]
	s.Current = &models.CurrentQuestion{
		Question:     q.View(answered || c.state == models.StateFinished),
		Answered:     answered,
		Correct:      answer.IsCorrect,
		UserResponse: answer.UserResponse,
		IsLast:       c.current == len(c.active)-1,
	}
	s.CanSkip = c.state == models.StatePlaying && !answered

	s.Grid = make([]models.GridCell, len(c.active))
	for i, aq := range c.active {
		s.Grid[i] = models.GridCell{
			Index:      i,
			QuestionID: aq.ID,
			Status:     StatusOf(c.answers, aq.ID),
			Current:    i == c.current,
		}
	}
	return s
}
