package models

type SessionState string

const (
	StateStart    SessionState = "start"
	StatePlaying  SessionState = "playing"
	StateFinished SessionState = "finished"
)

type FinishReason string

const (
	FinishSubmitted FinishReason = "submitted"
	FinishTimeout   FinishReason = "timeout"
)

// NavSlotState only distinguishes answered from unanswered, correctness is not shown in the nav bar
type NavSlotState string

const (
	SlotCurrent NavSlotState = "current"
	SlotDone    NavSlotState = "done"
	SlotPending NavSlotState = "pending"
)

type NavSlot struct {
	Index      int          `json:"index"`
	Number     int          `json:"number"`
	QuestionID string       `json:"question_id"`
	State      NavSlotState `json:"state"`
}

type NavWindow struct {
	Start          int       `json:"start"`
	End            int       `json:"end"`
	CanPageBack    bool      `json:"can_page_back"`
	CanPageForward bool      `json:"can_page_forward"`
	Slots          []NavSlot `json:"slots"`
}

type GridCell struct {
	Index      int          `json:"index"`
	QuestionID string       `json:"question_id"`
	Status     AnswerStatus `json:"status"`
	Current    bool         `json:"current"`
}

type CurrentQuestion struct {
	Question     QuestionView `json:"question"`
	Answered     bool         `json:"answered"`
	Correct      bool         `json:"correct"`
	UserResponse string       `json:"user_response,omitempty"`
	IsLast       bool         `json:"is_last"`
}

// SessionSnapshot is the read model handed to the presentation layer
type SessionSnapshot struct {
	SessionID     string           `json:"session_id,omitempty"`
	PlayerName    string           `json:"player_name,omitempty"`
	State         SessionState     `json:"state"`
	Total         int              `json:"total"`
	CurrentIndex  int              `json:"current_index"`
	Current       *CurrentQuestion `json:"current,omitempty"`
	Score         int              `json:"score"`
	CorrectCount  int              `json:"correct_count"`
	AnsweredCount int              `json:"answered_count"`
	TimeLeft      int              `json:"time_left"`
	Clock         string           `json:"clock"`
	CanSkip       bool             `json:"can_skip"`
	Nav           NavWindow        `json:"nav"`
	Grid          []GridCell       `json:"grid,omitempty"`
	FinishReason  FinishReason     `json:"finish_reason,omitempty"`
}
