package quiz

import "github.com/SAP-F-2025/quiz-runner/internal/models"

// PageSize is the number of slots in the navigation window
const PageSize = 10

// WindowStart returns the first index of the page that contains index
func WindowStart(index int) int {
	if index < 0 {
		return 0
	}
	return index / PageSize * PageSize
}

// PageBack moves the window one page back, never below zero
func PageBack(start int) int {
	return max(0, start-PageSize)
}

// PageForward moves the window one page forward if that page has at least one question
func PageForward(start, total int) int {
	if start+PageSize < total {
		return start + PageSize
	}
	return start
}

// Window returns the clipped half-open range [start, end) of visible slots
func Window(start, total int) (int, int) {
	if start > total {
		start = total
	}
	return start, min(start+PageSize, total)
}

// NavWindow builds the visible slots. A slot is done when answered, whatever the verdict.
func NavWindow(start, current int, questions []models.Question, answers map[string]models.UserAnswer) models.NavWindow {
	total := len(questions)
	from, to := Window(start, total)
	w := models.NavWindow{
		Start:          from,
		End:            to,
		CanPageBack:    from > 0,
		CanPageForward: from+PageSize < total,
		Slots:          make([]models.NavSlot, 0, to-from),
	}
	for i := from; i < to; i++ {
		slot := models.NavSlot{
			Index:      i,
			Number:     i + 1,
			QuestionID: questions[i].ID,
			State:      models.SlotPending,
		}
		if _, ok := answers[questions[i].ID]; ok {
			slot.State = models.SlotDone
		}
		if i == current {
			slot.State = models.SlotCurrent
		}
		w.Slots = append(w.Slots, slot)
	}
	return w
}
