package planner

import (
	"errors"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

// sessionError is a user facing message that still matches a model sentinel.
type sessionError struct {
	msg   string
	cause error
}

func (e *sessionError) Error() string { return e.msg }

func (e *sessionError) Unwrap() error { return e.cause }

var (
	ErrGenerationInFlight = &sessionError{msg: "行程正在產生中，請稍候再試。", cause: models.ErrPrecondition}
	ErrSyncInFlight       = &sessionError{msg: "同步進行中，請稍候再試。", cause: models.ErrPrecondition}
	ErrNoActiveRequest    = &sessionError{msg: "找不到原始旅遊資訊，請重新產生行程。", cause: models.ErrPrecondition}
	ErrNoPlan             = &sessionError{msg: "目前沒有可儲存的行程，請先產生新的旅遊計畫。", cause: models.ErrPrecondition}
	ErrEmptyFeedback      = &sessionError{msg: "請輸入想調整的內容。", cause: models.ErrPrecondition}
	ErrTripNotFound       = &sessionError{msg: "找不到這筆已儲存的行程。", cause: models.ErrNotFound}
	ErrSessionNotFound    = &sessionError{msg: "planning session not found", cause: models.ErrNotFound}
)

// ErrSuperseded is returned to the caller of a generation whose result was
// discarded because a reset, selection or newer generation happened first.
var ErrSuperseded = errors.New("generation result discarded: session moved on")

// DefaultGenerationErrorMessage is shown when a failure carries no text.
const DefaultGenerationErrorMessage = "無法產生行程。請確認您的請求內容或稍後再試。"
