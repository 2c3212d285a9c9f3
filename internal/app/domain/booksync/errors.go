package booksync

import "github.com/EthanH9977/JourneyXPro/internal/app/models"

// gatewayError carries a user facing message while still matching the broad
// model sentinel it belongs to.
type gatewayError struct {
	msg   string
	cause error
}

func (e *gatewayError) Error() string { return e.msg }

func (e *gatewayError) Unwrap() error { return e.cause }

var (
	ErrAccountRequired = &gatewayError{msg: "請輸入使用者名稱", cause: models.ErrPrecondition}
	ErrNoPlan          = &gatewayError{msg: "目前沒有可同步的行程，請先產生新的旅遊計畫。", cause: models.ErrPrecondition}
	ErrSyncTimeout     = &gatewayError{msg: "同步逾時：文件儲存服務沒有在時限內回應。", cause: models.ErrSyncFailed}

	// Returned (wrapped) by DocumentSink implementations so classification
	// does not depend on driver message text.
	ErrPermissionDenied  = &gatewayError{msg: "permission-denied", cause: models.ErrSyncFailed}
	ErrUnavailable       = &gatewayError{msg: "unavailable", cause: models.ErrSyncFailed}
	ErrMissingCredential = &gatewayError{msg: "missing credential", cause: models.ErrSyncFailed}
)
