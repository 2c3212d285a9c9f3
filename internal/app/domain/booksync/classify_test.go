package booksync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, CategoryGeneric},
		{"account", ErrAccountRequired, CategoryValidation},
		{"precondition", fmt.Errorf("wrap: %w", models.ErrPrecondition), CategoryValidation},
		{"timeout sentinel", ErrSyncTimeout, CategoryTimeout},
		{"deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), CategoryTimeout},
		{"permission sentinel", fmt.Errorf("%w: denied", ErrPermissionDenied), CategoryPermission},
		{"unavailable sentinel", fmt.Errorf("%w: down", ErrUnavailable), CategoryNetwork},
		{"credential sentinel", fmt.Errorf("%w: no key", ErrMissingCredential), CategoryConfig},
		{"permission text", errors.New("rpc error: code = PERMISSION-DENIED"), CategoryPermission},
		{"network text", errors.New("dial tcp: connection refused"), CategoryNetwork},
		{"unavailable text", errors.New("service Unavailable"), CategoryNetwork},
		{"config text", errors.New("Firebase API Key missing"), CategoryConfig},
		{"permission beats network", errors.New("network policy: access denied"), CategoryPermission},
		{"network beats config", errors.New("credential refresh failed: network down"), CategoryNetwork},
		{"generic", errors.New("boom"), CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, GenericSyncMessage, UserMessage(errors.New("something odd")))
	assert.Equal(t, "請輸入使用者名稱", UserMessage(ErrAccountRequired))
	assert.Contains(t, UserMessage(fmt.Errorf("%w: x", ErrPermissionDenied)), "權限不足")
	assert.Contains(t, UserMessage(errors.New("no such host")), "網路連線問題")
	assert.Contains(t, UserMessage(ErrMissingCredential), "配置錯誤")
	assert.Contains(t, UserMessage(ErrSyncTimeout), "同步逾時")
}

func TestSanitizeDocumentID(t *testing.T) {
	now := time.UnixMilli(1735689600000)
	tests := []struct {
		title    string
		expected string
	}{
		{"Kyoto Trip!!", "kyoto-trip"},
		{"  --Hello   World--  ", "hello-world"},
		{"Café Crème 2025", "cafe-creme-2025"},
		{"ＡＢＣ１２３", "abc123"},
		{"京都 Kyoto 之旅", "kyoto"},
		{"京都慢旅手冊", "journey-book-1735689600000"},
		{"", "journey-book-1735689600000"},
		{"!!!", "journey-book-1735689600000"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			id := SanitizeDocumentID(tt.title, now)
			assert.NotEmpty(t, id)
			assert.Equal(t, tt.expected, id)
			assert.Regexp(t, `^[a-z0-9]+(-[a-z0-9]+)*$`, id)
		})
	}
}

func TestNullifyAbsent(t *testing.T) {
	var missing *string
	present := "x"
	var nilSlice []map[string]any

	out := NullifyAbsent(map[string]any{
		"missing": missing,
		"present": &present,
		"nested": map[string]any{
			"list": []any{missing, 1, "a"},
		},
		"nilSlice": nilSlice,
		"bytes":    []byte("raw"),
	}).(map[string]any)

	assert.Nil(t, out["missing"])
	assert.Contains(t, out, "missing")
	assert.Equal(t, "x", out["present"])
	assert.Equal(t, []any{nil, 1, "a"}, out["nested"].(map[string]any)["list"])
	assert.Nil(t, out["nilSlice"])
	assert.Equal(t, []byte("raw"), out["bytes"])
	assert.Nil(t, NullifyAbsent(nil))
}
