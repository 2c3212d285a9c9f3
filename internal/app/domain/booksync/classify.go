package booksync

import (
	"context"
	"errors"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

// Category buckets a sync failure for user messaging only. It never changes
// retry behaviour.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryPermission Category = "permission"
	CategoryNetwork    Category = "network"
	CategoryConfig     Category = "config"
	CategoryTimeout    Category = "timeout"
	CategoryGeneric    Category = "generic"
)

const GenericSyncMessage = "同步失敗，請稍後再試。"

var categoryMessages = map[Category]string{
	CategoryPermission: "權限不足：請檢查文件儲存服務的存取權限設定。",
	CategoryNetwork:    "網路連線問題：無法連接到文件儲存服務。",
	CategoryConfig:     "配置錯誤：文件儲存服務的憑證無效或遺失。",
	CategoryTimeout:    ErrSyncTimeout.msg,
	CategoryGeneric:    GenericSyncMessage,
}

type keyword struct {
	pattern  string
	category Category
}

// Earlier categories win when a message matches several.
var keywords = []keyword{
	{"permission-denied", CategoryPermission},
	{"permission denied", CategoryPermission},
	{"access denied", CategoryPermission},
	{"accessdenied", CategoryPermission},
	{"unauthorized", CategoryPermission},
	{"forbidden", CategoryPermission},
	{"authentication failed", CategoryPermission},
	{"unavailable", CategoryNetwork},
	{"network", CategoryNetwork},
	{"connection refused", CategoryNetwork},
	{"connection reset", CategoryNetwork},
	{"no such host", CategoryNetwork},
	{"server selection error", CategoryNetwork},
	{"api key", CategoryConfig},
	{"credential", CategoryConfig},
	{"invalidaccesskeyid", CategoryConfig},
	{"signaturedoesnotmatch", CategoryConfig},
}

var categoryRank = map[Category]int{
	CategoryPermission: 0,
	CategoryNetwork:    1,
	CategoryConfig:     2,
}

var keywordMatcher = func() ahocorasick.AhoCorasick {
	patterns := make([]string, len(keywords))
	for i, k := range keywords {
		patterns[i] = k.pattern
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
		DFA:                  true,
	})
	return builder.Build(patterns)
}()

// Classify inspects an upload error. Typed sentinels are trusted first; the
// message keyword scan is a best effort fallback for drivers that only
// report text.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryGeneric
	case errors.Is(err, ErrSyncTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, models.ErrPrecondition):
		return CategoryValidation
	case errors.Is(err, ErrPermissionDenied):
		return CategoryPermission
	case errors.Is(err, ErrUnavailable):
		return CategoryNetwork
	case errors.Is(err, ErrMissingCredential):
		return CategoryConfig
	}

	best := CategoryGeneric
	bestRank := len(categoryRank)
	for _, m := range keywordMatcher.FindAll(strings.ToLower(err.Error())) {
		cat := keywords[m.Pattern()].category
		if rank := categoryRank[cat]; rank < bestRank {
			best, bestRank = cat, rank
		}
	}
	return best
}

// UserMessage is the Traditional Chinese text shown for a failed sync.
// Validation failures already carry their own user facing message.
func UserMessage(err error) string {
	cat := Classify(err)
	if cat == CategoryValidation {
		return err.Error()
	}
	return categoryMessages[cat]
}
