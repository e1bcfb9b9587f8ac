package utils

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	// GitHub text length limits.
	// https://docs.github.com/en/rest/pulls/pulls?apiVersion=2022-11-28
	MaxTitleLength       = 256
	MaxDescriptionLength = 65536
	MaxCommentLength     = 65536

	TruncateSuffix = "... [truncated]"
)

// timestampSuffix matches the unix-millis suffix appended to migrated
// repository names, e.g. migration-test-1755078343906.
var timestampSuffix = regexp.MustCompile(`-\d{13}$`)

// TruncateText shortens text to at most maxLength runes, appending a marker
// when anything was cut.
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	availableLength := maxLength - utf8.RuneCountInString(TruncateSuffix)
	runes := []rune(text)
	if availableLength <= 0 {
		return string(runes[:maxLength])
	}
	return string(runes[:availableLength]) + TruncateSuffix
}

// WrapComment folds detail into a collapsible markdown block.
func WrapComment(summary, detail string) string {
	return fmt.Sprintf("<details>\n<summary>%s</summary>\n\n%s\n</details>", summary, detail)
}

// BaseRepoName strips the migration timestamp suffix from a repository name,
// so short references like migration-test#2 can be matched against the
// repository migration-test-1755078343906.
func BaseRepoName(name string) string {
	return timestampSuffix.ReplaceAllString(name, "")
}
