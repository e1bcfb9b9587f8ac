package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidify-labs/gl2gh/pkg/mapping"
	"github.com/solidify-labs/gl2gh/pkg/utils"
)

func TestFormatMigratedComment(t *testing.T) {
	record := &CommentRecord{
		Author:    "alice",
		CreatedAt: "2024-01-02T10:00:00Z",
		Body:      "looks good to me",
	}

	got := formatMigratedComment(record, nil)
	require.Contains(t, got, "**alice** commented on 2024-01-02T10:00:00Z")
	require.Contains(t, got, "looks good to me")
	require.NotContains(t, got, "In reply to")
}

func TestFormatMigratedCommentReply(t *testing.T) {
	parent := &CommentRecord{
		Author:    "alice",
		CreatedAt: "2024-01-02T10:00:00Z",
		Body:      "original note",
	}
	record := &CommentRecord{
		Author:    "bob",
		CreatedAt: "2024-01-02T11:00:00Z",
		Body:      "agreed",
	}

	got := formatMigratedComment(record, parent)
	require.Contains(t, got, "**bob** commented on 2024-01-02T11:00:00Z")
	// The parent comment folds into a collapsible block.
	require.Contains(t, got, "<details>\n<summary>In reply to **alice**'s comment from 2024-01-02T10:00:00Z</summary>")
	require.Contains(t, got, "original note")
	require.Contains(t, got, "</details>")
	require.Contains(t, got, "agreed")
}

func TestFormatMigratedCommentTruncatesLongBodies(t *testing.T) {
	record := &CommentRecord{
		Author:    "alice",
		CreatedAt: "2024-01-02T10:00:00Z",
		Body:      strings.Repeat("x", utils.MaxCommentLength+100),
	}

	got := formatMigratedComment(record, nil)
	require.Contains(t, got, utils.TruncateSuffix)
}

func TestCommentCodecRoundTrip(t *testing.T) {
	record := &CommentRecord{
		GitLabIssueID:     100,
		GitLabIssueIID:    4,
		GitLabIssueName:   "Broken build, again",
		CommentID:         555,
		ParentCommentID:   444,
		Body:              "multi\nline, with \"quotes\"",
		Author:            "alice",
		CreatedAt:         "2024-01-02T10:00:00Z",
		UpdatedAt:         "2024-01-02T10:05:00Z",
		System:            false,
		GitHubIssueNumber: 4,
		GitHubCommentID:   987654321,
		Status:            mapping.StatusApplied,
	}
	codec := commentCodec{}
	decoded, err := codec.Decode(codec.Encode(record))
	require.NoError(t, err)
	require.Equal(t, record, decoded)
}
