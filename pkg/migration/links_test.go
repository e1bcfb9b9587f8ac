package migration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidify-labs/gl2gh/pkg/mapping"
)

func TestFindGitLabURLs(t *testing.T) {
	text := "See https://gitlab.example.com/group/proj/-/issues/4 and " +
		"(https://gitlab.com/g/p/-/merge_requests/7), but not https://github.com/o/r/issues/1."
	urls := FindGitLabURLs(text)
	require.Equal(t, []string{
		"https://gitlab.example.com/group/proj/-/issues/4",
		"https://gitlab.com/g/p/-/merge_requests/7",
	}, urls)
}

func TestFindGitLabURLsNone(t *testing.T) {
	require.Empty(t, FindGitLabURLs("no links here, github.com/o/r neither"))
}

func TestFindRepoRefs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []RepoRef
	}{
		{
			name: "plain reference",
			text: "duplicate of migration-test#2, closing",
			want: []RepoRef{{Text: "migration-test#2", Number: 2}},
		},
		{
			name: "start of text",
			text: "migration-test#15 tracks this",
			want: []RepoRef{{Text: "migration-test#15", Number: 15}},
		},
		{
			name: "longer name does not match",
			text: "see other-migration-test#2",
			want: nil,
		},
		{
			name: "path segment does not match",
			text: "https://example.com/migration-test#2",
			want: nil,
		},
		{
			name: "trailing word char does not match",
			text: "migration-test#2a",
			want: nil,
		},
		{
			name: "multiple references",
			text: "migration-test#1 blocks migration-test#2",
			want: []RepoRef{
				{Text: "migration-test#1", Number: 1},
				{Text: "migration-test#2", Number: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FindRepoRefs(tt.text, "migration-test"))
		})
	}
}

func TestFindRepoRefsEmptyBaseName(t *testing.T) {
	require.Nil(t, FindRepoRefs("anything#1", ""))
}

func TestConvertGitLabURL(t *testing.T) {
	gitlabRepo := "https://gitlab.com/solidify/migration-test"
	githubRepo := "https://github.com/solidify-labs/migration-test-1755078343906"

	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "issue URL",
			in:     gitlabRepo + "/-/issues/4",
			want:   githubRepo + "/issues/4",
			wantOK: true,
		},
		{
			name:   "merge request becomes pull",
			in:     gitlabRepo + "/-/merge_requests/7",
			want:   githubRepo + "/pull/7",
			wantOK: true,
		},
		{
			name:   "repository root",
			in:     gitlabRepo,
			want:   githubRepo,
			wantOK: true,
		},
		{
			name:   "other project rejected",
			in:     "https://gitlab.com/solidify/other/-/issues/4",
			wantOK: false,
		},
		{
			name:   "prefix of a longer path rejected",
			in:     gitlabRepo + "-archive/-/issues/4",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertGitLabURL(tt.in, gitlabRepo, githubRepo)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTargetIssueNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"https://github.com/o/r/issues/42", 42, true},
		{"https://github.com/o/r/pull/7", 7, true},
		{"https://github.com/o/r", 0, false},
		{"https://github.com/o/r/issues/abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := targetIssueNumber(tt.in)
		require.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		require.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestLinkCodecRoundTrip(t *testing.T) {
	record := &LinkRecord{
		ItemType:     linkItemTypeIssue,
		ItemNumber:   4,
		Location:     "comment-123",
		OriginalText: "migration-test#2",
		GitHubURL:    "https://github.com/o/r/issues/2",
		URLExists:    true,
		RefType:      linkRefTypeRepoRef,
		Status:       mapping.StatusPending,
	}
	codec := linkCodec{}
	decoded, err := codec.Decode(codec.Encode(record))
	require.NoError(t, err)
	require.Equal(t, record, decoded)
}
