package migration

import (
	"testing"

	"github.com/stretchr/testify/require"

	gitlabClient "github.com/solidify-labs/gl2gh/pkg/gitlab"
)

func TestRelationshipKeyDeduplicatesBothSides(t *testing.T) {
	blocks := gitlabClient.IssueLink{SourceIID: 1, TargetIID: 2, TargetProjectID: 7, LinkType: "blocks"}
	blockedBy := gitlabClient.IssueLink{SourceIID: 2, TargetIID: 1, TargetProjectID: 7, LinkType: "is_blocked_by"}
	require.Equal(t, relationshipKey(blocks), relationshipKey(blockedBy))
}

func TestRelationshipKeyRelatesToSymmetric(t *testing.T) {
	a := gitlabClient.IssueLink{SourceIID: 3, TargetIID: 5, TargetProjectID: 7, LinkType: "relates_to"}
	b := gitlabClient.IssueLink{SourceIID: 5, TargetIID: 3, TargetProjectID: 7, LinkType: "relates_to"}
	require.Equal(t, relationshipKey(a), relationshipKey(b))
}

func TestRelationshipKeyDirectionMatters(t *testing.T) {
	a := gitlabClient.IssueLink{SourceIID: 1, TargetIID: 2, TargetProjectID: 7, LinkType: "blocks"}
	b := gitlabClient.IssueLink{SourceIID: 2, TargetIID: 1, TargetProjectID: 7, LinkType: "blocks"}
	require.NotEqual(t, relationshipKey(a), relationshipKey(b))
}

func TestRelationshipKeyProjectsDiffer(t *testing.T) {
	a := gitlabClient.IssueLink{SourceIID: 1, TargetIID: 2, TargetProjectID: 7, LinkType: "blocks"}
	b := gitlabClient.IssueLink{SourceIID: 1, TargetIID: 2, TargetProjectID: 8, LinkType: "blocks"}
	require.NotEqual(t, relationshipKey(a), relationshipKey(b))
}

func TestRelationshipAction(t *testing.T) {
	require.Equal(t, relationshipActionDependency, relationshipAction("blocks"))
	require.Equal(t, relationshipActionDependency, relationshipAction("is_blocked_by"))
	require.Equal(t, relationshipActionComment, relationshipAction("relates_to"))
	require.Equal(t, relationshipActionComment, relationshipAction("duplicate_of"))
}
