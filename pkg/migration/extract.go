package migration

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	githubClient "github.com/solidify-labs/gl2gh/pkg/github"
	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// ExtractOrgUsers writes one CSV row per organization member. Member listings
// only carry logins, so each profile is fetched for name and email; a failed
// profile lookup leaves those columns empty rather than aborting the report.
func ExtractOrgUsers(ctx context.Context, ghc *githubClient.Client, org, outputFile string) error {
	members, err := ghc.ListOrgMembers(ctx, org)
	if err != nil {
		return err
	}
	logger.Info("Found organization members", "org", org, "count", len(members))

	rows := make([][]string, 0, len(members))
	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		login := member.GetLogin()
		user, err := ghc.GetUser(ctx, login)
		if err != nil {
			logger.Warn("Failed to fetch user profile, writing login only", "login", login, "error", err)
			rows = append(rows, []string{login, "", "", "", ""})
			continue
		}
		created := ""
		if user.CreatedAt != nil {
			created = user.GetCreatedAt().Format("2006-01-02")
		}
		rows = append(rows, []string{
			login, user.GetName(), user.GetEmail(), user.GetCompany(), created,
		})
	}

	header := []string{"login", "name", "email", "company", "created_at"}
	if err := writeReport(outputFile, header, rows); err != nil {
		return err
	}
	logger.Info("Saved organization user report", "file", outputFile, "count", len(rows))
	return nil
}

// ExtractOrgTeams writes one CSV row per team membership. A team with no
// members still gets a row with an empty member column so it shows up in the
// report.
func ExtractOrgTeams(ctx context.Context, ghc *githubClient.Client, org, outputFile string) error {
	teams, err := ghc.ListOrgTeams(ctx, org)
	if err != nil {
		return err
	}
	logger.Info("Found organization teams", "org", org, "count", len(teams))

	sort.Slice(teams, func(i, j int) bool { return teams[i].GetSlug() < teams[j].GetSlug() })

	var rows [][]string
	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			return err
		}
		members, err := ghc.ListTeamMembers(ctx, org, team.GetSlug())
		if err != nil {
			return err
		}
		if len(members) == 0 {
			rows = append(rows, teamRow(team.GetSlug(), team.GetName(), team.GetDescription(), team.GetPrivacy(), ""))
			continue
		}
		for _, member := range members {
			rows = append(rows, teamRow(team.GetSlug(), team.GetName(), team.GetDescription(), team.GetPrivacy(), member.GetLogin()))
		}
	}

	header := []string{"team_slug", "team_name", "description", "privacy", "member_login"}
	if err := writeReport(outputFile, header, rows); err != nil {
		return err
	}
	logger.Info("Saved organization team report", "file", outputFile, "teams", len(teams), "rows", len(rows))
	return nil
}

func teamRow(slug, name, description, privacy, login string) []string {
	return []string{slug, name, description, privacy, login}
}

// writeReport writes a plain CSV report. Reports are enumerations, not
// mapping files, so there is no status column and no re-run semantics.
func writeReport(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", path, err)
	}
	return nil
}
