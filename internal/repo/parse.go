package repo

import (
	"strconv"
	"strings"

	"github.com/weftworks/weft/api"
)

// parseStatus interprets `git status --porcelain -b` output. The first
// line carries the branch header, every following line one changed path.
func parseStatus(out string) api.RepoStatus {
	status := api.RepoStatus{Changes: []api.Change{}}
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			parseStatusHeader(strings.TrimPrefix(line, "## "), &status)
			continue
		}
		// Porcelain v1: two status characters, a space, then the path.
		if len(line) < 4 {
			continue
		}
		status.Changes = append(status.Changes, api.Change{
			Status: strings.TrimSpace(line[:2]),
			Path:   strings.TrimSpace(line[3:]),
		})
	}
	status.Clean = len(status.Changes) == 0
	return status
}

// parseStatusHeader fills branch and ahead/behind counts from a header of
// the form "main...origin/main [ahead 2, behind 1]". Unborn branches
// report "No commits yet on <name>".
func parseStatusHeader(header string, status *api.RepoStatus) {
	if strings.HasPrefix(header, "No commits yet on ") {
		status.Branch = strings.TrimPrefix(header, "No commits yet on ")
		return
	}

	tracking := ""
	name := header
	if i := strings.Index(header, "..."); i >= 0 {
		name = header[:i]
		tracking = header[i+3:]
	}
	status.Branch = name

	start := strings.Index(tracking, "[")
	end := strings.LastIndex(tracking, "]")
	if start < 0 || end <= start {
		return
	}
	for _, part := range strings.Split(tracking[start+1:end], ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "ahead ") {
			status.Ahead, _ = strconv.Atoi(strings.TrimPrefix(part, "ahead "))
		}
		if strings.HasPrefix(part, "behind ") {
			status.Behind, _ = strconv.Atoi(strings.TrimPrefix(part, "behind "))
		}
	}
}

// parseLog splits pretty-format output on logSep. Each record is four
// newline-separated fields: hash, author, ISO date, raw message.
func parseLog(out string) []api.Commit {
	commits := []api.Commit{}
	for _, chunk := range strings.Split(out, logSep) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		lines := strings.SplitN(chunk, "\n", 4)
		if len(lines) < 3 {
			continue // malformed record
		}
		if len(lines) < 4 {
			// Empty message body.
			lines = append(lines, "")
		}
		commits = append(commits, api.Commit{
			Hash:    lines[0],
			Author:  lines[1],
			Date:    lines[2],
			Message: strings.TrimSpace(lines[3]),
		})
	}
	return commits
}

// parseBranches interprets `git branch --list` output in the
// "<short name>\t<head marker>" format; the marker is "*" on the branch
// HEAD points at.
func parseBranches(out string) []api.Branch {
	branches := []api.Branch{}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name := line
		marker := ""
		if i := strings.Index(line, "\t"); i >= 0 {
			name = line[:i]
			marker = line[i+1:]
		}
		branches = append(branches, api.Branch{
			Name:    strings.TrimSpace(name),
			Current: strings.TrimSpace(marker) == "*",
		})
	}
	return branches
}
