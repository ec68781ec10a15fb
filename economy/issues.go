package economy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/chat-thief/docstore"
)

// Issue is a bug report left in chat for the streamer.
type Issue struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

// newIssueID returns a short id a god can type back into chat.
func newIssueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ReportIssue files message as a new issue from user.
func (e *Economy) ReportIssue(ctx context.Context, user, message string) (Result, error) {
	user = normalizeName(user)
	if res, stop, err := e.refuseBanned(ctx, user); stop {
		return res, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return fail(ParseError, fmt.Sprintf("@%s Must include a description of the !issue", user)), nil
	}
	issue := Issue{ID: newIssueID(), User: user, Message: message, CreatedAt: time.Now().Unix()}
	if err := docstore.PutFrom(ctx, e.ledger.store, TableIssues, issue.ID, issue); err != nil {
		return Result{}, fmt.Errorf("save issue: %w", err)
	}
	return succeed(fmt.Sprintf("Thank You @%s for your feedback, we will review and get back to you shortly", user)), nil
}

// AllIssues lists open issues, oldest first.
func (e *Economy) AllIssues(ctx context.Context) ([]Issue, error) {
	keys, err := e.ledger.store.Keys(ctx, TableIssues)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	issues := make([]Issue, 0, len(keys))
	for _, k := range keys {
		var is Issue
		err := docstore.GetInto(ctx, e.ledger.store, TableIssues, k, &is)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load issue %s: %w", k, err)
		}
		if is.ID == "" {
			is.ID = k
		}
		issues = append(issues, is)
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].CreatedAt != issues[j].CreatedAt {
			return issues[i].CreatedAt < issues[j].CreatedAt
		}
		return issues[i].ID < issues[j].ID
	})
	return issues, nil
}

// Issues formats one line per open issue.
func (e *Economy) Issues(ctx context.Context) (Result, error) {
	issues, err := e.AllIssues(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(issues) == 0 {
		return succeed("No open issues"), nil
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = fmt.Sprintf("@%s ID: %s - %s", is.User, is.ID, is.Message)
	}
	return succeed(lines...), nil
}

// DeleteIssue closes the issue with id.
func (e *Economy) DeleteIssue(ctx context.Context, id string) (Result, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return fail(ParseError, "Usage: !delete_issue ID"), nil
	}
	_, err := e.ledger.store.Get(ctx, TableIssues, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return fail(Rejected, fmt.Sprintf("No issue with ID: %s", id)), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("load issue %s: %w", id, err)
	}
	if err := e.ledger.store.Delete(ctx, TableIssues, id); err != nil {
		return Result{}, fmt.Errorf("delete issue %s: %w", id, err)
	}
	return succeed(fmt.Sprintf("Issue: %s Deleted", id)), nil
}
