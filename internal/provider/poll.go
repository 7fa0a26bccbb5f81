package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
)

// statusCandidates is the ordered list of status-endpoint shapes the provider
// is known to expose, instantiated with the task id. The first one that
// answers with a well-formed payload is pinned for the rest of the session.
var statusCandidates = []string{
	"/v1/tasks/%s",
	"/v1/images/tasks/%s",
	"/v1/generations/%s",
}

var (
	terminalSuccess = map[string]bool{"COMPLETED": true, "SUCCESS": true}
	terminalFailure = map[string]bool{"FAILED": true, "ERROR": true}
)

// errTaskPending marks an inconclusive poll round: either no candidate
// answered, or the task is still in a non-terminal state.
var errTaskPending = errors.New("task still pending")

// Poll queries the provider until the task reaches a terminal state or the
// attempt budget runs out. Attempts are separated by a fixed interval; a
// round that fails on one candidate falls through to the next rather than
// aborting the session. Returns the artifact URL on terminal success (it may
// be empty), a TaskFailedError on terminal failure, and a PollTimeoutError
// when the budget is exhausted. The context cancels the session between and
// during attempts.
func (c *Client) Poll(ctx context.Context, task TaskHandle) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	pinned := ""
	attempt := 0
	var artifact string

	defer func() { pollRounds.Observe(float64(attempt)) }()

	round := func() error {
		attempt++
		candidates := statusCandidates
		if pinned != "" {
			candidates = []string{pinned}
		}

		for _, tmpl := range candidates {
			statusURL := c.baseURL + fmt.Sprintf(tmpl, url.PathEscape(task.TaskID))
			resp, err := c.http.R().
				SetContext(ctx).
				SetHeader("Authorization", "Bearer "+c.apiKey).
				Get(statusURL)
			if err != nil {
				c.logger.Debug("status candidate unreachable", "url", statusURL, "error", err)
				continue
			}
			if resp.IsError() {
				continue
			}

			parsed := gjson.ParseBytes(resp.Body())
			status := strings.ToUpper(parsed.Get("status").String())
			if status == "" {
				continue
			}

			if pinned == "" {
				pinned = tmpl
				c.logger.Debug("pinned status endpoint", "task_id", task.TaskID, "template", tmpl)
			}
			c.logger.Debug("task status",
				"task_id", task.TaskID,
				"attempt", attempt,
				"status", status,
			)

			switch {
			case terminalSuccess[status]:
				artifact = extractArtifact(parsed)
				return nil
			case terminalFailure[status]:
				return backoff.Permanent(&TaskFailedError{TaskID: task.TaskID, Status: status})
			}

			// Well-formed but non-terminal; the round is decided.
			return errTaskPending
		}

		return errTaskPending
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(c.pollInterval),
			uint64(c.pollAttempts-1),
		),
		ctx,
	)

	if err := backoff.Retry(round, policy); err != nil {
		if errors.Is(err, errTaskPending) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", &PollTimeoutError{TaskID: task.TaskID, Attempts: attempt}
		}
		return "", err
	}

	return artifact, nil
}
