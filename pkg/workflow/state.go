package workflow

import (
	"slices"
	"strings"
)

// RunStatus is the most recent observed execution state of a task.
// Values outside the defined set are kept verbatim; renderers treat them as
// unknown and fall back to the default style.
type RunStatus string

const (
	StatusNone            RunStatus = ""
	StatusQueued          RunStatus = "queued"
	StatusScheduled       RunStatus = "scheduled"
	StatusRunning         RunStatus = "running"
	StatusSuccess         RunStatus = "success"
	StatusRestarting      RunStatus = "restarting"
	StatusFailed          RunStatus = "failed"
	StatusUpForRetry      RunStatus = "up_for_retry"
	StatusUpForReschedule RunStatus = "up_for_reschedule"
	StatusUpstreamFailed  RunStatus = "upstream_failed"
	StatusSkipped         RunStatus = "skipped"
	StatusRemoved         RunStatus = "removed"
	StatusDeferred        RunStatus = "deferred"
)

// Statuses lists every defined status except [StatusNone].
var Statuses = []RunStatus{
	StatusQueued,
	StatusScheduled,
	StatusRunning,
	StatusSuccess,
	StatusRestarting,
	StatusFailed,
	StatusUpForRetry,
	StatusUpForReschedule,
	StatusUpstreamFailed,
	StatusSkipped,
	StatusRemoved,
	StatusDeferred,
}

var statusAliases = map[string]RunStatus{
	"succeeded":  StatusSuccess,
	"successful": StatusSuccess,
	"error":      StatusFailed,
}

// ParseRunStatus normalizes s (case-insensitive, with a few aliases such as
// "succeeded") and reports whether it names a defined status. Unknown input
// is returned unchanged with ok=false.
func ParseRunStatus(s string) (RunStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := statusAliases[norm]; ok {
		return alias, true
	}
	st := RunStatus(norm)
	if slices.Contains(Statuses, st) {
		return st, true
	}
	return RunStatus(s), false
}

// Known reports whether s is one of [Statuses].
func (s RunStatus) Known() bool { return slices.Contains(Statuses, s) }

// States maps qualified task IDs to their latest status. A nil map means no
// run context; a task missing from a non-nil map is unseen in any run.
type States map[string]RunStatus
