package sqlinline

import (
	"regexp"
	"strings"
	"testing"
)

var markerLine = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var allStatements = map[string]string{
	"QResolveLatestPrompt":    QResolveLatestPrompt,
	"QGetPrompt":              QGetPrompt,
	"QInsertPrompt":           QInsertPrompt,
	"QOverwritePromptByName":  QOverwritePromptByName,
	"QCreateJob":              QCreateJob,
	"QGetJob":                 QGetJob,
	"QClaimJob":               QClaimJob,
	"QSetJobPrompt":           QSetJobPrompt,
	"QRequeueJob":             QRequeueJob,
	"QFailJob":                QFailJob,
	"QWithdrawJob":            QWithdrawJob,
	"QLockJobForCommit":       QLockJobForCommit,
	"QCompleteJob":            QCompleteJob,
	"QInsertWorkoutTemplate":  QInsertWorkoutTemplate,
	"QGetExerciseByName":      QGetExerciseByName,
	"QInsertExercise":         QInsertExercise,
	"QInsertTemplateExercise": QInsertTemplateExercise,
	"QInsertMealPlan":         QInsertMealPlan,
	"QInsertMacroTargets":     QInsertMacroTargets,
	"QInsertChatMessage":      QInsertChatMessage,
	"QTouchChatThread":        QTouchChatThread,
}

func TestStatementsCarryUniqueMarkers(t *testing.T) {
	seen := make(map[string]string, len(allStatements))
	for name, stmt := range allStatements {
		first, _, _ := strings.Cut(strings.TrimSpace(stmt), "\n")
		first = strings.TrimSpace(first)
		if !markerLine.MatchString(first) {
			t.Errorf("%s: first line %q is not a valid marker", name, first)
			continue
		}
		if other, dup := seen[first]; dup {
			t.Errorf("%s and %s share marker %q", name, other, first)
		}
		seen[first] = name
	}
}

// A freshly inserted job must satisfy the claim predicate immediately: the
// insert stamps run_after itself, and the claim side tolerates a NULL
// run_after on rows written before the column existed. Without both, a new
// job can sit queued forever.
func TestNewJobsAreImmediatelyClaimable(t *testing.T) {
	if !strings.Contains(QCreateJob, "run_after") {
		t.Error("QCreateJob does not set run_after; inserted jobs depend on an undeclared column default")
	}
	if !strings.Contains(QClaimJob, "coalesce(run_after, now())") {
		t.Error("QClaimJob predicate is not NULL-safe for run_after")
	}
}

func TestStatementsHaveBodies(t *testing.T) {
	for name, stmt := range allStatements {
		_, body, ok := strings.Cut(strings.TrimSpace(stmt), "\n")
		if !ok || strings.TrimSpace(body) == "" {
			t.Errorf("%s: statement has no body", name)
		}
	}
}
