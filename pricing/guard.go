package pricing

import (
	"fmt"
	"strings"

	"pricing-rollup/apierr"
	"pricing-rollup/models"
)

// CodeTreeVersionDraft is the conflict code returned when mutating against a DRAFT tree version
const CodeTreeVersionDraft = "PBV2_TREE_VERSION_DRAFT"

// GuardAction names the mutating operation being guarded
type GuardAction string

const (
	GuardPersist   GuardAction = "persist"
	GuardAccept    GuardAction = "accept"
	GuardRecompute GuardAction = "recompute"
)

func (a GuardAction) pastTense() string {
	switch a {
	case GuardPersist:
		return "persisted"
	case GuardAccept:
		return "accepted"
	case GuardRecompute:
		return "recomputed"
	default:
		return "used"
	}
}

// AssertNotDraft rejects persist/accept/recompute against a DRAFT tree version with a
// 409-class *apierr.Error. Any other status, including empty or unknown, passes.
func AssertNotDraft(status string, action GuardAction) error {
	if !strings.EqualFold(strings.TrimSpace(status), string(models.TreeVersionDraft)) {
		return nil
	}
	return apierr.Conflict(CodeTreeVersionDraft, string(action),
		fmt.Errorf("tree version is in DRAFT and cannot be %s", action.pastTense()))
}
