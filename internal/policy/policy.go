package policy

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/wavechat/modstore/internal/store"
	"github.com/wavechat/modstore/resources"
)

// Action is the escalation a user's moderation state calls for. The store
// never applies actions itself; the moderation front end reads the verdict
// and invokes the matching Client operation.
type Action string

const (
	ActionNone      Action = "none"
	ActionSuspend   Action = "suspend"
	ActionBan       Action = "ban"
	ActionReportLaw Action = "report_law"
)

type Thresholds struct {
	// ConfidenceThreshold is the minimum classifier confidence for a
	// verdict to count as high confidence.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	SuspendThreshold    float64 `yaml:"suspend_threshold"`
	BanThreshold        float64 `yaml:"ban_threshold"`
	ReportThreshold     float64 `yaml:"report_threshold"`
	SuspensionDays      int64   `yaml:"suspension_days"`
}

// Load reads thresholds from path, falling back to the embedded defaults
// when path is empty.
func Load(path string) (*Thresholds, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = resources.FS.ReadFile("policy.yaml")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read policy")
	}

	t := &Thresholds{}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, errors.Wrap(err, "parse policy")
	}
	return t, t.validate()
}

func (t *Thresholds) validate() error {
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return errors.Errorf("confidence threshold %v out of [0,1]", t.ConfidenceThreshold)
	}
	for name, v := range map[string]float64{
		"suspend": t.SuspendThreshold,
		"ban":     t.BanThreshold,
		"report":  t.ReportThreshold,
	} {
		if v < 0 || v > 100 {
			return errors.Errorf("%s threshold %v out of [0,100]", name, v)
		}
	}
	if t.SuspensionDays < 0 {
		return errors.Errorf("suspension days %d is negative", t.SuspensionDays)
	}
	return nil
}

// HighConfidence reports whether a conversation verdict is grooming
// suspected at or above the confidence threshold.
func (t *Thresholds) HighConfidence(conv *store.Conversation) bool {
	return conv.GroomingSuspected && conv.ConfidenceScore >= t.ConfidenceThreshold
}

// Evaluate returns the most severe escalation the user's risk score calls
// for that is not already in effect. Report outranks ban outranks suspend;
// a banned user is never additionally suspended.
func (t *Thresholds) Evaluate(user *store.User) Action {
	switch {
	case user.RiskScore > t.ReportThreshold && !user.ReportedLaw:
		return ActionReportLaw
	case user.RiskScore > t.BanThreshold && !user.Banned:
		return ActionBan
	case user.RiskScore > t.SuspendThreshold && !user.Suspended && !user.Banned:
		return ActionSuspend
	}
	return ActionNone
}
