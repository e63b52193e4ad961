package event

import (
	"time"

	"github.com/pborman/uuid"
)

const TypeRiskChanged = "risk_changed"

// riskChangedTTL bounds how long an unconsumed risk notification stays
// relevant; a stale score will be superseded by the next message anyway.
const riskChangedTTL = 10 * time.Minute

// RiskChanged is emitted after a conversation is logged and the user's risk
// score recomputed. SuggestedAction carries the policy verdict so alerting
// subscribers need not re-evaluate thresholds.
type RiskChanged struct {
	*Base

	EventID         string
	UserID          string
	MessageID       string
	RiskScore       float64
	SuggestedAction string
}

func NewRiskChanged(userID, messageID string, riskScore float64, suggestedAction string) *RiskChanged {
	return &RiskChanged{
		Base:            CreateBase(TypeRiskChanged, time.Now().Add(riskChangedTTL)),
		EventID:         uuid.New(),
		UserID:          userID,
		MessageID:       messageID,
		RiskScore:       riskScore,
		SuggestedAction: suggestedAction,
	}
}
