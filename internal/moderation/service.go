package moderation

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/wavechat/modstore/internal/errors"
	"github.com/wavechat/modstore/internal/event"
	"github.com/wavechat/modstore/internal/observability"
	"github.com/wavechat/modstore/internal/policy"
	"github.com/wavechat/modstore/internal/store"
)

// Service is the write path of the moderation store: it persists classifier
// output, keeps the per-user risk score current and surfaces the policy
// escalation each write implies. It never applies an escalation on its own;
// that stays with the moderation front end.
var tracer = otel.Tracer("modstore/moderation")

type Service struct {
	client     store.Client
	thresholds *policy.Thresholds
	logger     *log.Entry
}

func NewService(client store.Client, thresholds *policy.Thresholds) *Service {
	return &Service{
		client:     client,
		thresholds: thresholds,
		logger:     log.WithField("service", "moderation"),
	}
}

// RegisterUser inserts the user on first interaction. Re-registering an
// existing user is a no-op.
func (s *Service) RegisterUser(ctx context.Context, userID string, profileName string, age int64) error {
	defer observability.TimeStoreOp("register_user")()

	err := s.client.AddUser(ctx, &store.User{
		UserID:      userID,
		ProfileName: profileName,
		Age:         store.AgeOf(age),
	})
	if errors.Is(err, store.ErrUserExists) {
		return nil
	}
	return errors.Wrap(err, "register user")
}

// LogConversation persists a scored message record, recomputes the author's
// risk score and returns the escalation the new score calls for.
func (s *Service) LogConversation(ctx context.Context, conv *store.Conversation, mlRiskScore float64) (policy.Action, error) {
	defer observability.TimeStoreOp("log_conversation")()
	ctx, span := tracer.Start(ctx, "log_conversation")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", conv.UserID),
		attribute.String("message_id", conv.MessageID),
	)
	entry := s.logger.WithField("user_id", conv.UserID).WithField("message_id", conv.MessageID)

	user, err := s.client.LogConversation(ctx, conv, mlRiskScore)
	if err != nil {
		span.RecordError(err)
		entry.WithError(err).Error("failed to log conversation")
		return policy.ActionNone, errors.Wrap(err, "log conversation")
	}
	span.SetAttributes(attribute.Float64("risk_score", user.RiskScore))
	observability.RecordConversationLogged(conv.GroomingSuspected)

	action := s.thresholds.Evaluate(user)
	if action != policy.ActionNone {
		observability.RecordEscalation(string(action))
		entry.WithField("risk_score", user.RiskScore).WithField("action", string(action)).Warn("risk threshold crossed")
	}
	event.Bus.NQ(event.NewRiskChanged(user.UserID, conv.MessageID, user.RiskScore, string(action)))

	return action, nil
}

// ApplyAction translates a policy verdict into the matching store update.
func (s *Service) ApplyAction(ctx context.Context, userID string, action policy.Action) error {
	defer observability.TimeStoreOp("apply_action")()
	entry := s.logger.WithField("user_id", userID).WithField("action", string(action))

	var err error
	switch action {
	case policy.ActionNone:
		return nil
	case policy.ActionSuspend:
		err = s.client.SetSuspension(ctx, userID, true, s.thresholds.SuspensionDays)
	case policy.ActionBan:
		err = s.client.SetBanned(ctx, userID, true)
	case policy.ActionReportLaw:
		err = s.client.SetReportedLaw(ctx, userID, true, true)
	default:
		return errors.Wrapf(apperrors.ErrInvalidInput, "unknown action %q", action)
	}
	if err != nil {
		entry.WithError(err).Error("failed to apply action")
		return errors.Wrapf(err, "apply action %s", action)
	}
	entry.Info("applied moderation action")
	return nil
}

// UserStats returns the user row plus their message records in insertion
// order.
func (s *Service) UserStats(ctx context.Context, userID string) (*store.UserStats, error) {
	defer observability.TimeStoreOp("user_stats")()
	stats, err := s.client.GetUserStats(ctx, userID)
	return stats, errors.Wrap(err, "user stats")
}

// TopRisk lists the highest-risk users for review surfaces.
func (s *Service) TopRisk(ctx context.Context, limit int) ([]store.User, error) {
	defer observability.TimeStoreOp("top_risk")()
	users, err := s.client.TopRiskUsers(ctx, limit)
	return users, errors.Wrap(err, "top risk users")
}

// ForgetUser removes a user and, via the schema's cascade, every message
// record attributed to them.
func (s *Service) ForgetUser(ctx context.Context, userID string) error {
	defer observability.TimeStoreOp("forget_user")()
	return errors.Wrap(s.client.DeleteUser(ctx, userID), "forget user")
}
