// Package replyengine turns inbound Instagram messages into automated
// replies using the account's configured rules.
package replyengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/replyflow/replyflow/internal/instagram"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// Repository is the storage surface the engine needs.
type Repository interface {
	GetIGAccountByIGUserID(ctx context.Context, igUserID string) (*models.IGAccount, error)
	ListReplies(ctx context.Context, igAccountID int) ([]*models.Reply, error)
	AppendExecutionLog(ctx context.Context, userUID, message string) error
}

// Membership resolves the effective tier; FREE accounts get no
// automation.
type Membership interface {
	EffectiveMembership(ctx context.Context, userUID string) (string, error)
}

// Sender delivers a reply through the Graph API.
type Sender interface {
	SendReply(ctx context.Context, accessToken string, msg instagram.SendMessageRequest) error
}

// Engine processes inbound messaging events.
type Engine struct {
	repo       Repository
	membership Membership
	sender     Sender
	log        *slog.Logger
}

// New creates the engine.
func New(repo Repository, membership Membership, sender Sender, log *slog.Logger) *Engine {
	return &Engine{
		repo:       repo,
		membership: membership,
		sender:     sender,
		log:        log,
	}
}

// HandleMessage processes one inbound direct message for the account
// with the given Graph API id. Events for unconnected accounts and
// messages matching no rule are dropped silently; send failures are
// written to the execution log and returned.
func (e *Engine) HandleMessage(ctx context.Context, igUserID string, ev instagram.MessagingEvent) error {
	const op = "replyengine.HandleMessage"
	log := e.log.With(slog.String("op", op), slog.String("ig_user_id", igUserID))

	account, err := e.repo.GetIGAccountByIGUserID(ctx, igUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("message for unconnected account, ignoring")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	tier, err := e.membership.EffectiveMembership(ctx, account.UserUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tier == models.MembershipFree {
		log.Info("free tier, automation disabled", slog.String("user_uid", account.UserUID))
		return nil
	}

	rules, err := e.repo.ListReplies(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rule, ok := Match(rules, ev.Message.Text)
	if !ok {
		return nil
	}

	msg := instagram.SendMessageRequest{
		Recipient: instagram.Recipient{ID: ev.Sender.ID},
		Message:   instagram.Message{Text: rule.Reply},
	}
	for _, b := range rule.Buttons {
		msg.Message.Buttons = append(msg.Message.Buttons, instagram.ButtonLink{
			Title: b.Title,
			URL:   b.URL,
		})
	}

	if err := e.sender.SendReply(ctx, account.AccessToken, msg); err != nil {
		log.Error("failed to send auto-reply", sl.Err(err),
			slog.String("keyword", rule.Keyword))
		if logErr := e.repo.AppendExecutionLog(ctx, account.UserUID,
			fmt.Sprintf("auto-reply for keyword %q failed: %v", rule.Keyword, err)); logErr != nil {
			log.Error("failed to append execution log", sl.Err(logErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.repo.AppendExecutionLog(ctx, account.UserUID,
		fmt.Sprintf("auto-reply sent for keyword %q to %s", rule.Keyword, ev.Sender.ID)); err != nil {
		log.Error("failed to append execution log", sl.Err(err))
	}
	log.Info("auto-reply sent", slog.String("keyword", rule.Keyword))
	return nil
}
