package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"meetpoll/internal/domain"
)

type notificationRouter struct {
	userRepo     domain.UserRepository
	messenger    domain.Messenger
	emailService domain.EmailService
	baseURL      string
	logger       *slog.Logger
}

// NewNotificationRouter returns a Notifier that dispatches a private message to
// in-network users and an email to everyone else. baseURL is used to build the
// event link from its uuid.
func NewNotificationRouter(
	userRepo domain.UserRepository,
	messenger domain.Messenger,
	emailService domain.EmailService,
	baseURL string,
	logger *slog.Logger,
) domain.Notifier {
	return &notificationRouter{
		userRepo:     userRepo,
		messenger:    messenger,
		emailService: emailService,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

func (n *notificationRouter) NotifyInvitee(ctx context.Context, event *domain.Event, invitee domain.Invitee) error {
	return n.dispatch(ctx, event, invitee, false)
}

func (n *notificationRouter) RemindInvitee(ctx context.Context, event *domain.Event, invitee domain.Invitee) error {
	return n.dispatch(ctx, event, invitee, true)
}

// dispatch recomputes the channel decision on every call. The organizer is
// reloaded so the network id is current at dispatch time, not at invite time.
func (n *notificationRouter) dispatch(ctx context.Context, event *domain.Event, invitee domain.Invitee, reminder bool) error {
	organizer, err := n.userRepo.GetByID(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("get organizer: %w", err)
	}

	eventURL := n.eventURL(event)

	if invitee.Type == domain.InviteeTypeUser && organizer.InNetwork(invitee.User) {
		text := fmt.Sprintf("%s invited you to pick a time for %q: %s", organizer.Name, event.Name, eventURL)
		if reminder {
			text = fmt.Sprintf("Reminder from %s: pick a time for %q: %s", organizer.Name, event.Name, eventURL)
		}
		if err := n.messenger.SendPrivateMessage(ctx, organizer, invitee.User, text); err != nil {
			return fmt.Errorf("send private message: %w", err)
		}
		return nil
	}

	to := invitee.Email()
	if to == "" {
		return fmt.Errorf("invitee %s/%s has no email address", invitee.Type, invitee.ID())
	}
	if reminder {
		data := &domain.ReminderEmailData{
			Email:       to,
			InviteeName: invitee.Name(),
			SenderName:  organizer.Name,
			EventName:   event.Name,
			EventURL:    eventURL,
		}
		if err := n.emailService.SendReminder(ctx, data); err != nil {
			return fmt.Errorf("send reminder email: %w", err)
		}
		return nil
	}
	data := &domain.InvitationEmailData{
		Email:       to,
		InviteeName: invitee.Name(),
		SenderName:  organizer.Name,
		EventName:   event.Name,
		EventURL:    eventURL,
	}
	if err := n.emailService.SendInvitation(ctx, data); err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}
	return nil
}

func (n *notificationRouter) PostActivity(ctx context.Context, actor *domain.User, action string, event *domain.Event) {
	if err := n.messenger.PostActivity(ctx, actor, action, event); err != nil {
		n.logger.Warn("activity story failed", "action", action, "event_uuid", event.UUID, "err", err)
		return
	}
	n.logger.Info("activity story posted", "action", action, "event_uuid", event.UUID)
}

func (n *notificationRouter) eventURL(event *domain.Event) string {
	return fmt.Sprintf("%s/events/%s", n.baseURL, event.UUID)
}
