package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"meetpoll/internal/domain"
)

type invitationService struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	guestRepo      domain.GuestRepository
	groupRepo      domain.GroupRepository
	directory      domain.Directory
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewInvitationService(
	eventRepo domain.EventRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	guestRepo domain.GuestRepository,
	groupRepo domain.GroupRepository,
	directory domain.Directory,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		guestRepo:      guestRepo,
		groupRepo:      groupRepo,
		directory:      directory,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *invitationService) Invite(ctx context.Context, eventID string, descriptor domain.InviteeDescriptor) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	invitee, err := s.ResolveInvitee(ctx, event, descriptor)
	if err != nil {
		return nil, err
	}

	inv, err := s.create(ctx, event, invitee, false)
	if err != nil {
		return nil, err
	}

	// The invitation row is committed; delivery is best effort from here on.
	if err := s.notifier.NotifyInvitee(ctx, event, invitee); err != nil {
		s.logger.Warn("invitation notification failed",
			"event_uuid", event.UUID,
			"invitee_type", invitee.Type,
			"invitee_id", invitee.ID(),
			"err", err,
		)
	}
	return inv, nil
}

func (s *invitationService) InviteWithoutNotification(ctx context.Context, event *domain.Event, invitee domain.Invitee) (*domain.Invitation, error) {
	return s.create(ctx, event, invitee, true)
}

// create runs the lifecycle checks in order: invitee present, not the owner,
// not already invited, then persists. The repository's unique index backs the
// duplicate pre-check, so a racing create still surfaces ErrDuplicateInvite.
func (s *invitationService) create(ctx context.Context, event *domain.Event, invitee domain.Invitee, skipNotification bool) (*domain.Invitation, error) {
	if !invitee.Valid() {
		return nil, fmt.Errorf("%w: invitee is invalid", domain.ErrInvalidInput)
	}
	if invitee.Type == domain.InviteeTypeUser && invitee.User.ID == event.OwnerID && !skipNotification {
		return nil, domain.ErrSelfInvite
	}

	exists, err := s.invitationRepo.Exists(ctx, event.ID, invitee.Type, invitee.ID())
	if err != nil {
		return nil, fmt.Errorf("check existing invitation: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateInvite
	}

	inv := &domain.Invitation{
		EventID:          event.ID,
		InviteeType:      invitee.Type,
		InviteeID:        invitee.ID(),
		CreatedAt:        time.Now(),
		SkipNotification: skipNotification,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvite) {
			return nil, domain.ErrDuplicateInvite
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

// ResolveInvitee turns the loosely-typed descriptor into exactly one canonical
// invitee record. Priority order: external user id, external group id, email.
func (s *invitationService) ResolveInvitee(ctx context.Context, event *domain.Event, descriptor domain.InviteeDescriptor) (domain.Invitee, error) {
	switch {
	case descriptor.YammerUserID != "":
		return s.resolveUser(ctx, event, descriptor.YammerUserID)
	case descriptor.YammerGroupID != "":
		return s.resolveGroup(ctx, descriptor.YammerGroupID, descriptor.NameOrEmail)
	default:
		return s.resolveByEmail(ctx, descriptor.NameOrEmail)
	}
}

// resolveUser finds or creates the platform user through the directory, using
// the event creator's credentials. The creator's session holds the API
// authority, not the invitee's.
func (s *invitationService) resolveUser(ctx context.Context, event *domain.Event, yammerUserID string) (domain.Invitee, error) {
	creator, err := s.userRepo.GetByID(ctx, event.OwnerID)
	if err != nil {
		return domain.Invitee{}, fmt.Errorf("get event creator: %w", err)
	}
	creds := domain.Credentials{
		AccessToken: creator.AccessToken,
		Staging:     creator.YammerStaging,
	}
	user, err := s.directory.FindOrCreateUserByAuth(ctx, creds, yammerUserID)
	if err != nil {
		return domain.Invitee{}, fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
	}
	return domain.UserInvitee(user), nil
}

func (s *invitationService) resolveGroup(ctx context.Context, yammerGroupID, name string) (domain.Invitee, error) {
	group, err := s.directory.FindOrCreateGroup(ctx, yammerGroupID, name)
	if err != nil {
		return domain.Invitee{}, fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
	}
	return domain.GroupInvitee(group), nil
}

// resolveByEmail checks for an existing user, then an existing guest, and
// finally creates a new guest. Guest creation bypasses name validation since
// only an email may be known.
func (s *invitationService) resolveByEmail(ctx context.Context, nameOrEmail string) (domain.Invitee, error) {
	email := strings.TrimSpace(strings.ToLower(nameOrEmail))
	if email == "" {
		return domain.Invitee{}, fmt.Errorf("%w: invitee email is required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return domain.UserInvitee(user), nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrNotFound) {
		return domain.Invitee{}, fmt.Errorf("get user by email: %w", err)
	}

	guest, err := s.guestRepo.GetByEmail(ctx, email)
	if err == nil {
		return domain.GuestInvitee(guest), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Invitee{}, fmt.Errorf("get guest by email: %w", err)
	}

	guest, err = s.guestRepo.CreateWithoutName(ctx, email)
	if err != nil {
		return domain.Invitee{}, fmt.Errorf("create guest: %w", err)
	}
	return domain.GuestInvitee(guest), nil
}

func (s *invitationService) DeliverReminder(ctx context.Context, inv *domain.Invitation) error {
	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	invitee, err := s.GetInvitee(ctx, inv)
	if err != nil {
		return fmt.Errorf("get invitee: %w", err)
	}
	if err := s.notifier.RemindInvitee(ctx, event, invitee); err != nil {
		return fmt.Errorf("remind invitee: %w", err)
	}
	return nil
}

func (s *invitationService) GetInvitee(ctx context.Context, inv *domain.Invitation) (domain.Invitee, error) {
	switch inv.InviteeType {
	case domain.InviteeTypeUser:
		user, err := s.userRepo.GetByID(ctx, inv.InviteeID)
		if err != nil {
			return domain.Invitee{}, err
		}
		return domain.UserInvitee(user), nil
	case domain.InviteeTypeGuest:
		guest, err := s.guestRepo.GetByID(ctx, inv.InviteeID)
		if err != nil {
			return domain.Invitee{}, err
		}
		return domain.GuestInvitee(guest), nil
	case domain.InviteeTypeGroup:
		group, err := s.groupRepo.GetByID(ctx, inv.InviteeID)
		if err != nil {
			return domain.Invitee{}, err
		}
		return domain.GroupInvitee(group), nil
	}
	return domain.Invitee{}, fmt.Errorf("%w: unknown invitee type %q", domain.ErrInvalidInput, inv.InviteeType)
}

func (s *invitationService) ListInvitations(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invs, total, err := s.invitationRepo.ListByEventIDPaginated(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}
