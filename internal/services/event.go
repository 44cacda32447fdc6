package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"meetpoll/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	suggestionRepo domain.SuggestionRepository
	voteRepo       domain.VoteRepository
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	guestRepo      domain.GuestRepository
	invitationSvc  domain.InvitationService
	notifier       domain.Notifier
	jobQueue       domain.JobQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	suggestionRepo domain.SuggestionRepository,
	voteRepo domain.VoteRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	guestRepo domain.GuestRepository,
	invitationSvc domain.InvitationService,
	notifier domain.Notifier,
	jobQueue domain.JobQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		suggestionRepo: suggestionRepo,
		voteRepo:       voteRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		guestRepo:      guestRepo,
		invitationSvc:  invitationSvc,
		notifier:       notifier,
		jobQueue:       jobQueue,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// eventUUIDBytes is the number of random bytes behind the 8-hex-char uuid.
const eventUUIDBytes = 4

func generateEventUUID() (string, error) {
	b := make([]byte, eventUUIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// liveSuggestions drops removed and blank entries from the change list.
func liveSuggestions(changes []domain.SuggestionChange) []domain.SuggestionChange {
	var live []domain.SuggestionChange
	for _, c := range changes {
		if c.Remove || strings.TrimSpace(c.Description) == "" {
			continue
		}
		live = append(live, c)
	}
	return live
}

func (s *eventService) CreateEvent(ctx context.Context, ownerID, name string, suggestions []domain.SuggestionChange, invitations []domain.InviteeDescriptor) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ve := domain.NewValidationError()
	if strings.TrimSpace(name) == "" {
		ve.Add("name", "This field is required")
	} else if len([]rune(name)) > domain.EventNameMaxLength {
		ve.Add("name", fmt.Sprintf("is too long (maximum is %d characters)", domain.EventNameMaxLength))
	}
	if ownerID == "" {
		ve.Add("owner", "This field is required")
	}
	live := liveSuggestions(suggestions)
	if len(live) == 0 {
		ve.Add("suggestions", "An event must have at least one suggestion")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	uuid, err := generateEventUUID()
	if err != nil {
		return nil, fmt.Errorf("generate event uuid: %w", err)
	}

	now := time.Now()
	event := &domain.Event{
		UUID:      uuid,
		Name:      name,
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rows := make([]*domain.Suggestion, 0, len(live))
	for i, c := range live {
		rows = append(rows, domain.NewSuggestion("", c.Description, i, now))
	}
	if err := s.eventRepo.CreateWithSuggestions(ctx, event, rows); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	// Side effects run only after the event and its suggestions are committed.
	s.jobQueue.EnqueueEventCreated(event)

	// The event is already committed at this point; a failed owner
	// self-invitation leaves a usable event, so it is logged, not returned.
	if _, err := s.invitationSvc.InviteWithoutNotification(ctx, event, domain.UserInvitee(owner)); err != nil {
		s.logger.ErrorContext(ctx, "owner self-invitation failed",
			"event_uuid", event.UUID, "error", err)
	}

	// Invitations submitted with the event are best effort: the event is
	// already committed, so a bad descriptor is logged, not fatal.
	for _, desc := range invitations {
		if _, err := s.invitationSvc.Invite(ctx, event.ID, desc); err != nil {
			s.logger.WarnContext(ctx, "invitation at event creation failed",
				"event_uuid", event.UUID, "error", err)
		}
	}

	s.notifier.PostActivity(ctx, owner, "create", event)

	return event, nil
}

func (s *eventService) GetEventByUUID(ctx context.Context, uuid string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOwnerID(ctx, ownerID)
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	// Suggestions, votes, and invitations go with the event.
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) UpdateSuggestions(ctx context.Context, eventID, ownerID string, changes []domain.SuggestionChange) ([]*domain.Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	current, err := s.suggestionRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	if countSurviving(current, changes) == 0 {
		ve := domain.NewValidationError()
		ve.Add("suggestions", "An event must have at least one suggestion")
		return nil, ve
	}

	updated, err := s.suggestionRepo.ApplyChanges(ctx, eventID, changes)
	if err != nil {
		return nil, fmt.Errorf("apply suggestion changes: %w", err)
	}

	if owner, err := s.userRepo.GetByID(ctx, ownerID); err == nil {
		s.notifier.PostActivity(ctx, owner, "update", event)
	}

	return updated, nil
}

// countSurviving simulates the diff against the current rows: kept rows minus
// removals plus non-blank additions.
func countSurviving(current []*domain.Suggestion, changes []domain.SuggestionChange) int {
	removed := make(map[string]bool)
	for _, c := range changes {
		if c.Remove && c.ID != "" {
			removed[c.ID] = true
		}
	}
	n := 0
	for _, sug := range current {
		if !removed[sug.ID] {
			n++
		}
	}
	for _, c := range changes {
		if c.ID == "" && !c.Remove && strings.TrimSpace(c.Description) != "" {
			n++
		}
	}
	return n
}

func (s *eventService) Invitees(ctx context.Context, eventID string) ([]domain.InviteeProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invs, err := s.invitationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	type entry struct {
		profile   domain.InviteeProfile
		createdAt time.Time
	}
	var entries []entry
	for _, inv := range invs {
		switch inv.InviteeType {
		case domain.InviteeTypeUser:
			user, err := s.userRepo.GetByID(ctx, inv.InviteeID)
			if err != nil {
				return nil, fmt.Errorf("get invited user: %w", err)
			}
			entries = append(entries, entry{
				profile:   domain.InviteeProfile{Name: user.Name, Email: user.Email},
				createdAt: inv.CreatedAt,
			})
		case domain.InviteeTypeGuest:
			guest, err := s.guestRepo.GetByID(ctx, inv.InviteeID)
			if err != nil {
				return nil, fmt.Errorf("get invited guest: %w", err)
			}
			entries = append(entries, entry{
				profile:   domain.InviteeProfile{Name: guest.Name, Email: guest.Email},
				createdAt: inv.CreatedAt,
			})
		case domain.InviteeTypeGroup:
			// Groups are excluded from the invitee view.
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})

	profiles := make([]domain.InviteeProfile, 0, len(entries))
	for _, e := range entries {
		profiles = append(profiles, e.profile)
	}
	return profiles, nil
}

func (s *eventService) DeliverReminders(ctx context.Context, eventID, excludingUserID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invs, err := s.invitationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("list invitations: %w", err)
	}
	for _, inv := range invs {
		if inv.InviteeType == domain.InviteeTypeUser && inv.InviteeID == excludingUserID {
			continue
		}
		if err := s.invitationSvc.DeliverReminder(ctx, inv); err != nil {
			s.logger.Warn("reminder delivery failed",
				"event_id", eventID,
				"invitee_type", inv.InviteeType,
				"invitee_id", inv.InviteeID,
				"err", err,
			)
		}
	}
	return nil
}

func (s *eventService) UserOwnsEvent(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	return event.OwnerID == userID, nil
}

func (s *eventService) UserIsInvited(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invited, err := s.invitationRepo.Exists(ctx, eventID, domain.InviteeTypeUser, userID)
	if err != nil {
		return false, fmt.Errorf("check invitation: %w", err)
	}
	return invited, nil
}

func (s *eventService) UserHasVoted(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	voted, err := s.voteRepo.HasVotedOnEvent(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("check votes: %w", err)
	}
	return voted, nil
}

func (s *eventService) CastVote(ctx context.Context, eventID, suggestionID, userID string) (*domain.Vote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sug, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get suggestion: %w", err)
	}
	if sug.EventID != eventID {
		return nil, domain.ErrNotFound
	}

	voted, err := s.voteRepo.HasVotedOnSuggestion(ctx, suggestionID, userID)
	if err != nil {
		return nil, fmt.Errorf("check vote: %w", err)
	}
	if voted {
		return nil, fmt.Errorf("%w: already voted for this suggestion", domain.ErrInvalidInput)
	}

	vote := &domain.Vote{
		UserID:       userID,
		SuggestionID: suggestionID,
		CreatedAt:    time.Now(),
	}
	if err := s.voteRepo.Create(ctx, vote); err != nil {
		return nil, fmt.Errorf("create vote: %w", err)
	}
	return vote, nil
}
