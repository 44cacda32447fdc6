package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"meetpoll/internal/domain"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*domain.Event
	byUUID map[string]*domain.Event
	err    error

	createdSuggestions map[string][]*domain.Suggestion
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:               make(map[string]*domain.Event),
		byUUID:             make(map[string]*domain.Event),
		createdSuggestions: make(map[string][]*domain.Suggestion),
	}
}

func (f *fakeEventRepo) CreateWithSuggestions(ctx context.Context, event *domain.Event, suggestions []*domain.Suggestion) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	event.ID = fmt.Sprintf("event-%d", f.seq)
	for i, s := range suggestions {
		s.ID = fmt.Sprintf("%s-sug-%d", event.ID, i+1)
		s.EventID = event.ID
	}
	f.byID[event.ID] = event
	f.byUUID[event.UUID] = event
	f.createdSuggestions[event.ID] = suggestions
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) GetByUUID(ctx context.Context, uuid string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.byUUID[uuid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, ev := range f.byID {
		if ev.OwnerID == ownerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	ev, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byUUID, ev.UUID)
	return nil
}

// add seeds an event directly, bypassing Create.
func (f *fakeEventRepo) add(ev *domain.Event) {
	f.byID[ev.ID] = ev
	f.byUUID[ev.UUID] = ev
}

type fakeSuggestionRepo struct {
	byID    map[string]*domain.Suggestion
	byEvent map[string][]*domain.Suggestion
	err     error

	appliedChanges []domain.SuggestionChange
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{
		byID:    make(map[string]*domain.Suggestion),
		byEvent: make(map[string][]*domain.Suggestion),
	}
}

func (f *fakeSuggestionRepo) add(s *domain.Suggestion) {
	f.byID[s.ID] = s
	f.byEvent[s.EventID] = append(f.byEvent[s.EventID], s)
}

func (f *fakeSuggestionRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEvent[eventID], nil
}

func (f *fakeSuggestionRepo) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSuggestionRepo) ApplyChanges(ctx context.Context, eventID string, changes []domain.SuggestionChange) ([]*domain.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.appliedChanges = append(f.appliedChanges, changes...)
	for _, c := range changes {
		switch {
		case c.Remove && c.ID != "":
			if s, ok := f.byID[c.ID]; ok {
				delete(f.byID, c.ID)
				kept := f.byEvent[eventID][:0]
				for _, cur := range f.byEvent[eventID] {
					if cur.ID != s.ID {
						kept = append(kept, cur)
					}
				}
				f.byEvent[eventID] = kept
			}
		case c.ID != "":
			if s, ok := f.byID[c.ID]; ok {
				s.Description = c.Description
			}
		case strings.TrimSpace(c.Description) != "":
			s := &domain.Suggestion{
				ID:          fmt.Sprintf("sug-new-%d", len(f.byID)+1),
				EventID:     eventID,
				Description: c.Description,
				Position:    len(f.byEvent[eventID]),
			}
			f.add(s)
		}
	}
	return f.byEvent[eventID], nil
}

type fakeVoteRepo struct {
	votes []*domain.Vote
	err   error
}

func (f *fakeVoteRepo) Create(ctx context.Context, vote *domain.Vote) error {
	if f.err != nil {
		return f.err
	}
	vote.ID = fmt.Sprintf("vote-%d", len(f.votes)+1)
	f.votes = append(f.votes, vote)
	return nil
}

func (f *fakeVoteRepo) HasVotedOnEvent(ctx context.Context, eventID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, v := range f.votes {
		if v.UserID == userID && strings.HasPrefix(v.SuggestionID, eventID+"-") {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteRepo) HasVotedOnSuggestion(ctx context.Context, suggestionID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, v := range f.votes {
		if v.UserID == userID && v.SuggestionID == suggestionID {
			return true, nil
		}
	}
	return false, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations []*domain.Invitation
	createErr   error
	existsErr   error
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.invitations {
		if existing.EventID == inv.EventID && existing.InviteeType == inv.InviteeType && existing.InviteeID == inv.InviteeID {
			return domain.ErrDuplicateInvite
		}
	}
	inv.ID = fmt.Sprintf("inv-%d", len(f.invitations)+1)
	f.invitations = append(f.invitations, inv)
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for i := len(f.invitations) - 1; i >= 0; i-- {
		if f.invitations[i].EventID == eventID {
			out = append(out, f.invitations[i])
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) ListByEventIDPaginated(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	all, err := f.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeInvitationRepo) Exists(ctx context.Context, eventID string, inviteeType domain.InviteeType, inviteeID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, inv := range f.invitations {
		if inv.EventID == eventID && inv.InviteeType == inviteeType && inv.InviteeID == inviteeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationRepo) forEvent(eventID string) []*domain.Invitation {
	var out []*domain.Invitation
	for _, inv := range f.invitations {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out
}

type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) {
	f.byID[u.ID] = u
	if u.Email != "" {
		f.byEmail[u.Email] = u
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	user.ID = fmt.Sprintf("user-%d", len(f.byID)+1)
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByYammerUserID(ctx context.Context, yammerUserID string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.YammerUserID == yammerUserID {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	f.add(user)
	return nil
}

type fakeGuestRepo struct {
	seq     int
	byID    map[string]*domain.Guest
	byEmail map[string]*domain.Guest
	err     error
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{
		byID:    make(map[string]*domain.Guest),
		byEmail: make(map[string]*domain.Guest),
	}
}

func (f *fakeGuestRepo) CreateWithoutName(ctx context.Context, email string) (*domain.Guest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	g := &domain.Guest{ID: fmt.Sprintf("guest-%d", f.seq), Email: email}
	f.byID[g.ID] = g
	f.byEmail[g.Email] = g
	return g, nil
}

func (f *fakeGuestRepo) GetByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	g, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

type fakeGroupRepo struct {
	byID       map[string]*domain.Group
	byYammerID map[string]*domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		byID:       make(map[string]*domain.Group),
		byYammerID: make(map[string]*domain.Group),
	}
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *domain.Group) error {
	group.ID = fmt.Sprintf("group-%d", len(f.byID)+1)
	f.byID[group.ID] = group
	f.byYammerID[group.YammerGroupID] = group
	return nil
}

func (f *fakeGroupRepo) GetByYammerGroupID(ctx context.Context, yammerGroupID string) (*domain.Group, error) {
	g, ok := f.byYammerID[yammerGroupID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// fakeDirectory resolves external ids from preloaded maps and records the
// credentials it was called with.
type fakeDirectory struct {
	usersByYammerID map[string]*domain.User
	groupsByID      map[string]*domain.Group
	err             error

	lastCreds  domain.Credentials
	userCalls  int
	groupCalls int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		usersByYammerID: make(map[string]*domain.User),
		groupsByID:      make(map[string]*domain.Group),
	}
}

func (f *fakeDirectory) FindOrCreateUserByAuth(ctx context.Context, creds domain.Credentials, yammerUserID string) (*domain.User, error) {
	f.userCalls++
	f.lastCreds = creds
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.usersByYammerID[yammerUserID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeDirectory) FindOrCreateGroup(ctx context.Context, yammerGroupID, name string) (*domain.Group, error) {
	f.groupCalls++
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.groupsByID[yammerGroupID]
	if !ok {
		g = &domain.Group{ID: "group-" + yammerGroupID, Name: name, YammerGroupID: yammerGroupID}
		f.groupsByID[yammerGroupID] = g
	}
	return g, nil
}

func (f *fakeDirectory) FindUserByEmail(ctx context.Context, creds domain.Credentials, email string) (*domain.User, error) {
	f.lastCreds = creds
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.usersByYammerID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// fakeNotifier records every dispatch instead of delivering.
type fakeNotifier struct {
	notifyErr error

	notified   []domain.Invitee
	reminded   []domain.Invitee
	activities []string
}

func (f *fakeNotifier) NotifyInvitee(ctx context.Context, event *domain.Event, invitee domain.Invitee) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, invitee)
	return nil
}

func (f *fakeNotifier) RemindInvitee(ctx context.Context, event *domain.Event, invitee domain.Invitee) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.reminded = append(f.reminded, invitee)
	return nil
}

func (f *fakeNotifier) PostActivity(ctx context.Context, actor *domain.User, action string, event *domain.Event) {
	f.activities = append(f.activities, action)
}

type fakeJobQueue struct {
	enqueued []*domain.Event
}

func (f *fakeJobQueue) EnqueueEventCreated(event *domain.Event) {
	f.enqueued = append(f.enqueued, event)
}

// sentMessage is one private message recorded by fakeMessenger.
type sentMessage struct {
	senderID    string
	recipientID string
	text        string
}

type fakeMessenger struct {
	sendErr     error
	activityErr error

	messages   []sentMessage
	activities []string
}

func (f *fakeMessenger) SendPrivateMessage(ctx context.Context, sender, recipient *domain.User, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, sentMessage{senderID: sender.ID, recipientID: recipient.ID, text: text})
	return nil
}

func (f *fakeMessenger) PostActivity(ctx context.Context, actor *domain.User, action string, event *domain.Event) error {
	if f.activityErr != nil {
		return f.activityErr
	}
	f.activities = append(f.activities, action)
	return nil
}

type fakeEmailService struct {
	sendErr error

	invitations []*domain.InvitationEmailData
	reminders   []*domain.ReminderEmailData
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendReminder(ctx context.Context, data *domain.ReminderEmailData) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.reminders = append(f.reminders, data)
	return nil
}
