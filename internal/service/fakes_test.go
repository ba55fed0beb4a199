package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
)

// fakeTxRunner satisfies TxRunner without a database. The fake repositories
// below are safe for concurrent use on their own, so the transaction is a
// plain function call.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// fakeTicketStore is an in-memory TicketRepository with the same
// compare-and-swap update semantics as the SQL implementation. onLoad, when
// set, runs after every GetByID and lets tests force interleavings.
type fakeTicketStore struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
	onLoad  func()
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: map[string]domain.Ticket{}}
}

func (f *fakeTicketStore) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	f.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (f *fakeTicketStore) Update(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	f.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (f *fakeTicketStore) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	stored, ok := f.tickets[id]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if f.onLoad != nil {
		f.onLoad()
	}
	ticket := cloneTicket(stored)
	return &ticket, nil
}

func (f *fakeTicketStore) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []domain.Ticket{}
	for i := 1; i <= f.seq; i++ {
		stored, ok := f.tickets[fmt.Sprintf("ticket-%d", i)]
		if !ok {
			continue
		}
		if filter.CreatedByID != nil && stored.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.AssignedTeamID != nil && (stored.AssignedTeamID == nil || *stored.AssignedTeamID != *filter.AssignedTeamID) {
			continue
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		result = append(result, cloneTicket(stored))
	}
	return result, nil
}

func (f *fakeTicketStore) WithTx(tx pgx.Tx) repository.TicketRepository {
	return f
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.History = append(domain.History{}, t.History...)
	return t
}

type fakeTeamStore struct {
	teams []domain.Team
}

func (f *fakeTeamStore) Create(ctx context.Context, team *domain.Team) error {
	team.ID = fmt.Sprintf("team-%d", len(f.teams)+1)
	f.teams = append(f.teams, *team)
	return nil
}

func (f *fakeTeamStore) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	for i := range f.teams {
		if f.teams[i].ID == id {
			team := f.teams[i]
			return &team, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeamStore) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	for i := range f.teams {
		if f.teams[i].Name == name {
			team := f.teams[i]
			return &team, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeamStore) List(ctx context.Context, limit, offset int) ([]domain.Team, error) {
	return append([]domain.Team{}, f.teams...), nil
}

type fakeCommentStore struct {
	comments []domain.Comment
	failWith error
}

func (f *fakeCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if f.failWith != nil {
		return f.failWith
	}
	comment.ID = fmt.Sprintf("comment-%d", len(f.comments)+1)
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentStore) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	result := []domain.Comment{}
	for _, c := range f.comments {
		if c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	return result, nil
}

type fakeUserStore struct {
	users []domain.User
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return append([]domain.User{}, f.users...), nil
}

func (f *fakeUserStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	result := []domain.User{}
	for _, u := range f.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUserStore) ListByTeam(ctx context.Context, teamID string) ([]domain.User, error) {
	result := []domain.User{}
	for _, u := range f.users {
		if u.TeamID != nil && *u.TeamID == teamID {
			result = append(result, u)
		}
	}
	return result, nil
}

type fakeNotificationStore struct {
	notifications []domain.Notification
	failWith      error
}

func (f *fakeNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	if f.failWith != nil {
		return f.failWith
	}
	notification.ID = fmt.Sprintf("notification-%d", len(f.notifications)+1)
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationStore) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	result := []domain.Notification{}
	for i := len(f.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		if f.notifications[i].RecipientID == recipientID {
			result = append(result, f.notifications[i])
		}
	}
	return result, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, recipientID string) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].RecipientID == recipientID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationStore) byRecipient(recipientID string) []domain.Notification {
	result := []domain.Notification{}
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	return result
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	events   []events.Event
	handlers []events.EventHandler
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	handlers := append([]events.EventHandler{}, d.handlers...)
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
