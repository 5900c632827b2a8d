package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"devevent/internal/domain"
)

const testTimeout = 5 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeEventRepo is an in-memory EventRepository for tests. It enforces slug uniqueness like the store does.
type fakeEventRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Event
	order   []string
	nextID  int
	err     error // if set, every method returns this error
	creates int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Slug == e.Slug {
			return domain.ErrDuplicateSlug
		}
	}
	e.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.byID[f.order[i]])
	}
	return out, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*domain.Booking
	err      error
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	b.ID = fmt.Sprintf("bk-%d", len(f.bookings)+1)
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeBookingRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, b := range f.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

type fakeImageStore struct {
	url    string
	err    error
	calls  int
	folder string
}

func (f *fakeImageStore) Store(ctx context.Context, data []byte, folder string) (string, error) {
	f.calls++
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeEmailService struct {
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return nil
}

type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.name = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}

func validInput() *domain.EventInput {
	return &domain.EventInput{
		Title:       "KubeCon + CloudNativeCon!",
		Description: "Cloud native conference",
		Overview:    "Three days of cloud native talks",
		Image:       "https://cdn.example.com/kubecon.png",
		Venue:       "Excel",
		Location:    "London, UK",
		Date:        "2026-04-01",
		Time:        "09:00",
		Mode:        "Hybrid",
		Audience:    "Platform engineers",
		Agenda:      []string{"Keynotes", "Breakouts"},
		Organizer:   "CNCF",
		Tags:        []string{"kubernetes", "cloud"},
	}
}
