package sandbox

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agenticauto/autobuilder/internal/automation"
)

var (
	// ErrNotFound is returned for unknown automation IDs
	ErrNotFound = errors.New("automation not found")

	// ErrLimitReached is returned when the hosted limit is exhausted
	ErrLimitReached = errors.New("hosted automation limit reached")

	// ErrEmailTaken is returned by Signup for a registered address
	ErrEmailTaken = errors.New("email already registered")

	// ErrBadCredentials is returned by Login for an unknown email or wrong password
	ErrBadCredentials = errors.New("incorrect email or password")
)

// Store holds everything the sandbox knows, in memory. All methods are safe
// for concurrent use.
type Store struct {
	mu sync.Mutex

	limit  int
	now    func() time.Time
	nextID int

	automations map[string]automation.Automation
	hosted      map[int]automation.HostedAutomation

	// email -> bcrypt hash
	users map[string][]byte
	// token -> email
	tokens map[string]string
}

// NewStore creates an empty store. limit caps the number of hosted
// automations; zero or less uses the free tier limit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = automation.FreeTierLimit
	}
	return &Store{
		limit:       limit,
		now:         time.Now,
		nextID:      1,
		automations: make(map[string]automation.Automation),
		hosted:      make(map[int]automation.HostedAutomation),
		users:       make(map[string][]byte),
		tokens:      make(map[string]string),
	}
}

// Limit returns the hosted automation cap
func (s *Store) Limit() int {
	return s.limit
}

// AddAutomation stores a download-mode automation under a new ID
func (s *Store) AddAutomation(a automation.Automation) automation.Automation {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = automation.Timestamp{Time: s.now().UTC()}
	}
	s.automations[a.ID] = a
	return a
}

// Automations returns every download-mode automation, newest first
func (s *Store) Automations() []automation.Automation {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]automation.Automation, 0, len(s.automations))
	for _, a := range s.automations {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt.Time) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt.Time)
	})
	return list
}

// Automation returns one download-mode automation
func (s *Store) Automation(id string) (automation.Automation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.automations[id]
	if !ok {
		return automation.Automation{}, ErrNotFound
	}
	return a, nil
}

// DeleteAutomation removes a download-mode automation
func (s *Store) DeleteAutomation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.automations[id]; !ok {
		return ErrNotFound
	}
	delete(s.automations, id)
	return nil
}

// AddHosted registers a normalised cloud automation. It fails with
// ErrLimitReached once the store holds limit records, whether active or
// paused.
func (s *Store) AddHosted(req automation.HostedCreateRequest) (automation.HostedAutomation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.hosted) >= s.limit {
		return automation.HostedAutomation{}, ErrLimitReached
	}

	cfg := map[string]any{
		automation.FieldURL:         req.Config.URL,
		automation.FieldCSSSelector: req.Config.CSSSelector,
	}
	if req.Config.DiscordWebhook != "" {
		cfg["discord_webhook"] = req.Config.DiscordWebhook
	}
	if req.Config.Email != "" {
		cfg[automation.FieldEmail] = req.Config.Email
	}

	h := automation.HostedAutomation{
		ID:              s.nextID,
		AutomationType:  req.AutomationType,
		Name:            req.Name,
		Config:          cfg,
		IntervalMinutes: req.IntervalMinutes,
		IsActive:        true,
		CreatedAt:       automation.Timestamp{Time: s.now().UTC()},
	}
	s.nextID++
	s.hosted[h.ID] = h
	return h, nil
}

// Hosted returns every cloud automation ordered by ID
func (s *Store) Hosted() []automation.HostedAutomation {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]automation.HostedAutomation, 0, len(s.hosted))
	for _, h := range s.hosted {
		list = append(list, h)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ToggleHosted flips a cloud automation between active and paused
func (s *Store) ToggleHosted(id int) (automation.HostedAutomation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hosted[id]
	if !ok {
		return automation.HostedAutomation{}, ErrNotFound
	}
	h.IsActive = !h.IsActive
	s.hosted[id] = h
	return h, nil
}

// DeleteHosted removes a cloud automation
func (s *Store) DeleteHosted(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hosted[id]; !ok {
		return ErrNotFound
	}
	delete(s.hosted, id)
	return nil
}

// MarkRun records a check of a cloud automation at t
func (s *Store) MarkRun(id int, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hosted[id]
	if !ok {
		return ErrNotFound
	}
	h.LastRun = &automation.Timestamp{Time: t.UTC()}
	s.hosted[id] = h
	return nil
}

// Signup registers an account and opens a session for it
func (s *Store) Signup(creds automation.Credentials) (automation.Session, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return automation.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return automation.Session{}, ErrEmailTaken
	}
	s.users[email] = hash
	return s.openSession(email), nil
}

// Login checks credentials and opens a session
func (s *Store) Login(creds automation.Credentials) (automation.Session, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	s.mu.Lock()
	hash, ok := s.users[email]
	s.mu.Unlock()
	if !ok {
		return automation.Session{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)); err != nil {
		return automation.Session{}, ErrBadCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openSession(email), nil
}

// Logout invalidates token. Unknown tokens are ignored.
func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// SessionEmail returns the account a token belongs to
func (s *Store) SessionEmail(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	return email, ok
}

// openSession must be called with mu held
func (s *Store) openSession(email string) automation.Session {
	token := uuid.NewString()
	s.tokens[token] = email
	return automation.Session{AccessToken: token, TokenType: "bearer", Email: email}
}
