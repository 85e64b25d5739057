package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/repositories"
	"github.com/ZAKARYA123J/teamhub/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// memStore backs all fake repositories so that group/coach relations behave
// like the real foreign keys.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	accounts map[int]*models.AccountRecord
	groups   map[int]*models.Group
	players  map[int]*models.Player
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int]*models.AccountRecord),
		groups:   make(map[int]*models.Group),
		players:  make(map[int]*models.Player),
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func copyRecord(rec *models.AccountRecord) *models.AccountRecord {
	out := *rec
	if rec.Coach != nil {
		c := *rec.Coach
		out.Coach = &c
	}
	if rec.Staff != nil {
		s := *rec.Staff
		out.Staff = &s
	}
	if rec.Admin != nil {
		a := *rec.Admin
		out.Admin = &a
	}
	return &out
}

type fakeAccountRepo struct{ *memStore }

func (r fakeAccountRepo) CreateWithProfile(_ context.Context, rec *models.AccountRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == rec.Email {
			return repositories.ErrAccountEmailConflict
		}
	}
	rec.ID = r.id()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	switch {
	case rec.Coach != nil:
		rec.Coach.ID, rec.Coach.AccountID = r.id(), rec.ID
	case rec.Staff != nil:
		rec.Staff.ID, rec.Staff.AccountID = r.id(), rec.ID
	case rec.Admin != nil:
		rec.Admin.ID, rec.Admin.AccountID = r.id(), rec.ID
	}
	r.accounts[rec.ID] = copyRecord(rec)
	return nil
}

func (r fakeAccountRepo) GetByID(_ context.Context, id int) (*models.AccountRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return copyRecord(rec), nil
}

func (r fakeAccountRepo) GetByEmail(_ context.Context, email string) (*models.AccountRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.accounts {
		if rec.Email == email {
			return copyRecord(rec), nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (r fakeAccountRepo) List(_ context.Context, filter repositories.AccountFilter) ([]*models.AccountRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AccountRecord, 0, len(r.accounts))
	for _, rec := range r.accounts {
		if filter.Role != nil && rec.Role != *filter.Role {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r fakeAccountRepo) Update(_ context.Context, rec *models.AccountRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[rec.ID]; !ok {
		return repositories.ErrAccountNotFound
	}
	for _, existing := range r.accounts {
		if existing.ID != rec.ID && existing.Email == rec.Email {
			return repositories.ErrAccountEmailConflict
		}
	}
	rec.UpdatedAt = time.Now()
	r.accounts[rec.ID] = copyRecord(rec)
	return nil
}

func (r fakeAccountRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.accounts[id]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	if rec.Coach != nil {
		for _, g := range r.groups {
			if g.CoachID == rec.Coach.ID {
				return repositories.ErrCoachHasGroups
			}
		}
	}
	delete(r.accounts, id)
	return nil
}

func (r fakeAccountRepo) GetCoachProfile(_ context.Context, coachID int) (*models.CoachProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coachLocked(coachID)
}

func (m *memStore) coachLocked(coachID int) (*models.CoachProfile, error) {
	for _, rec := range m.accounts {
		if rec.Coach != nil && rec.Coach.ID == coachID {
			c := *rec.Coach
			return &c, nil
		}
	}
	return nil, repositories.ErrCoachNotFound
}

type fakeGroupRepo struct{ *memStore }

func (r fakeGroupRepo) Create(_ context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.coachLocked(group.CoachID); err != nil {
		return repositories.ErrGroupCoachInvalid
	}
	group.ID = r.id()
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	for i := range group.Players {
		p := &group.Players[i]
		p.ID = r.id()
		gid := group.ID
		p.GroupID = &gid
		stored := *p
		r.players[p.ID] = &stored
	}
	stored := *group
	stored.Players = nil
	r.groups[group.ID] = &stored
	return nil
}

func (r fakeGroupRepo) GetByID(_ context.Context, id int) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	return r.withCoachLocked(g), nil
}

func (m *memStore) withCoachLocked(g *models.Group) *models.Group {
	out := *g
	if coach, err := m.coachLocked(g.CoachID); err == nil {
		out.Coach = coach
	}
	return &out
}

func (r fakeGroupRepo) List(_ context.Context) ([]*models.Group, error) {
	return r.listWhere(func(*models.Group) bool { return true })
}

func (r fakeGroupRepo) ListByCoach(_ context.Context, coachID int) ([]*models.Group, error) {
	return r.listWhere(func(g *models.Group) bool { return g.CoachID == coachID })
}

func (r fakeGroupRepo) listWhere(keep func(*models.Group) bool) ([]*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Group, 0)
	for _, g := range r.groups {
		if keep(g) {
			out = append(out, r.withCoachLocked(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeGroupRepo) Update(_ context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[group.ID]; !ok {
		return repositories.ErrGroupNotFound
	}
	if _, err := r.coachLocked(group.CoachID); err != nil {
		return repositories.ErrGroupCoachInvalid
	}
	stored := *group
	stored.Coach, stored.Players = nil, nil
	r.groups[group.ID] = &stored
	return nil
}

func (r fakeGroupRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return repositories.ErrGroupNotFound
	}
	delete(r.groups, id)
	for _, p := range r.players {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	return nil
}

func (r fakeGroupRepo) CountByCoach(_ context.Context) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int]int)
	for _, g := range r.groups {
		counts[g.CoachID]++
	}
	return counts, nil
}

type fakePlayerRepo struct{ *memStore }

func copyPlayer(p *models.Player) *models.Player {
	out := *p
	if p.GroupID != nil {
		g := *p.GroupID
		out.GroupID = &g
	}
	if p.PhotoKey != nil {
		k := *p.PhotoKey
		out.PhotoKey = &k
	}
	return &out
}

func (r fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player.GroupID != nil {
		if _, ok := r.groups[*player.GroupID]; !ok {
			return repositories.ErrPlayerGroupInvalid
		}
	}
	player.ID = r.id()
	r.players[player.ID] = copyPlayer(player)
	return nil
}

func (r fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return copyPlayer(p), nil
}

func (r fakePlayerRepo) List(_ context.Context) ([]*models.Player, error) {
	return r.listWhere(func(*models.Player) bool { return true })
}

func (r fakePlayerRepo) ListByGroup(_ context.Context, groupID int) ([]*models.Player, error) {
	return r.listWhere(func(p *models.Player) bool { return p.GroupID != nil && *p.GroupID == groupID })
}

func (r fakePlayerRepo) listWhere(keep func(*models.Player) bool) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0)
	for _, p := range r.players {
		if keep(p) {
			out = append(out, copyPlayer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakePlayerRepo) Update(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	r.players[player.ID] = copyPlayer(player)
	return nil
}

func (r fakePlayerRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

func (r fakePlayerRepo) SetGroup(_ context.Context, playerID int, groupID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if groupID != nil {
		if _, ok := r.groups[*groupID]; !ok {
			return repositories.ErrPlayerGroupInvalid
		}
		g := *groupID
		p.GroupID = &g
	} else {
		p.GroupID = nil
	}
	return nil
}

func (r fakePlayerRepo) UpdatePhotoKey(_ context.Context, playerID int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if key == nil {
		p.PhotoKey = nil
	} else {
		k := *key
		p.PhotoKey = &k
	}
	return nil
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type published struct {
	room    string
	message models.Notification
}

type recordingPublisher struct {
	mu           sync.Mutex
	sent         []published
	disconnected []string
}

func (p *recordingPublisher) Disconnect(room string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = append(p.disconnected, room)
	return 1
}

func (p *recordingPublisher) Publish(room string, message interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, _ := message.(models.Notification)
	p.sent = append(p.sent, published{room: room, message: n})
}

func (p *recordingPublisher) rooms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, s := range p.sent {
		out[i] = s.room
	}
	return out
}

type fixture struct {
	store     *memStore
	accounts  fakeAccountRepo
	groups    fakeGroupRepo
	players   fakePlayerRepo
	uploader  *fakeUploader
	publisher *recordingPublisher
	tokens    *TokenIssuer

	auth   AuthService
	admin  AdminService
	group  GroupService
	player PlayerService
	notify *NotificationService
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:     store,
		accounts:  fakeAccountRepo{store},
		groups:    fakeGroupRepo{store},
		players:   fakePlayerRepo{store},
		uploader:  newFakeUploader(),
		publisher: &recordingPublisher{},
		tokens:    NewTokenIssuer("test-secret", time.Hour),
	}
	logger := discardLogger()
	f.notify = NewNotificationService(f.publisher, logger)
	f.auth = NewAuthService(f.accounts, f.tokens, logger)
	f.admin = NewAdminService(f.accounts, f.groups, f.notify, logger)
	f.group = NewGroupService(f.groups, f.players, f.accounts, f.uploader, f.notify, logger)
	f.player = NewPlayerService(f.players, f.groups, f.uploader, logger)
	return f
}
