package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/ttleague/brackets"
	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
	"github.com/Dosada05/ttleague/storage"
)

// memStore backs the in-memory repositories. txMu stands in for row locks:
// transactions run one at a time and are rolled back from a snapshot on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID      int
	players     map[int]models.Player
	history     map[int][]models.RankingHistoryEntry
	tournaments map[int]models.Tournament
	enrollment  map[int][]int
	matches     map[int]models.Match
	rankings    map[rankingKey]models.RankingEntry

	// failures makes the named repository method return the error.
	failures map[string]error
	// locks records row locks in acquisition order, e.g. "tournament:3".
	locks []string
}

func (s *memStore) lock(row string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = append(s.locks, row)
}

type rankingKey struct {
	playerID int
	category string
}

func newMemStore() *memStore {
	return &memStore{
		players:     map[int]models.Player{},
		history:     map[int][]models.RankingHistoryEntry{},
		tournaments: map[int]models.Tournament{},
		enrollment:  map[int][]int{},
		matches:     map[int]models.Match{},
		rankings:    map[rankingKey]models.RankingEntry{},
		failures:    map[string]error{},
	}
}

func (s *memStore) newID() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) failWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

type memSnapshot struct {
	nextID      int
	players     map[int]models.Player
	history     map[int][]models.RankingHistoryEntry
	tournaments map[int]models.Tournament
	enrollment  map[int][]int
	matches     map[int]models.Match
	rankings    map[rankingKey]models.RankingEntry
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		nextID:      s.nextID,
		players:     copyMap(s.players),
		history:     copySliceMap(s.history),
		tournaments: copyMap(s.tournaments),
		enrollment:  copySliceMap(s.enrollment),
		matches:     copyMap(s.matches),
		rankings:    copyMap(s.rankings),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.nextID = snap.nextID
	s.players = snap.players
	s.history = snap.history
	s.tournaments = snap.tournaments
	s.enrollment = snap.enrollment
	s.matches = snap.matches
	s.rankings = snap.rankings
}

type memExec struct {
	repositories.SQLExecutor
}

type memTransactor struct {
	s *memStore
}

func (t memTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	snap := t.s.snapshot()
	t.s.mu.Unlock()

	if err := fn(memExec{}); err != nil {
		t.s.mu.Lock()
		t.s.restore(snap)
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// --- players ---

type memPlayerRepo struct{ s *memStore }

func (r memPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.Document != nil {
		for _, existing := range r.s.players {
			if existing.Document != nil && *existing.Document == *p.Document {
				return repositories.ErrPlayerDocumentConflict
			}
		}
	}
	p.ID = r.s.newID()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	r.s.players[p.ID] = *p
	return nil
}

func (r memPlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r memPlayerRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memPlayerRepo) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.players[id]; ok {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPlayerRepo) ApplyRankingDelta(ctx context.Context, exec repositories.SQLExecutor, playerID int, entry models.RankingHistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failures["ApplyRankingDelta"]; err != nil {
		return err
	}
	p, ok := r.s.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.CurrentRanking += entry.Delta
	r.s.players[playerID] = p
	entry.ID = r.s.newID()
	entry.PlayerID = playerID
	r.s.history[playerID] = append(r.s.history[playerID], entry)
	return nil
}

func (r memPlayerRepo) ListHistory(ctx context.Context, exec repositories.SQLExecutor, playerID int) ([]models.RankingHistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.RankingHistoryEntry{}, r.s.history[playerID]...), nil
}

// --- tournaments ---

type memTournamentRepo struct{ s *memStore }

func (r memTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name && existing.Category == t.Category && sameDate(existing.StartDate, t.StartDate) {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.s.newID()
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	t.PlayerIDs = []int{}
	stored := *t
	stored.PlayerIDs = nil
	r.s.tournaments[t.ID] = stored
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		// NULLs never collide under a unique constraint.
		return false
	}
	return a.Equal(*b)
}

func (r memTournamentRepo) load(id int) (*models.Tournament, error) {
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	t.PlayerIDs = append([]int{}, r.s.enrollment[id]...)
	return &t, nil
}

func (r memTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.load(id)
}

func (r memTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.lock(fmt.Sprintf("tournament:%d", id))
	return r.GetByID(ctx, exec, id)
}

func (r memTournamentRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for id := range r.s.tournaments {
		t, _ := r.load(id)
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset > 0 {
		out = out[min(filter.Offset, len(out)):]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r memTournamentRepo) AddPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[tournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	if _, ok := r.s.players[playerID]; !ok {
		return repositories.ErrTournamentPlayerInvalid
	}
	for _, id := range r.s.enrollment[tournamentID] {
		if id == playerID {
			return repositories.ErrTournamentPlayerConflict
		}
	}
	r.s.enrollment[tournamentID] = append(r.s.enrollment[tournamentID], playerID)
	return nil
}

func (r memTournamentRepo) RemovePlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := r.s.enrollment[tournamentID]
	for i, id := range ids {
		if id == playerID {
			r.s.enrollment[tournamentID] = append(append([]int{}, ids[:i]...), ids[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTournamentPlayerNotEnrolled
}

func (r memTournamentRepo) UpdateBracketState(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, winner *models.TournamentWinner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failures["UpdateBracketState"]; err != nil {
		return err
	}
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.Winner = nil
	if winner != nil {
		w := *winner
		t.Winner = &w
	}
	if status != models.StatusFinished {
		t.ArchiveKey = nil
	}
	r.s.tournaments[id] = t
	return nil
}

func (r memTournamentRepo) SetArchiveKey(ctx context.Context, exec repositories.SQLExecutor, id int, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.ArchiveKey = &key
	r.s.tournaments[id] = t
	return nil
}

func (r memTournamentRepo) ListFinishedUnarchived(ctx context.Context, exec repositories.SQLExecutor, limit int) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for id, t := range r.s.tournaments {
		if t.Status == models.StatusFinished && t.ArchiveKey == nil {
			loaded, _ := r.load(id)
			out = append(out, loaded)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// --- matches ---

type memMatchRepo struct{ s *memStore }

func (r memMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.matches {
		if existing.TournamentID == m.TournamentID && existing.Category == m.Category &&
			existing.Round == m.Round && existing.Slot == m.Slot {
			return repositories.ErrMatchSlotConflict
		}
	}
	m.ID = r.s.newID()
	m.CreatedAt, m.UpdatedAt = time.Now(), time.Now()
	r.s.matches[m.ID] = *m
	return nil
}

func (r memMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r memMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.lock(fmt.Sprintf("match:%d", id))
	return r.GetByID(ctx, exec, id)
}

func (r memMatchRepo) GetBySlot(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, category string, round, slot int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID && m.Category == category && m.Round == round && m.Slot == slot {
			return &m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r memMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.ScoreA, stored.ScoreB = m.ScoreA, m.ScoreB
	stored.WinnerID = m.WinnerID
	stored.Status = m.Status
	stored.Bye = m.Bye
	stored.UpdatedAt = time.Now()
	m.UpdatedAt = stored.UpdatedAt
	r.s.matches[m.ID] = stored
	return nil
}

func (r memMatchRepo) UpdatePlayers(ctx context.Context, exec repositories.SQLExecutor, matchID int, playerAID, playerBID *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failures["UpdatePlayers"]; err != nil {
		return err
	}
	stored, ok := r.s.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.PlayerAID, stored.PlayerBID = playerAID, playerBID
	r.s.matches[matchID] = stored
	return nil
}

func (r memMatchRepo) deleteWhere(keep func(models.Match) bool) int64 {
	var deleted int64
	for id, m := range r.s.matches {
		if !keep(m) {
			delete(r.s.matches, id)
			deleted++
		}
	}
	return deleted
}

func (r memMatchRepo) DeleteByTournamentCategory(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, category string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteWhere(func(m models.Match) bool {
		return m.TournamentID != tournamentID || m.Category != category
	}), nil
}

func (r memMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteWhere(func(m models.Match) bool { return m.TournamentID != tournamentID }), nil
}

func (r memMatchRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

// --- rankings ---

type memRankingRepo struct{ s *memStore }

func (r memRankingRepo) upsert(playerID int, category string, points func(old int) int) (*models.RankingEntry, error) {
	if _, ok := r.s.players[playerID]; !ok {
		return nil, repositories.ErrRankingPlayerInvalid
	}
	key := rankingKey{playerID, category}
	e, ok := r.s.rankings[key]
	if !ok {
		e = models.RankingEntry{ID: r.s.newID(), PlayerID: playerID, Category: category, CreatedAt: time.Now()}
	}
	e.Points = points(e.Points)
	e.UpdatedAt = time.Now()
	r.s.rankings[key] = e
	return &e, nil
}

func (r memRankingRepo) Increment(ctx context.Context, exec repositories.SQLExecutor, playerID int, category string, delta int) (*models.RankingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.upsert(playerID, category, func(old int) int { return max(0, old+delta) })
}

func (r memRankingRepo) Set(ctx context.Context, exec repositories.SQLExecutor, playerID int, category string, points int) (*models.RankingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.upsert(playerID, category, func(int) int { return points })
}

func (r memRankingRepo) Get(ctx context.Context, exec repositories.SQLExecutor, playerID int, category string) (*models.RankingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.rankings[rankingKey{playerID, category}]
	if !ok {
		return nil, repositories.ErrRankingEntryNotFound
	}
	e.Position = r.position(e)
	return &e, nil
}

// position is the competition rank: one plus the entries of the category with more points.
func (r memRankingRepo) position(e models.RankingEntry) int {
	pos := 1
	for _, o := range r.s.rankings {
		if o.Category == e.Category && o.Points > e.Points {
			pos++
		}
	}
	return pos
}

func (r memRankingRepo) ListByCategory(ctx context.Context, exec repositories.SQLExecutor, category string, limit, offset int) ([]*models.RankingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.RankingEntry, 0)
	for _, e := range r.s.rankings {
		if category == "" || e.Category == category {
			e := e
			e.Position = r.position(e)
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ID < out[j].ID
	})
	if offset > 0 {
		out = out[min(offset, len(out)):]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r memRankingRepo) DeleteByCategory(ctx context.Context, exec repositories.SQLExecutor, category string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for key := range r.s.rankings {
		if key.category == category {
			delete(r.s.rankings, key)
			deleted++
		}
	}
	return deleted, nil
}

// --- events and storage ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []brackets.WebSocketMessage
}

func (p *recordingPublisher) BroadcastToRoom(roomID string, message interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, message.(brackets.WebSocketMessage))
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemUploader() *memUploader {
	return &memUploader{objects: map[string][]byte{}}
}

func (u *memUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: "mem://" + key}, nil
}

func (u *memUploader) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (u *memUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memUploader) GetPublicURL(key string) string { return "mem://" + key }

// --- fixture ---

type fixture struct {
	store  *memStore
	events *recordingPublisher

	players     PlayerService
	tournaments TournamentService
	brackets    BracketService
	matches     MatchService
	ranking     *rankingService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	events := &recordingPublisher{}
	logger := discardLogger()

	tx := memTransactor{store}
	playerRepo := memPlayerRepo{store}
	tournamentRepo := memTournamentRepo{store}
	matchRepo := memMatchRepo{store}
	ranking := NewRankingService(memRankingRepo{store}, playerRepo, logger)

	return &fixture{
		store:       store,
		events:      events,
		players:     NewPlayerService(playerRepo, CategoryPolicy{}, logger),
		tournaments: NewTournamentService(tx, tournamentRepo, playerRepo, matchRepo, CategoryPolicy{}, logger),
		brackets:    NewBracketService(tx, tournamentRepo, playerRepo, matchRepo, ranking, events, logger),
		matches:     NewMatchService(tx, matchRepo, tournamentRepo, ranking, events, logger),
		ranking:     ranking,
	}
}

// addPlayer creates a player and forces its cached ranking, which drives seeding.
func (f *fixture) addPlayer(t *testing.T, name string, currentRanking int) *models.Player {
	t.Helper()
	p, err := f.players.Create(context.Background(), CreatePlayerInput{Name: name, Category: "Mayores"})
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	f.store.mu.Lock()
	stored := f.store.players[p.ID]
	stored.CurrentRanking = currentRanking
	f.store.players[p.ID] = stored
	f.store.mu.Unlock()
	p.CurrentRanking = currentRanking
	return p
}

func (f *fixture) addTournament(t *testing.T, name string, players ...*models.Player) *models.Tournament {
	t.Helper()
	ctx := context.Background()
	tournament, err := f.tournaments.Create(ctx, CreateTournamentInput{Name: name, Category: "Mayores"})
	if err != nil {
		t.Fatalf("create tournament %s: %v", name, err)
	}
	for _, p := range players {
		if tournament, err = f.tournaments.EnrollPlayer(ctx, tournament.ID, p.ID); err != nil {
			t.Fatalf("enroll player %d: %v", p.ID, err)
		}
	}
	return tournament
}

func (f *fixture) matchAt(t *testing.T, tournamentID, round, slot int) *models.Match {
	t.Helper()
	m, err := memMatchRepo{f.store}.GetBySlot(context.Background(), nil, tournamentID, "Mayores", round, slot)
	if err != nil {
		t.Fatalf("match r%d s%d: %v", round, slot, err)
	}
	return m
}

func (f *fixture) tournament(t *testing.T, id int) *models.Tournament {
	t.Helper()
	tournament, err := memTournamentRepo{f.store}.GetByID(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("tournament %d: %v", id, err)
	}
	return tournament
}

func (f *fixture) points(playerID int) int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.rankings[rankingKey{playerID, "Mayores"}].Points
}

func intp(v int) *int { return &v }

func idOf(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
