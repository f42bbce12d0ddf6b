package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
	"github.com/Dosada05/ttleague/services"
	"github.com/go-chi/chi/v5"
)

type stubMatchService struct {
	reportResult func(ctx context.Context, matchID, scoreA, scoreB int) (*services.MatchResult, error)
}

func (s *stubMatchService) ReportResult(ctx context.Context, matchID, scoreA, scoreB int) (*services.MatchResult, error) {
	return s.reportResult(ctx, matchID, scoreA, scoreB)
}

func (s *stubMatchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	if matchID == 1 {
		return &models.Match{ID: 1, Round: 1, Slot: 1, Status: models.MatchStatusPending}, nil
	}
	return nil, services.ErrMatchNotFound
}

type stubTournamentService struct {
	services.TournamentService
	lastFilter repositories.ListTournamentsFilter
	enrollErr  error
}

func (s *stubTournamentService) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	s.lastFilter = filter
	return []*models.Tournament{}, nil
}

func (s *stubTournamentService) EnrollPlayer(_ context.Context, tournamentID, playerID int) (*models.Tournament, error) {
	if s.enrollErr != nil {
		return nil, s.enrollErr
	}
	return &models.Tournament{ID: tournamentID, PlayerIDs: []int{playerID}}, nil
}

type stubRankingService struct {
	services.RankingService
	radius int
}

func (s *stubRankingService) PlayerRank(_ context.Context, playerID int, category string) (*models.RankingEntry, error) {
	if playerID != 5 {
		return nil, services.ErrRankingNotFound
	}
	return &models.RankingEntry{PlayerID: playerID, Category: category, Points: 300, Position: 2}, nil
}

func (s *stubRankingService) Around(_ context.Context, playerID int, category string, radius int) ([]*models.RankingEntry, error) {
	s.radius = radius
	return []*models.RankingEntry{{PlayerID: playerID, Category: category, Position: 2}}, nil
}

func (s *stubRankingService) ResetCategory(_ context.Context, category string) (int64, error) {
	if category != "Sub-21" {
		return 0, fmt.Errorf("unexpected category %q", category)
	}
	return 4, nil
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error
}

func TestReportResultHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		kind     services.ErrorKind
		contains string
	}{
		{"not found", services.ErrMatchNotFound, http.StatusNotFound, services.KindNotFound, "match not found"},
		{"draw", services.ErrDrawNotAllowed, http.StatusBadRequest, services.KindValidation, "draws"},
		{"already played", services.ErrMatchAlreadyPlayed, http.StatusConflict, services.KindConflict, "already"},
		{"incomplete", services.ErrIncompleteMatch, http.StatusPreconditionFailed, services.KindPrecondition, ""},
		{"wrapped", fmt.Errorf("report: %w", services.ErrInvalidScore), http.StatusBadRequest, services.KindValidation, "non-negative"},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, services.KindInternal, "the server encountered a problem"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ms := &stubMatchService{reportResult: func(context.Context, int, int, int) (*services.MatchResult, error) {
				return nil, c.err
			}}
			r := chi.NewRouter()
			r.Post("/matches/{matchID}/result", NewMatchHandler(ms).ReportResultHandler)

			rec := do(t, r, http.MethodPost, "/matches/3/result", `{"score_a": 3, "score_b": 1}`)
			if rec.Code != c.status {
				t.Fatalf("status = %d; want %d (%s)", rec.Code, c.status, rec.Body.String())
			}
			body := decodeError(t, rec)
			if body.Kind != c.kind {
				t.Errorf("kind = %q; want %q", body.Kind, c.kind)
			}
			if !strings.Contains(body.Message, c.contains) {
				t.Errorf("message %q does not contain %q", body.Message, c.contains)
			}
			if c.kind == services.KindInternal && strings.Contains(body.Message, "connection reset") {
				t.Errorf("internal error details leaked: %q", body.Message)
			}
		})
	}
}

func TestReportResultHandler_Success(t *testing.T) {
	var gotID, gotA, gotB int
	ms := &stubMatchService{reportResult: func(_ context.Context, matchID, scoreA, scoreB int) (*services.MatchResult, error) {
		gotID, gotA, gotB = matchID, scoreA, scoreB
		return &services.MatchResult{WinnerID: 11, Match: &models.Match{ID: matchID}}, nil
	}}
	r := chi.NewRouter()
	r.Post("/matches/{matchID}/result", NewMatchHandler(ms).ReportResultHandler)

	rec := do(t, r, http.MethodPost, "/matches/42/result", `{"score_a": 0, "score_b": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (%s)", rec.Code, rec.Body.String())
	}
	if gotID != 42 || gotA != 0 || gotB != 3 {
		t.Errorf("service called with (%d, %d, %d)", gotID, gotA, gotB)
	}

	var resp struct {
		Result services.MatchResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.WinnerID != 11 {
		t.Errorf("winner_id = %d; want 11", resp.Result.WinnerID)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReportResultHandler_BadRequests(t *testing.T) {
	called := false
	ms := &stubMatchService{reportResult: func(context.Context, int, int, int) (*services.MatchResult, error) {
		called = true
		return nil, nil
	}}
	r := chi.NewRouter()
	r.Post("/matches/{matchID}/result", NewMatchHandler(ms).ReportResultHandler)

	cases := []struct {
		name, target, body, contains string
	}{
		{"non numeric id", "/matches/abc/result", `{"score_a":1,"score_b":0}`, "invalid matchID"},
		{"zero id", "/matches/0/result", `{"score_a":1,"score_b":0}`, "invalid matchID"},
		{"malformed json", "/matches/1/result", `{"score_a":1,`, "badly-formed"},
		{"empty body", "/matches/1/result", ``, "must not be empty"},
		{"unknown field", "/matches/1/result", `{"score_a":1,"score_b":0,"winner":2}`, "unknown key"},
		{"wrong type", "/matches/1/result", `{"score_a":"3","score_b":0}`, "score_a"},
		{"missing score", "/matches/1/result", `{"score_a":1}`, "required"},
		{"two values", "/matches/1/result", `{"score_a":1,"score_b":0}{}`, "single JSON value"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, c.target, c.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d; want 400 (%s)", rec.Code, rec.Body.String())
			}
			if msg := decodeError(t, rec).Message; !strings.Contains(msg, c.contains) {
				t.Errorf("message %q does not contain %q", msg, c.contains)
			}
		})
	}
	if called {
		t.Error("service must not be called for bad requests")
	}
}

func TestMatchGetByIDHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/matches/{matchID}", NewMatchHandler(&stubMatchService{}).GetByIDHandler)

	if rec := do(t, r, http.MethodGet, "/matches/1", ""); rec.Code != http.StatusOK {
		t.Errorf("existing match: status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/matches/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing match: status = %d", rec.Code)
	}
}

func TestTournamentListHandler_Filters(t *testing.T) {
	ts := &stubTournamentService{}
	r := chi.NewRouter()
	r.Get("/tournaments", NewTournamentHandler(ts).ListHandler)

	rec := do(t, r, http.MethodGet, "/tournaments?status=in_progress&category=Sub-21&limit=10&offset=20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	f := ts.lastFilter
	if f.Status == nil || *f.Status != models.StatusInProgress {
		t.Errorf("status filter = %v", f.Status)
	}
	if f.Category == nil || *f.Category != "Sub-21" {
		t.Errorf("category filter = %v", f.Category)
	}
	if f.Limit != 10 || f.Offset != 20 {
		t.Errorf("limit/offset = %d/%d", f.Limit, f.Offset)
	}

	for _, q := range []string{"status=archived", "limit=-1", "offset=x"} {
		if rec := do(t, r, http.MethodGet, "/tournaments?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400", q, rec.Code)
		}
	}
}

func TestEnrollPlayerHandler(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"ok", `{"player_id": 7}`, nil, http.StatusOK},
		{"missing player", `{}`, nil, http.StatusBadRequest},
		{"closed", `{"player_id": 7}`, services.ErrEnrollmentClosed, http.StatusPreconditionFailed},
		{"duplicate", `{"player_id": 7}`, services.ErrPlayerAlreadyEnrolled, http.StatusConflict},
		{"unknown player", `{"player_id": 7}`, services.ErrPlayerNotFound, http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/tournaments/{tournamentID}/players", NewTournamentHandler(&stubTournamentService{enrollErr: c.err}).EnrollPlayerHandler)
			rec := do(t, r, http.MethodPost, "/tournaments/3/players", c.body)
			if rec.Code != c.status {
				t.Errorf("status = %d; want %d (%s)", rec.Code, c.status, rec.Body.String())
			}
		})
	}
}

func TestPlayerRankHandler(t *testing.T) {
	rs := &stubRankingService{}
	r := chi.NewRouter()
	r.Get("/ranking/players/{playerID}", NewRankingHandler(rs).PlayerRankHandler)

	rec := do(t, r, http.MethodGet, "/ranking/players/5?category=Mayores", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if rs.radius != services.DefaultAroundRadius {
		t.Errorf("radius = %d; want default %d", rs.radius, services.DefaultAroundRadius)
	}
	var resp struct {
		Entry  models.RankingEntry    `json:"entry"`
		Around []*models.RankingEntry `json:"around"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Entry.Position != 2 || len(resp.Around) != 1 {
		t.Errorf("got %+v", resp)
	}

	do(t, r, http.MethodGet, "/ranking/players/5?category=Mayores&radius=1", "")
	if rs.radius != 1 {
		t.Errorf("radius = %d; want 1", rs.radius)
	}

	if rec := do(t, r, http.MethodGet, "/ranking/players/5", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing category: status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/ranking/players/6?category=Mayores", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unranked player: status = %d", rec.Code)
	}
}

func TestResetCategoryHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/ranking/categories/{category}", NewRankingHandler(&stubRankingService{}).ResetCategoryHandler)

	rec := do(t, r, http.MethodDelete, "/ranking/categories/Sub-21", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Deleted != 4 {
		t.Errorf("deleted = %d, err = %v", resp.Deleted, err)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := do(t, http.HandlerFunc(NewHealthHandler(failingPinger{}).CheckHandler), http.MethodGet, "/health", "")
	if ok.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", ok.Code)
	}
	down := do(t, http.HandlerFunc(NewHealthHandler(failingPinger{err: errors.New("down")}).CheckHandler), http.MethodGet, "/health", "")
	if down.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: status = %d", down.Code)
	}
}
