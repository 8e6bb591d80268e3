package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/jaminalder/voronoi-territory/internal/app"
	"github.com/jaminalder/voronoi-territory/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	logger := log.New(io.Discard)
	clock := quartz.NewMock(t)
	s := app.NewService(domain.DefaultRules(), app.WithClock(clock), app.WithLogger(logger))
	h := NewServer(s, WithClock(clock), WithLogger(logger))
	return s, h
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") {
		t.Fatalf("index should contain create form; got body: %q", body)
	}
	if !strings.Contains(body, "<!doctype html>") {
		t.Fatalf("index should be a full page; got body: %q", body)
	}
}

func TestCreateRedirectsToGame(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("POST", "/game", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Result().Header.Get("Location")
	if !strings.HasPrefix(loc, "/game/") {
		t.Fatalf("expected redirect to /game/{id}, got %q", loc)
	}
}

func TestGamePageRendersBoardAndSSE(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
	if !strings.Contains(body, "<svg") || !strings.Contains(body, "Seeds left: 20") {
		t.Fatalf("expected empty board; got body: %q", body)
	}
}

func TestUnknownGameIs404(t *testing.T) {
	_, h := newTestServer(t)
	for _, path := range []string{"/game/nope", "/game/nope/state", "/game/nope/events"} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rr.Code)
		}
	}
	if rr := postForm(h, "/game/nope/place", url.Values{"x": {"1"}, "y": {"1"}}); rr.Code != http.StatusNotFound {
		t.Fatalf("place: expected 404, got %d", rr.Code)
	}
	if rr := postForm(h, "/game/nope/reset", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("reset: expected 404, got %d", rr.Code)
	}
}

func TestPlaceEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := postForm(h, "/game/"+gs.ID+"/place", url.Values{"x": {"100"}, "y": {"120.5"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "id=\"board\"") || !strings.Contains(body, "<polygon") {
		t.Fatalf("expected board fragment with a cell, got %q", body)
	}
	if !strings.Contains(body, "100.00%") || !strings.Contains(body, "Red to move") {
		t.Fatalf("expected scoreboard for one green seed, got %q", body)
	}
	latest, _ := svc.Get(gs.ID)
	if len(latest.Game.Seeds) != 1 || latest.Game.Seeds[0].At.Y != 120.5 {
		t.Fatalf("expected seed applied, got %+v", latest.Game.Seeds)
	}
}

func TestPlaceEndpointReportsRejection(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	cases := []struct {
		form url.Values
		msg  string
	}{
		{url.Values{"x": {"-4"}, "y": {"10"}}, "Out of bounds"},
		{url.Values{"x": {"abc"}, "y": {"10"}}, "Invalid placement"},
		{url.Values{}, "Invalid placement"},
	}
	for _, tc := range cases {
		rr := postForm(h, "/game/"+gs.ID+"/place", tc.form)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), tc.msg) {
			t.Fatalf("expected %q in %q", tc.msg, rr.Body.String())
		}
	}
	latest, _ := svc.Get(gs.ID)
	if len(latest.Game.Seeds) != 0 {
		t.Fatalf("rejected placements must not add seeds")
	}
}

func TestFinishedGameShowsBannerAndResets(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	for i := 0; i < 20; i++ {
		x := float64(20 + (i%5)*100)
		y := float64(20 + (i/5)*100)
		if _, err := svc.Place(gs.ID, x, y); err != nil {
			t.Fatalf("place %d: %v", i, err)
		}
	}
	rr := postForm(h, "/game/"+gs.ID+"/place", url.Values{"x": {"250"}, "y": {"250"}})
	body := rr.Body.String()
	if !strings.Contains(body, "Game is over") {
		t.Fatalf("expected game over message, got %q", body)
	}
	if !strings.Contains(body, "Wins!") && !strings.Contains(body, "Draw!") {
		t.Fatalf("expected end banner, got %q", body)
	}

	rr = postForm(h, "/game/"+gs.ID+"/reset", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Seeds left: 20") {
		t.Fatalf("expected reset board, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestStateEndpointJSON(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	svc.Place(gs.ID, 100, 100)
	svc.Place(gs.ID, 400, 400)

	req := httptest.NewRequest("GET", "/game/"+gs.ID+"/state", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got struct {
		ID             string            `json:"id"`
		Phase          string            `json:"phase"`
		Turn           string            `json:"turn"`
		MovesRemaining int               `json:"moves_remaining"`
		Display        map[string]string `json:"display"`
		Score          struct {
			Percent map[string]float64 `json:"percent"`
		} `json:"score"`
		Seeds []struct {
			Owner string `json:"owner"`
		} `json:"seeds"`
		Cells [][]struct{ X, Y float64 } `json:"cells"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != gs.ID || got.Phase != "in_progress" || got.Turn != "green" || got.MovesRemaining != 18 {
		t.Fatalf("unexpected state: %+v", got)
	}
	if len(got.Seeds) != 2 || got.Seeds[0].Owner != "green" || got.Seeds[1].Owner != "red" {
		t.Fatalf("unexpected seeds: %+v", got.Seeds)
	}
	if len(got.Cells) != 2 || got.Display["green"] != "50.00" {
		t.Fatalf("unexpected cells/display: %d %v", len(got.Cells), got.Display)
	}
	if p := got.Score.Percent["green"] + got.Score.Percent["red"]; p < 99.999 || p > 100.001 {
		t.Fatalf("percentages should sum to 100, got %v", p)
	}
}

func TestOwnerEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	svc.Place(gs.ID, 100, 250)
	svc.Place(gs.ID, 400, 250)

	req := httptest.NewRequest("GET", "/game/"+gs.ID+"/owner?x=450&y=10", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"red"`) {
		t.Fatalf("expected red owner, got %d %q", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest("GET", "/game/"+gs.ID+"/owner?x=oops", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	reqCreate := httptest.NewRequest("POST", "/game", nil)
	rrCreate := httptest.NewRecorder()
	h.ServeHTTP(rrCreate, reqCreate)
	loc := rrCreate.Result().Header.Get("Location")
	if loc == "" {
		t.Fatalf("missing redirect location")
	}
	req := httptest.NewRequest("GET", loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Result().Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}

func TestEventsStreamBoardUpdates(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs, _ := svc.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/game/"+gs.ID+"/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	// Headers are flushed after subscribing, so this update is not missed.
	if _, err := svc.Place(gs.ID, 250, 250); err != nil {
		t.Fatalf("place: %v", err)
	}

	sc := bufio.NewScanner(resp.Body)
	sawEvent := false
	for sc.Scan() {
		line := sc.Text()
		if line == "event: board" {
			sawEvent = true
			continue
		}
		if sawEvent && strings.HasPrefix(line, "data: ") && strings.Contains(line, "<circle") {
			return
		}
	}
	t.Fatalf("did not receive board event (saw event=%v): %v", sawEvent, sc.Err())
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	gs, _ := svc.CreateGame()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + gs.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		ID    string `json:"id"`
		Phase string `json:"phase"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if first.ID != gs.ID || first.Phase != "empty" {
		t.Fatalf("unexpected initial snapshot: %+v", first)
	}

	if _, err := svc.Place(gs.ID, 42, 42); err != nil {
		t.Fatalf("place: %v", err)
	}
	var next struct {
		Phase string `json:"phase"`
		Seeds []struct {
			At struct{ X, Y float64 } `json:"at"`
		} `json:"seeds"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if next.Phase != "in_progress" || len(next.Seeds) != 1 || next.Seeds[0].At.X != 42 {
		t.Fatalf("unexpected update: %+v", next)
	}
}
