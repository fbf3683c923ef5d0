package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rocketscienceinc/doko-tracker/internal/entity"
	"github.com/rocketscienceinc/doko-tracker/internal/repository"
	"github.com/rocketscienceinc/doko-tracker/internal/scoring"
	"github.com/rocketscienceinc/doko-tracker/internal/service"
	"github.com/rocketscienceinc/doko-tracker/internal/usecase"
	"github.com/rocketscienceinc/doko-tracker/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Load(context.Context) (*entity.Game, error) {
	return nil, repository.ErrGameNotFound
}

func (failingRepo) Save(context.Context, *entity.Game) error {
	return errors.New("disk full")
}

func newTestServer(t *testing.T, repo repository.GameRepository) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	board := service.NewScoreboard(logger, repo)
	handlers := NewHandlers(logger, usecase.NewScoreboardUseCase(logger, board))

	server := httptest.NewServer(NewRouter(logger, handlers))
	t.Cleanup(server.Close)

	return server
}

func do(t *testing.T, server *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, payload
}

func decode[T any](t *testing.T, payload []byte) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(payload, &value))

	return value
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestPing(t *testing.T) {
	t.Run("Answers pong", func(t *testing.T) {
		server := newTestServer(t, repository.NewMemoryGameRepository())

		status, body := do(t, server, http.MethodGet, "/ping", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "pong", string(body))
	})

	t.Run("Write failure is logged", func(t *testing.T) {
		// Given: handlers logging into a buffer and a writer that cannot write
		var logs bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logs, nil))
		handlers := NewHandlers(logger, nil)
		w := brokenWriter{httptest.NewRecorder()}

		// When: answering a ping
		handlers.Ping(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		// Then: the status stays 200 and the error ends up in the log
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, logs.String(), "failed to write ping response")
		assert.Contains(t, logs.String(), "connection reset")
	})
}

func TestHandlers_RecordRound(t *testing.T) {
	t.Run("Records a valid round", func(t *testing.T) {
		// Given: a fresh server
		server := newTestServer(t, repository.NewMemoryGameRepository())

		// When: posting {points:2, winners:[true,true,false,false]}
		status, body := do(t, server, http.MethodPost, "/api/rounds", `{"points":2,"winners":[true,true,false,false]}`)

		// Then: the round is created with the computed scores
		require.Equal(t, http.StatusCreated, status)
		resp := decode[usecase.RecordedRound](t, body)
		assert.Equal(t, 0, resp.Index)
		assert.Equal(t, [4]int{2, 2, -2, -2}, resp.Round.Scores)

		// And: the running totals match
		status, body = do(t, server, http.MethodGet, "/api/views/totals", "")
		require.Equal(t, http.StatusOK, status)
		rows := decode[[]views.TotalsRow](t, body)
		require.Len(t, rows, 1)
		assert.Equal(t, [4]int{2, 2, -2, -2}, rows[0].Totals)
	})

	t.Run("Rejects invalid input with a message", func(t *testing.T) {
		server := newTestServer(t, repository.NewMemoryGameRepository())

		status, body := do(t, server, http.MethodPost, "/api/rounds", `{"points":1,"winners":[true,false,false,false]}`)

		require.Equal(t, http.StatusUnprocessableEntity, status)
		validation := decode[scoring.Validation](t, body)
		assert.False(t, validation.Valid)
		assert.Equal(t, scoring.MsgNormalWinnerCount, validation.Message)
	})

	t.Run("Missing points are rejected", func(t *testing.T) {
		server := newTestServer(t, repository.NewMemoryGameRepository())

		status, body := do(t, server, http.MethodPost, "/api/rounds", `{"winners":[true,true,false,false]}`)

		require.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, scoring.MsgInvalidPoints, decode[scoring.Validation](t, body).Message)
	})

	t.Run("Points beyond the safe range are rejected", func(t *testing.T) {
		server := newTestServer(t, repository.NewMemoryGameRepository())

		status, body := do(t, server, http.MethodPost, "/api/rounds", `{"points":4e18,"winners":[true,false,false,false],"solo":true}`)

		require.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, scoring.MsgInvalidPoints, decode[scoring.Validation](t, body).Message)

		status, body = do(t, server, http.MethodGet, "/api/game", "")
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decode[entity.Game](t, body).Rounds)
	})

	t.Run("Concurrent rounds get distinct indexes", func(t *testing.T) {
		// Given: a fresh server
		server := newTestServer(t, repository.NewMemoryGameRepository())

		const requests = 20

		var wg sync.WaitGroup
		indexes := make(chan int, requests)

		// When: rounds are posted in parallel
		for i := 0; i < requests; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				resp, err := server.Client().Post(server.URL+"/api/rounds", "application/json",
					strings.NewReader(`{"points":1,"winners":[true,true,false,false]}`))
				if !assert.NoError(t, err) {
					return
				}
				defer resp.Body.Close()

				var recorded usecase.RecordedRound
				if assert.Equal(t, http.StatusCreated, resp.StatusCode) &&
					assert.NoError(t, json.NewDecoder(resp.Body).Decode(&recorded)) {
					indexes <- recorded.Index
				}
			}()
		}

		wg.Wait()
		close(indexes)

		// Then: every response names its own slot in the history
		seen := make(map[int]bool, requests)
		for index := range indexes {
			assert.False(t, seen[index], "index %d reported twice", index)
			seen[index] = true
		}

		assert.Len(t, seen, requests)
	})

	t.Run("Malformed body", func(t *testing.T) {
		server := newTestServer(t, repository.NewMemoryGameRepository())

		status, _ := do(t, server, http.MethodPost, "/api/rounds", `{"points":"many"}`)

		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Storage failure", func(t *testing.T) {
		server := newTestServer(t, failingRepo{})

		status, _ := do(t, server, http.MethodPost, "/api/rounds", `{"points":1,"winners":[true,true,false,false]}`)

		assert.Equal(t, http.StatusInternalServerError, status)
	})
}

func TestHandlers_EditRound(t *testing.T) {
	// Given: one recorded round
	server := newTestServer(t, repository.NewMemoryGameRepository())
	status, _ := do(t, server, http.MethodPost, "/api/rounds", `{"points":2,"winners":[true,true,false,false]}`)
	require.Equal(t, http.StatusCreated, status)

	t.Run("Edits the round", func(t *testing.T) {
		status, body := do(t, server, http.MethodPut, "/api/rounds/0", `{"points":1,"winners":[false,false,true,false],"solo":true}`)

		require.Equal(t, http.StatusOK, status)
		resp := decode[usecase.RecordedRound](t, body)
		assert.Equal(t, [4]int{-1, -1, 3, -1}, resp.Round.Scores)
		assert.True(t, resp.Round.Solo)
	})

	t.Run("Winners of the edited round", func(t *testing.T) {
		status, body := do(t, server, http.MethodGet, "/api/rounds/0/winners", "")

		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"winners":[false,false,true,false]}`, string(body))
	})

	t.Run("Unknown index", func(t *testing.T) {
		status, _ := do(t, server, http.MethodPut, "/api/rounds/5", `{"points":1,"winners":[true,true,false,false]}`)

		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Non-numeric index", func(t *testing.T) {
		status, _ := do(t, server, http.MethodPut, "/api/rounds/first", `{"points":1,"winners":[true,true,false,false]}`)

		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestHandlers_Players(t *testing.T) {
	server := newTestServer(t, repository.NewMemoryGameRepository())

	t.Run("Rename trims and stores", func(t *testing.T) {
		status, body := do(t, server, http.MethodPut, "/api/players/1", `{"name":"  Ben  "}`)

		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"name":"Ben"}`, string(body))
	})

	t.Run("Blank name resets to the default", func(t *testing.T) {
		status, body := do(t, server, http.MethodPut, "/api/players/1", `{"name":" "}`)

		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"name":"Player 2"}`, string(body))
	})

	t.Run("Seat outside the table", func(t *testing.T) {
		status, _ := do(t, server, http.MethodPut, "/api/players/4", `{"name":"Eve"}`)

		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Replace all names", func(t *testing.T) {
		status, body := do(t, server, http.MethodPut, "/api/players", `{"players":["A","B","C","D"]}`)

		require.Equal(t, http.StatusOK, status)
		game := decode[entity.Game](t, body)
		assert.Equal(t, [4]string{"A", "B", "C", "D"}, game.Players)
	})
}

func TestHandlers_ImportExportReset(t *testing.T) {
	// Given: a server with imported data
	server := newTestServer(t, repository.NewMemoryGameRepository())
	importBody := `{
		"playerNames": ["Anna", "Ben", "Clara", "Dirk"],
		"rounds": [
			{"points": 2, "roundScores": [2, 2, -2, -2], "isSolo": false},
			{"points": 1, "roundScores": [3, -1, -1, -1], "isSolo": true}
		]
	}`

	status, body := do(t, server, http.MethodPost, "/api/import", importBody)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"imported":2}`, string(body))

	// When: exporting
	status, body = do(t, server, http.MethodGet, "/api/export", "")

	// Then: the snapshot format is returned
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"players": ["Anna", "Ben", "Clara", "Dirk"],
		"rounds": [
			{"points": 2, "scores": [2, 2, -2, -2], "solo": false},
			{"points": 1, "scores": [3, -1, -1, -1], "solo": true}
		]
	}`, string(body))

	// And: the series view reflects the import
	status, body = do(t, server, http.MethodGet, "/api/views/series", "")
	require.Equal(t, http.StatusOK, status)
	series := decode[seriesResponse](t, body)
	assert.Equal(t, []int{0, 2, 5}, series.Series[0])
	assert.Equal(t, views.Range{Min: -3, Max: 5, Span: 8}, series.Range)

	// When: resetting
	status, body = do(t, server, http.MethodDelete, "/api/rounds", "")

	// Then: names are kept and rounds are cleared
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"players":["Anna","Ben","Clara","Dirk"],"rounds":[]}`, string(body))

	status, body = do(t, server, http.MethodGet, "/api/overview", "")
	require.Equal(t, http.StatusOK, status)
	overview := decode[usecase.Overview](t, body)
	assert.Empty(t, overview.Totals)
	assert.Equal(t, views.Range{Min: 0, Max: 0, Span: 1}, overview.Range)
}
