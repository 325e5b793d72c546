package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/thorsenk/rffl-tools/internal/adapters/http/api"
	"github.com/thorsenk/rffl-tools/internal/adapters/mq/queue"
	"github.com/thorsenk/rffl-tools/internal/adapters/report"
	"github.com/thorsenk/rffl-tools/internal/adapters/repository"
	"github.com/thorsenk/rffl-tools/internal/domain/korm"
	"github.com/thorsenk/rffl-tools/internal/domain/model"
	"github.com/thorsenk/rffl-tools/internal/domain/types"
)

// mockDependencies serves seasons from a map and records submissions.
type mockDependencies struct {
	results   map[int]*korm.SeasonResult
	submitErr error
	duplicate bool
	jobID     uuid.UUID
	submitted []int
}

func (m *mockDependencies) Submit(_ context.Context, season int) (uuid.UUID, bool, error) {
	if m.submitErr != nil {
		return uuid.Nil, false, m.submitErr
	}
	m.submitted = append(m.submitted, season)
	if m.duplicate {
		return uuid.Nil, true, nil
	}
	return m.jobID, false, nil
}

func (m *mockDependencies) Seasons(_ context.Context) ([]types.SeasonSummary, error) {
	out := make([]types.SeasonSummary, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, repository.Summarize(r))
	}
	return out, nil
}

func (m *mockDependencies) Season(_ context.Context, season int) (*korm.SeasonResult, error) {
	r, ok := m.results[season]
	if !ok {
		return nil, fmt.Errorf("season %d: %w", season, repository.ErrNotFound)
	}
	return r, nil
}

func (m *mockDependencies) Standings(ctx context.Context, season, week int) ([]types.StandingEntry, error) {
	r, err := m.Season(ctx, season)
	if err != nil {
		return nil, err
	}
	if week == 0 {
		return repository.StandingEntries(r), nil
	}
	snap, err := korm.StandingsAsOf(r, week)
	if err != nil {
		return nil, err
	}
	out := make([]types.StandingEntry, len(snap))
	for i, e := range snap {
		out[i] = types.StandingEntry{Place: e.Place, Team: e.Team, Strikes: e.Strikes, Status: e.Status.String()}
	}
	return out, nil
}

func (m *mockDependencies) Markdown(ctx context.Context, season int) (string, error) {
	if _, err := m.Season(ctx, season); err != nil {
		return "", err
	}
	return fmt.Sprintf("# KORM History - %d Season\n", season), nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func threeTeamSeason() *korm.SeasonResult {
	scores := make(model.SeasonScores)
	for week := 1; week <= 6; week++ {
		scores[week] = model.ScoreSet{"A": 120, "B": 100, "C": 80}
	}
	r, err := korm.ProcessSeason(korm.LookupSeason(2024), scores)
	if err != nil {
		panic(err)
	}
	return r
}

func newTestMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{
			results: map[int]*korm.SeasonResult{2024: threeTeamSeason()},
			jobID:   uuid.New(),
		}
		mux := newTestMux(deps)

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint serves the provider's stats", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("And unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And wrong methods are not found", func() {
			w := serve(mux, http.MethodDelete, "/seasons", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSeasonsHandler_Submit(t *testing.T) {
	Convey("Given a seasons endpoint", t, func() {
		deps := &mockDependencies{jobID: uuid.New()}
		mux := newTestMux(deps)

		Convey("When a valid season is posted", func() {
			w := serve(mux, http.MethodPost, "/seasons", `{"season":2024}`)

			Convey("Then it is accepted with a job id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["status"], ShouldEqual, "accepted")
				So(ack["job_id"], ShouldEqual, deps.jobID.String())
				So(ack["duplicate"], ShouldEqual, false)
				So(deps.submitted, ShouldResemble, []int{2024})
			})
		})

		Convey("When the season is already in flight", func() {
			deps.duplicate = true
			w := serve(mux, http.MethodPost, "/seasons", `{"season":2024}`)

			Convey("Then it is acknowledged as a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the body is malformed", func() {
			w := serve(mux, http.MethodPost, "/seasons", `{"season":`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "bad_request")
				So(deps.submitted, ShouldBeEmpty)
			})
		})

		Convey("When the season is not a year", func() {
			w := serve(mux, http.MethodPost, "/seasons", `{"season":24}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = queue.ErrFull
			w := serve(mux, http.MethodPost, "/seasons", `{"season":2024}`)

			Convey("Then backpressure is reported", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, "backpressure")
			})
		})

		Convey("When the queue is stopped", func() {
			deps.submitErr = queue.ErrStopped
			w := serve(mux, http.MethodPost, "/seasons", `{"season":2024}`)

			Convey("Then the service is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestSeasonsHandler_Reads(t *testing.T) {
	Convey("Given a processed 2024 season", t, func() {
		deps := &mockDependencies{results: map[int]*korm.SeasonResult{2024: threeTeamSeason()}}
		mux := newTestMux(deps)

		Convey("When listing seasons", func() {
			w := serve(mux, http.MethodGet, "/seasons", "")

			Convey("Then the season summary is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var list []types.SeasonSummary
				So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(list[0].Winner, ShouldEqual, "A")
			})
		})

		Convey("When fetching the season document", func() {
			w := serve(mux, http.MethodGet, "/seasons/2024", "")

			Convey("Then it decodes as a results document", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				res, err := report.Decode(w.Body)
				So(err, ShouldBeNil)
				So(res.Season, ShouldEqual, 2024)
				So(res.Winner, ShouldEqual, "A")
			})
		})

		Convey("When fetching an unknown season", func() {
			w := serve(mux, http.MethodGet, "/seasons/2019", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the season is not a number", func() {
			w := serve(mux, http.MethodGet, "/seasons/latest", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching final standings", func() {
			w := serve(mux, http.MethodGet, "/seasons/2024/standings", "")

			Convey("Then teams are listed by place", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.StandingEntry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].Team, ShouldEqual, "A")
				So(entries[0].Payout, ShouldEqual, 800)
			})
		})

		Convey("When fetching standings as of week 1", func() {
			w := serve(mux, http.MethodGet, "/seasons/2024/standings?week=1", "")

			Convey("Then the struck team is on notice", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.StandingEntry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries[2].Team, ShouldEqual, "C")
				So(entries[2].Status, ShouldEqual, "on_notice")
			})
		})

		Convey("When the week was never played", func() {
			w := serve(mux, http.MethodGet, "/seasons/2024/standings?week=13", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the week is invalid", func() {
			w := serve(mux, http.MethodGet, "/seasons/2024/standings?week=zero", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching the markdown narrative", func() {
			w := serve(mux, http.MethodGet, "/seasons/2024/markdown", "")

			Convey("Then markdown is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/markdown; charset=utf-8")
				So(w.Body.String(), ShouldStartWith, "# KORM History - 2024 Season")
			})
		})
	})
}
