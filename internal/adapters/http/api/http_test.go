package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/satlens/internal/adapters/http/api"
	"github.com/okian/satlens/internal/adapters/repository"
	service "github.com/okian/satlens/internal/app"
	"github.com/okian/satlens/internal/domain/selection"
	"github.com/okian/satlens/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records calls and answers with canned results.
type mockDependencies struct {
	err error

	pickedID  string
	pickedAt  [2]float64
	pickAtHit bool
	query     string
	metric    string
	placed    []service.ScreenPosition
	resets    int
	homes     int
	visible   bool

	rankMetric string
	rankTop    int
	rankBottom int

	legend types.Legend
	health types.Health
}

func (m *mockDependencies) Pick(_ context.Context, id string) (types.PickResult, error) {
	if m.err != nil {
		return types.PickResult{}, m.err
	}
	m.pickedID = id
	if id == "" {
		return types.PickResult{Highlighted: []string{}}, nil
	}
	return types.PickResult{ID: id, Highlighted: []string{id}}, nil
}

func (m *mockDependencies) PickAt(_ context.Context, x, y float64) (types.PickResult, error) {
	if m.err != nil {
		return types.PickResult{}, m.err
	}
	m.pickAtHit = true
	m.pickedAt = [2]float64{x, y}
	return types.PickResult{ID: "sat-1", Highlighted: []string{"sat-1"}}, nil
}

func (m *mockDependencies) Place(_ context.Context, positions []service.ScreenPosition) error {
	if m.err != nil {
		return m.err
	}
	m.placed = positions
	return nil
}

func (m *mockDependencies) Search(_ context.Context, query string) (types.SearchResult, error) {
	if m.err != nil {
		return types.SearchResult{}, m.err
	}
	m.query = query
	return types.SearchResult{ID: query}, nil
}

func (m *mockDependencies) SelectMetric(_ context.Context, metric string) (types.Legend, error) {
	if m.err != nil {
		return types.Legend{}, m.err
	}
	m.metric = metric
	return m.legend, nil
}

func (m *mockDependencies) Reset(context.Context) error {
	m.resets++
	return m.err
}

func (m *mockDependencies) Home(context.Context) error {
	m.homes++
	return m.err
}

func (m *mockDependencies) ToggleRankings(context.Context) (types.ToggleResult, error) {
	if m.err != nil {
		return types.ToggleResult{}, m.err
	}
	m.visible = !m.visible
	return types.ToggleResult{Visible: m.visible}, nil
}

func (m *mockDependencies) State(context.Context) types.State {
	return types.State{Status: m.health.Status, Mode: "accumulate", Highlighted: []string{"sat-1"}, Camera: "home"}
}

func (m *mockDependencies) Object(_ context.Context, id string) (types.ObjectDetail, error) {
	if m.err != nil {
		return types.ObjectDetail{}, m.err
	}
	if id != "sat-1" {
		return types.ObjectDetail{}, fmt.Errorf("object %s: %w", id, repository.ErrNotFound)
	}
	return types.ObjectDetail{ID: id, Name: "SAT 1", Metrics: map[string]float64{"DIT": 0.5}}, nil
}

func (m *mockDependencies) Legend(context.Context) types.Legend {
	return m.legend
}

func (m *mockDependencies) Rankings(_ context.Context, metric string, topN, bottomN int) (types.Rankings, error) {
	if m.err != nil {
		return types.Rankings{}, m.err
	}
	m.rankMetric, m.rankTop, m.rankBottom = metric, topN, bottomN
	return types.Rankings{Metric: metric, Top: []types.RankingEntry{}, Bottom: []types.RankingEntry{}}, nil
}

func (m *mockDependencies) Health() types.Health {
	return m.health
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return map[string]interface{}{"objects": 2}
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{health: types.Health{Status: types.StatusReady, Objects: 2}}
		mux := newMux(deps)

		Convey("When checking health", func() {
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then the status is reported as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				var h types.Health
				So(json.Unmarshal(w.Body.Bytes(), &h), ShouldBeNil)
				So(h.Status, ShouldEqual, types.StatusReady)
				So(h.Objects, ShouldEqual, 2)
			})
		})

		Convey("When health is requested while loading", func() {
			deps.health = types.Health{Status: types.StatusLoading}
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then it still answers 200", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"loading"`)
			})
		})

		Convey("When scraping metrics", func() {
			do(mux, http.MethodGet, "/stats", "")
			w := do(mux, http.MethodGet, "/metrics", "")

			Convey("Then Prometheus text is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then the provider's stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"objects":2`)
			})
		})

		Convey("When requesting an unknown route", func() {
			w := do(mux, http.MethodGet, "/unknown", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodGet, "/pick", "")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When any request is served", func() {
			w := do(mux, http.MethodGet, "/state", "")

			Convey("Then a request id is attached", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When the caller sends a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/state", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestPick(t *testing.T) {
	Convey("Given a ready viewer", t, func() {
		deps := &mockDependencies{health: types.Health{Status: types.StatusReady}}
		mux := newMux(deps)

		Convey("When picking by id", func() {
			w := do(mux, http.MethodPost, "/pick", `{"id":" sat-1 "}`)

			Convey("Then the trimmed id is picked", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.pickedID, ShouldEqual, "sat-1")
				var res types.PickResult
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.Highlighted, ShouldResemble, []string{"sat-1"})
			})
		})

		Convey("When picking by screen position", func() {
			w := do(mux, http.MethodPost, "/pick", `{"x":0,"y":12.5}`)

			Convey("Then PickAt receives the coordinates", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.pickAtHit, ShouldBeTrue)
				So(deps.pickedAt, ShouldResemble, [2]float64{0, 12.5})
			})
		})

		Convey("When picking empty space with no body", func() {
			w := do(mux, http.MethodPost, "/pick", "")

			Convey("Then an empty pick is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.pickedID, ShouldEqual, "")
				So(deps.pickAtHit, ShouldBeFalse)
			})
		})

		Convey("When only x is given", func() {
			w := do(mux, http.MethodPost, "/pick", `{"x":1}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/pick", `{`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the id is unknown", func() {
			deps.err = fmt.Errorf("pick nope: %w", selection.ErrNotFound)
			w := do(mux, http.MethodPost, "/pick", `{"id":"nope"}`)

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "not_found")
			})
		})

		Convey("When the dataset is still loading", func() {
			deps.err = service.ErrNotReady
			w := do(mux, http.MethodPost, "/pick", `{"id":"sat-1"}`)

			Convey("Then the service is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(errorCode(w), ShouldEqual, "loading")
			})
		})
	})
}

func TestViewerRoutes(t *testing.T) {
	Convey("Given a ready viewer", t, func() {
		deps := &mockDependencies{
			health: types.Health{Status: types.StatusReady},
			legend: types.Legend{Metric: "DIT", Items: []types.LegendItem{{Color: "rgb(255,0,0)", Label: "0.00 - 1.00", Max: 1}}},
		}
		mux := newMux(deps)

		Convey("When searching", func() {
			w := do(mux, http.MethodPost, "/search", `{"query":"sat-1"}`)

			Convey("Then the query is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.query, ShouldEqual, "sat-1")
				So(w.Body.String(), ShouldContainSubstring, `"id":"sat-1"`)
			})
		})

		Convey("When searching with an empty query", func() {
			deps.err = selection.ErrEmptyQuery
			w := do(mux, http.MethodPost, "/search", `{"query":""}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When selecting a metric", func() {
			w := do(mux, http.MethodPost, "/metric", `{"name":"DIT"}`)

			Convey("Then the legend is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.metric, ShouldEqual, "DIT")
				var legend types.Legend
				So(json.Unmarshal(w.Body.Bytes(), &legend), ShouldBeNil)
				So(legend.Items, ShouldHaveLength, 1)
			})
		})

		Convey("When selecting a metric without data", func() {
			deps.legend = types.Legend{Metric: "ZZZ", NoData: true, Items: []types.LegendItem{}}
			w := do(mux, http.MethodPost, "/metric", `{"name":"ZZZ"}`)

			Convey("Then it answers 200 with an empty legend", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"no_data":true`)
				So(w.Body.String(), ShouldContainSubstring, `"items":[]`)
			})
		})

		Convey("When selecting a metric without a name", func() {
			w := do(mux, http.MethodPost, "/metric", `{}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When resetting and going home", func() {
			w1 := do(mux, http.MethodPost, "/reset", "")
			w2 := do(mux, http.MethodPost, "/home", "")

			Convey("Then both are acknowledged", func() {
				So(w1.Code, ShouldEqual, http.StatusOK)
				So(w2.Code, ShouldEqual, http.StatusOK)
				So(deps.resets, ShouldEqual, 1)
				So(deps.homes, ShouldEqual, 1)
			})
		})

		Convey("When toggling rankings twice", func() {
			first := do(mux, http.MethodPost, "/rankings/toggle", "")
			second := do(mux, http.MethodPost, "/rankings/toggle", "")

			Convey("Then visibility flips each time", func() {
				So(first.Body.String(), ShouldContainSubstring, `"visible":true`)
				So(second.Body.String(), ShouldContainSubstring, `"visible":false`)
			})
		})

		Convey("When posting a layout", func() {
			w := do(mux, http.MethodPost, "/layout", `{"positions":[{"id":"sat-1","x":10,"y":20}]}`)

			Convey("Then positions are placed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.placed, ShouldResemble, []service.ScreenPosition{{ID: "sat-1", X: 10, Y: 20}})
			})
		})

		Convey("When posting an empty layout", func() {
			w := do(mux, http.MethodPost, "/layout", `{"positions":[]}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestQueryRoutes(t *testing.T) {
	Convey("Given a ready viewer", t, func() {
		deps := &mockDependencies{
			health: types.Health{Status: types.StatusReady},
			legend: types.Legend{Metric: "DIT", Items: []types.LegendItem{}},
		}
		mux := newMux(deps)

		Convey("When reading state", func() {
			w := do(mux, http.MethodGet, "/state", "")

			Convey("Then the view state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var st types.State
				So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
				So(st.Highlighted, ShouldResemble, []string{"sat-1"})
			})
		})

		Convey("When reading a known object", func() {
			w := do(mux, http.MethodGet, "/objects/sat-1", "")

			Convey("Then the detail is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"DIT":0.5`)
			})
		})

		Convey("When reading an unknown object", func() {
			w := do(mux, http.MethodGet, "/objects/nope", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When reading the legend", func() {
			w := do(mux, http.MethodGet, "/legend", "")

			Convey("Then the legend is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"metric":"DIT"`)
			})
		})

		Convey("When reading rankings without parameters", func() {
			w := do(mux, http.MethodGet, "/rankings", "")

			Convey("Then defaults are requested", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.rankMetric, ShouldEqual, "")
				So(deps.rankTop, ShouldEqual, -1)
				So(deps.rankBottom, ShouldEqual, -1)
			})
		})

		Convey("When reading rankings with parameters", func() {
			w := do(mux, http.MethodGet, "/rankings?metric=SGP4&top=3&bottom=0", "")

			Convey("Then they are forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.rankMetric, ShouldEqual, "SGP4")
				So(deps.rankTop, ShouldEqual, 3)
				So(deps.rankBottom, ShouldEqual, 0)
			})
		})

		Convey("When a ranking limit is invalid", func() {
			bad := do(mux, http.MethodGet, "/rankings?top=abc", "")
			neg := do(mux, http.MethodGet, "/rankings?bottom=-2", "")
			big := do(mux, http.MethodGet, "/rankings?top=100000", "")

			Convey("Then each is a bad request", func() {
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(neg.Code, ShouldEqual, http.StatusBadRequest)
				So(big.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When rankings are requested while loading", func() {
			deps.err = service.ErrNotReady
			w := do(mux, http.MethodGet, "/rankings", "")

			Convey("Then the service is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestAuth(t *testing.T) {
	Convey("Given a server with an API token", t, func() {
		deps := &mockDependencies{health: types.Health{Status: types.StatusReady}}
		mux := newMux(deps, api.WithToken("s3cret"))

		Convey("When a mutating route is called without a token", func() {
			w := do(mux, http.MethodPost, "/reset", "")

			Convey("Then it is unauthorized", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(errorCode(w), ShouldEqual, "unauthorized")
				So(deps.resets, ShouldEqual, 0)
			})
		})

		Convey("When the token is wrong", func() {
			req := httptest.NewRequest(http.MethodPost, "/reset", nil)
			req.Header.Set("Authorization", "Bearer nope")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is unauthorized", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When the token matches", func() {
			req := httptest.NewRequest(http.MethodPost, "/reset", nil)
			req.Header.Set("Authorization", "Bearer s3cret")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the call goes through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.resets, ShouldEqual, 1)
			})
		})

		Convey("When a read route is called without a token", func() {
			w := do(mux, http.MethodGet, "/state", "")

			Convey("Then it stays public", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestServerWithNilMux(t *testing.T) {
	Convey("Given a server", t, func() {
		server := api.NewServer(&mockDependencies{})

		Convey("Then registering on a nil mux panics", func() {
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
