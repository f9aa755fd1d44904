package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/satlens/internal/adapters/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

const czmlBody = `[{"id":"document"},{"id":"25544","properties":{"DIT":0.4}}]`

// fakeIon serves the three catalog calls.
func fakeIon(t *testing.T, assets string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/assets", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RawQuery+"|"+r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(assets))
	})
	mux.HandleFunc("/v1/assets/42/endpoint", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, "endpoint|"+r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"type":"3DTILES","url":"/assets/42/data.czml","accessToken":"asset-token"}`))
	})
	mux.HandleFunc("/assets/42/data.czml", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, "download|"+r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(czmlBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestClientFetch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a catalog listing two assets", t, func() {
		srv, seen := fakeIon(t, `{"items":[
			{"id":42,"name":"ldit-latest","type":"CZML","status":"COMPLETE","dateAdded":"2024-03-01T10:00:00Z"},
			{"id":7,"name":"ldit-old","type":"CZML","status":"COMPLETE","dateAdded":"2024-02-01T10:00:00Z"}
		]}`)
		c, err := catalog.New(srv.URL, "user-token")
		So(err, ShouldBeNil)

		Convey("When fetching the latest asset", func() {
			ds, err := c.Fetch(ctx, 0)

			Convey("Then the first listed asset is downloaded", func() {
				So(err, ShouldBeNil)
				So(ds.Asset.ID, ShouldEqual, int64(42))
				So(ds.Asset.Name, ShouldEqual, "ldit-latest")
				So(string(ds.Data), ShouldEqual, czmlBody)
			})

			Convey("Then each call carries the right query and token", func() {
				So(*seen, ShouldHaveLength, 3)
				So((*seen)[0], ShouldContainSubstring, "sortBy=DATE_ADDED")
				So((*seen)[0], ShouldContainSubstring, "sortOrder=DESC")
				So((*seen)[0], ShouldContainSubstring, "status=COMPLETE")
				So((*seen)[0], ShouldEndWith, "|Bearer user-token")
				So((*seen)[1], ShouldEqual, "endpoint|Bearer user-token")
				So((*seen)[2], ShouldEqual, "download|Bearer asset-token")
			})
		})

		Convey("When fetching a pinned asset", func() {
			ds, err := c.Fetch(ctx, 42)

			Convey("Then the listing call is skipped", func() {
				So(err, ShouldBeNil)
				So(ds.Asset.ID, ShouldEqual, int64(42))
				So(*seen, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given an empty catalog", t, func() {
		srv, _ := fakeIon(t, `{"items":[]}`)
		c, err := catalog.New(srv.URL, "user-token")
		So(err, ShouldBeNil)

		_, err = c.Fetch(ctx, 0)
		So(err, ShouldWrap, catalog.ErrDatasetLoad)
		So(err, ShouldWrap, catalog.ErrNoAssets)
	})

	Convey("Given a catalog that rejects the token", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"code":"InvalidCredentials"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()
		c, err := catalog.New(srv.URL, "bad")
		So(err, ShouldBeNil)

		_, err = c.Fetch(ctx, 0)

		Convey("Then a dataset load error is returned", func() {
			So(err, ShouldWrap, catalog.ErrDatasetLoad)
			So(err, ShouldWrap, catalog.ErrUnexpectedStatus)
			So(err.Error(), ShouldContainSubstring, "401")
		})
	})

	Convey("Given a dataset larger than the limit", t, func() {
		srv, _ := fakeIon(t, `{"items":[{"id":42}]}`)
		c, err := catalog.New(srv.URL, "user-token", catalog.WithMaxBytes(int64(len(czmlBody)-1)))
		So(err, ShouldBeNil)

		_, err = c.Fetch(ctx, 0)
		So(err, ShouldWrap, catalog.ErrTooLarge)
	})

	Convey("Given a malformed listing", t, func() {
		srv, _ := fakeIon(t, `not json`)
		c, err := catalog.New(srv.URL, "user-token")
		So(err, ShouldBeNil)

		_, err = c.ListAssets(ctx)
		So(err, ShouldWrap, catalog.ErrDatasetLoad)
	})

	Convey("Given an invalid base url", t, func() {
		_, err := catalog.New("::not a url", "x")
		So(err, ShouldNotBeNil)
		_, err = catalog.New("", "x")
		So(err, ShouldNotBeNil)
	})
}
