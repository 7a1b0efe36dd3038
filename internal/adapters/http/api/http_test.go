package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/edgeskate/internal/adapters/http/api"
	"github.com/okian/edgeskate/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServer(t *testing.T) {
	Convey("Given a mux with the API routes", t, func() {
		mux := http.NewServeMux()
		api.NewServer().Register(context.Background(), mux)

		Convey("When requesting /healthz", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it reports ok as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				var body map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When posting to /healthz", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

			Convey("Then the method is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When scraping /metrics after a session", func() {
			metrics.RecordSessionProcessed()
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the pipeline series are exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "edgeskate_pipeline_sessions_processed_total")
			})
		})

		Convey("When scraping after a health request", func() {
			first := httptest.NewRecorder()
			mux.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then HTTP request metrics are recorded", func() {
				So(rec.Body.String(), ShouldContainSubstring, `edgeskate_http_requests_total{endpoint="healthz"`)
			})
		})
	})
}
