package tariff_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/core/testdb"
	"github.com/frahmantamala/petirpay/internal/tariff"
	tariffPostgres "github.com/frahmantamala/petirpay/internal/tariff/postgres"
	"github.com/frahmantamala/petirpay/internal/transport"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Tariff Handler Integration", func() {
	var (
		router  *chi.Mux
		service *tariff.Service
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)

		service = tariff.NewService(tariffPostgres.NewTariffRepository(db), logger.Discard())
		handler := tariff.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Get("/tariffs", handler.ListTariffs)
		router.Post("/tariffs", handler.CreateTariff)
		router.Get("/tariffs/{id}", handler.GetTariff)
		router.Put("/tariffs/{id}", handler.UpdateTariff)
		router.Delete("/tariffs/{id}", handler.DeleteTariff)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates and lists tariffs", func() {
		w := do(http.MethodPost, "/tariffs", map[string]interface{}{"power_class": "900VA", "rate_per_kwh": "1500", "description": "R1"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/tariffs", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp tariff.TariffsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Tariffs).To(HaveLen(1))
		Expect(resp.Tariffs[0].RatePerKWh.Equal(decimal.NewFromInt(1500))).To(BeTrue())
	})

	It("returns field errors for invalid input", func() {
		w := do(http.MethodPost, "/tariffs", map[string]interface{}{"power_class": "", "rate_per_kwh": 0})
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal(string(internal.ErrCodeValidationFailed)))
	})

	It("returns 404 for an unknown tariff", func() {
		w := do(http.MethodGet, "/tariffs/77", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 400 for a malformed id", func() {
		w := do(http.MethodDelete, "/tariffs/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("deletes an unused tariff", func() {
		created, err := service.Create(context.Background(), tariff.TariffDTO{PowerClass: "450VA", RatePerKWh: decimal.NewFromInt(415)})
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodDelete, "/tariffs/"+strconv.FormatInt(created.ID, 10), nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})
})
