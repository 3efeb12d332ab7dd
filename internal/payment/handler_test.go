package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/petirpay/internal"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	"github.com/frahmantamala/petirpay/internal/payment"
	"github.com/frahmantamala/petirpay/internal/transport"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeService struct {
	payment.ServiceAPI

	submitted  *payment.SubmitDTO
	proof      string
	customerID int64
	verifiedBy int64
	verifyNote string
	err        error
}

func (f *fakeService) Submit(_ context.Context, customerID int64, dto payment.SubmitDTO, proof io.Reader) (*payment.Payment, error) {
	f.customerID = customerID
	f.submitted = &dto
	if proof != nil {
		b, _ := io.ReadAll(proof)
		f.proof = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Payment{ID: 11, BillID: dto.BillID, PaymentMethodID: dto.PaymentMethodID, VerificationStatus: paymentDatamodel.VerificationAwaiting}, nil
}

func (f *fakeService) Approve(_ context.Context, staffID, id int64, dto payment.VerifyDTO) (*payment.Payment, error) {
	f.verifiedBy = staffID
	f.verifyNote = dto.Note
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Payment{ID: id, VerificationStatus: paymentDatamodel.VerificationApproved, VerifiedBy: &staffID}, nil
}

var _ = Describe("Payment Handler", func() {
	var (
		fake    *fakeService
		handler *payment.Handler
		router  *chi.Mux
	)

	asCustomer := func(r *http.Request) *http.Request {
		return r.WithContext(internal.ContextWithPrincipal(r.Context(), &internal.Principal{ID: 42, Kind: internal.PrincipalCustomer}))
	}
	asStaff := func(r *http.Request) *http.Request {
		return r.WithContext(internal.ContextWithPrincipal(r.Context(), &internal.Principal{ID: 7, Kind: internal.PrincipalStaff}))
	}

	multipartSubmit := func(withProof bool) *http.Request {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		Expect(mw.WriteField("bill_id", "5")).To(Succeed())
		Expect(mw.WriteField("payment_method_id", "2")).To(Succeed())
		if withProof {
			part, err := mw.CreateFormFile("proof", "transfer.jpg")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/me/payments", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return asCustomer(req)
	}

	decodeError := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body struct {
			Error map[string]interface{} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error
	}

	BeforeEach(func() {
		fake = &fakeService{}
		handler = payment.NewHandler(transport.NewBaseHandler(logger.Discard()), fake)
		router = chi.NewRouter()
		router.Post("/me/payments", handler.SubmitPayment)
		router.Patch("/payments/{id}/approve", handler.ApprovePayment)
	})

	Describe("SubmitPayment", func() {
		It("passes form fields, proof and the caller to the service", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartSubmit(true))

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(fake.customerID).To(Equal(int64(42)))
			Expect(fake.submitted.BillID).To(Equal(int64(5)))
			Expect(fake.submitted.PaymentMethodID).To(Equal(int64(2)))
			Expect(fake.proof).To(Equal("jpeg bytes"))

			var p payment.Payment
			Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
			Expect(p.VerificationStatus).To(Equal(paymentDatamodel.VerificationAwaiting))
		})

		It("accepts a submission without proof", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartSubmit(false))

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(fake.proof).To(BeEmpty())
		})

		It("maps an active payment conflict to 409", func() {
			fake.err = internal.ErrActivePaymentExists

			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartSubmit(true))

			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(decodeError(w)["code"]).To(Equal(string(internal.ErrCodeActivePaymentExists)))
		})

		It("rejects an anonymous caller", func() {
			req := httptest.NewRequest(http.MethodPost, "/me/payments", strings.NewReader(""))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(fake.submitted).To(BeNil())
		})
	})

	Describe("ApprovePayment", func() {
		It("approves with an empty body", func() {
			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/9/approve", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.verifiedBy).To(Equal(int64(7)))

			var p payment.Payment
			Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())
			Expect(p.ID).To(Equal(int64(9)))
			Expect(p.VerificationStatus).To(Equal(paymentDatamodel.VerificationApproved))
		})

		It("forwards the note", func() {
			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/9/approve", strings.NewReader(`{"note":"transfer matched"}`)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.verifyNote).To(Equal("transfer matched"))
		})

		It("approves with an empty chunked body", func() {
			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/9/approve", strings.NewReader("")))
			req.ContentLength = -1
			req.TransferEncoding = []string{"chunked"}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.verifiedBy).To(Equal(int64(7)))
			Expect(fake.verifyNote).To(BeEmpty())
		})

		It("reads a note from a chunked body", func() {
			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/9/approve", strings.NewReader(`{"note":"cash at counter"}`)))
			req.ContentLength = -1
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.verifyNote).To(Equal("cash at counter"))
		})

		It("still rejects a malformed body", func() {
			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/9/approve", strings.NewReader(`{"note":`)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(fake.verifiedBy).To(BeZero())
		})

		It("rejects a malformed id", func() {
			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/abc/approve", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("reports a missing payment as 404", func() {
			fake.err = internal.ErrPaymentNotFound

			req := asStaff(httptest.NewRequest(http.MethodPatch, "/payments/99/approve", nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
