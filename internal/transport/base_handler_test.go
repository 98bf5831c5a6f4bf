package transport_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/transport"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

var _ = Describe("BaseHandler", func() {
	var h *transport.BaseHandler

	BeforeEach(func() {
		h = transport.NewBaseHandler(nil)
	})

	Describe("WriteAppError", func() {
		It("serializes a string-message error verbatim", func() {
			rec := httptest.NewRecorder()
			h.WriteAppError(rec, internal.ErrCredentialsInvalid)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["statusCode"]).To(Equal(float64(401)))
			Expect(body["error"]).To(Equal("Unauthorized"))
			Expect(body["message"]).To(Equal("invalid credentials"))
		})

		It("serializes field errors as a message list", func() {
			appErr := internal.NewFieldError("email", "emailActive", "email is not active", "a@b.dev")

			rec := httptest.NewRecorder()
			h.WriteAppError(rec, appErr)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body struct {
				StatusCode int    `json:"statusCode"`
				Error      string `json:"error"`
				Message    []struct {
					Property    string            `json:"property"`
					Value       interface{}       `json:"value"`
					Constraints map[string]string `json:"constraints"`
				} `json:"message"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.StatusCode).To(Equal(400))
			Expect(body.Error).To(Equal("Bad Request"))
			Expect(body.Message).To(HaveLen(1))
			Expect(body.Message[0].Property).To(Equal("email"))
			Expect(body.Message[0].Value).To(Equal("a@b.dev"))
			Expect(body.Message[0].Constraints).To(HaveKeyWithValue("emailActive", "email is not active"))
		})

		It("uses the permission denied label for 403s", func() {
			rec := httptest.NewRecorder()
			h.WriteAppError(rec, internal.NewPermissionDenied(""))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["error"]).To(Equal("Permission Denied"))
			Expect(body["message"]).To(Equal("Permission Denied"))
		})
	})

	Describe("DecodeJSON", func() {
		It("decodes a valid body", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
			var dst struct {
				Name string `json:"name"`
			}
			Expect(h.DecodeJSON(req, &dst)).To(BeNil())
			Expect(dst.Name).To(Equal("x"))
		})

		It("reports malformed JSON as a 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
			var dst struct{}
			appErr := h.DecodeJSON(req, &dst)
			Expect(appErr).NotTo(BeNil())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ExtractTokenFromHeader", func() {
		It("extracts a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer abc.def.ghi")
			Expect(h.ExtractTokenFromHeader(req)).To(Equal("abc.def.ghi"))
		})

		It("returns empty for missing or non-bearer headers", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			Expect(h.ExtractTokenFromHeader(req)).To(BeEmpty())

			req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			Expect(h.ExtractTokenFromHeader(req)).To(BeEmpty())
		})
	})
})
