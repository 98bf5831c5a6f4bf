package middleware_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rahmatfauzi/modular-backend/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("FilterSensitiveJSON", func() {
	It("masks credential-bearing fields", func() {
		out := middleware.FilterSensitiveJSON([]byte(`{"username":"jdoe","password":"hunter2","accessToken":"abc"}`))
		Expect(out).To(ContainSubstring(`"username":"jdoe"`))
		Expect(out).To(ContainSubstring(`"password":"[FILTERED]"`))
		Expect(out).NotTo(ContainSubstring("hunter2"))
		Expect(out).NotTo(ContainSubstring("abc"))
	})

	It("masks nested and array payloads", func() {
		out := middleware.FilterSensitiveJSON([]byte(`{"items":[{"secret":"s3cret","note":"fine"}]}`))
		Expect(out).To(ContainSubstring(`"note":"fine"`))
		Expect(out).NotTo(ContainSubstring("s3cret"))
	})

	It("labels unparseable bodies", func() {
		Expect(middleware.FilterSensitiveJSON([]byte("not json"))).To(Equal("[UNPARSEABLE]"))
	})

	It("passes empty bodies through", func() {
		Expect(middleware.FilterSensitiveJSON(nil)).To(Equal(""))
	})
})
