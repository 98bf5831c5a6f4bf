package validation_test

import (
	"net/http"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rahmatfauzi/modular-backend/internal/core/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

type signupPayload struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

var _ = Describe("Validator", func() {
	var va *validation.Validator

	BeforeEach(func() {
		va = validation.New()
	})

	Describe("Struct", func() {
		It("accepts a valid payload", func() {
			appErr := va.Struct(&signupPayload{
				Username: "jdoe",
				Email:    "jdoe@example.com",
				Password: "correct horse",
			})
			Expect(appErr).To(BeNil())
		})

		It("aggregates all failing fields into one 400", func() {
			appErr := va.Struct(&signupPayload{Email: "not-an-email"})
			Expect(appErr).NotTo(BeNil())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(appErr.Name).To(Equal("Bad Request"))

			fields := appErr.Fields()
			Expect(fields).To(HaveLen(3))

			byProperty := map[string]map[string]string{}
			for _, f := range fields {
				byProperty[f.Property] = f.Constraints
			}
			Expect(byProperty["username"]).To(HaveKey("required"))
			Expect(byProperty["email"]).To(HaveKey("email"))
			Expect(byProperty["password"]).To(HaveKey("required"))
		})

		It("reports json property names, not Go field names", func() {
			appErr := va.Struct(&signupPayload{Username: "jd", Email: "x@y.dev", Password: "long enough"})
			fields := appErr.Fields()
			Expect(fields).To(HaveLen(1))
			Expect(fields[0].Property).To(Equal("username"))
			Expect(fields[0].Value).To(Equal("jd"))
			Expect(fields[0].Constraints).To(HaveKey("min"))
		})
	})

	Describe("StructPartial", func() {
		It("skips required rules for omitted fields", func() {
			appErr := va.StructPartial(&signupPayload{Username: "jdoe"})
			Expect(appErr).To(BeNil())
		})

		It("still validates the fields that are present", func() {
			appErr := va.StructPartial(&signupPayload{Email: "nope"})
			Expect(appErr).NotTo(BeNil())
			fields := appErr.Fields()
			Expect(fields).To(HaveLen(1))
			Expect(fields[0].Property).To(Equal("email"))
		})

		It("accepts a fully empty payload", func() {
			Expect(va.StructPartial(&signupPayload{})).To(BeNil())
		})
	})

	Describe("ForGroup", func() {
		It("routes the partial group to partial validation", func() {
			payload := &signupPayload{Username: "jdoe"}
			Expect(va.ForGroup(payload, validation.GroupPartial)).To(BeNil())
			Expect(va.ForGroup(payload, validation.GroupUpdate)).NotTo(BeNil())
		})
	})
})
