package pagination_test

import (
	"net/url"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rahmatfauzi/modular-backend/internal/core/pagination"
)

func TestPagination(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pagination Suite")
}

var _ = Describe("PageNumber strategy", func() {
	var strategy *pagination.PageNumber

	BeforeEach(func() {
		strategy = pagination.NewPageNumber(10)
	})

	Describe("Window", func() {
		It("defaults to page 1 with the configured limit", func() {
			limit, offset := strategy.Window(url.Values{})
			Expect(limit).To(Equal(10))
			Expect(offset).To(Equal(0))
		})

		It("computes the offset from the page number", func() {
			params := url.Values{"page": {"3"}, "limit": {"5"}}
			limit, offset := strategy.Window(params)
			Expect(limit).To(Equal(5))
			Expect(offset).To(Equal(10))
		})

		It("ignores malformed page values", func() {
			params := url.Values{"page": {"banana"}}
			_, offset := strategy.Window(params)
			Expect(offset).To(Equal(0))
		})
	})

	Describe("Links", func() {
		It("returns no previous link on the first page", func() {
			next, previous := strategy.Links(url.Values{}, "/api/notes", 25)
			Expect(previous).To(BeNil())
			Expect(next).NotTo(BeNil())
		})

		It("returns no next link when the window reaches the end", func() {
			params := url.Values{"page": {"3"}, "limit": {"10"}}
			next, previous := strategy.Links(params, "/api/notes", 25)
			Expect(next).To(BeNil())
			Expect(previous).NotTo(BeNil())
		})

		It("returns both links for a middle page", func() {
			params := url.Values{"page": {"2"}, "limit": {"10"}}
			next, previous := strategy.Links(params, "/api/notes", 25)
			Expect(next).NotTo(BeNil())
			Expect(previous).NotTo(BeNil())
			Expect(*next).To(ContainSubstring("page=3"))
		})

		It("drops the page param when the previous page is the first", func() {
			params := url.Values{"page": {"2"}, "limit": {"10"}}
			_, previous := strategy.Links(params, "/api/notes", 25)
			Expect(previous).NotTo(BeNil())
			Expect(*previous).NotTo(ContainSubstring("page="))
		})

		It("returns no links at all when everything fits one page", func() {
			next, previous := strategy.Links(url.Values{}, "/api/notes", 5)
			Expect(next).To(BeNil())
			Expect(previous).To(BeNil())
		})

		It("preserves unrelated query parameters", func() {
			params := url.Values{"page": {"2"}, "limit": {"10"}, "search": {"First"}}
			next, previous := strategy.Links(params, "/api/notes", 30)
			Expect(*next).To(ContainSubstring("search=First"))
			Expect(*previous).To(ContainSubstring("search=First"))
		})
	})
})

var _ = Describe("LimitOffset strategy", func() {
	var strategy *pagination.LimitOffset

	BeforeEach(func() {
		strategy = pagination.NewLimitOffset(10)
	})

	Describe("Window", func() {
		It("defaults to offset 0", func() {
			limit, offset := strategy.Window(url.Values{})
			Expect(limit).To(Equal(10))
			Expect(offset).To(Equal(0))
		})

		It("reads limit and offset directly", func() {
			params := url.Values{"limit": {"5"}, "offset": {"15"}}
			limit, offset := strategy.Window(params)
			Expect(limit).To(Equal(5))
			Expect(offset).To(Equal(15))
		})
	})

	Describe("Links", func() {
		It("advances the offset by the limit for the next link", func() {
			params := url.Values{"limit": {"10"}, "offset": {"10"}}
			next, previous := strategy.Links(params, "/api/notes", 40)
			Expect(*next).To(ContainSubstring("offset=20"))
			Expect(previous).NotTo(BeNil())
		})

		It("omits previous at offset zero and next at the end", func() {
			next, previous := strategy.Links(url.Values{"limit": {"10"}}, "/api/notes", 10)
			Expect(next).To(BeNil())
			Expect(previous).To(BeNil())
		})

		It("drops the offset param when the previous window starts at zero", func() {
			params := url.Values{"limit": {"10"}, "offset": {"10"}}
			_, previous := strategy.Links(params, "/api/notes", 40)
			Expect(previous).NotTo(BeNil())
			Expect(*previous).NotTo(ContainSubstring("offset="))
			Expect(*previous).To(ContainSubstring("limit=10"))
		})

		It("steps the offset back by one limit otherwise", func() {
			params := url.Values{"limit": {"10"}, "offset": {"30"}}
			_, previous := strategy.Links(params, "/api/notes", 100)
			Expect(*previous).To(ContainSubstring("offset=20"))
		})

		It("preserves unrelated query parameters", func() {
			params := url.Values{"limit": {"10"}, "offset": {"20"}, "sortBy": {"-id"}}
			next, _ := strategy.Links(params, "/api/notes", 100)
			Expect(*next).To(ContainSubstring("sortBy=-id"))
		})
	})
})
