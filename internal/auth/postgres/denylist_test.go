package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	authpostgres "github.com/rahmatfauzi/modular-backend/internal/auth/postgres"
)

func TestDenylistPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Denylist Repository Suite")
}

var _ = Describe("Denylist", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		denylist *authpostgres.Denylist
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&authpostgres.RevokedToken{})).To(Succeed())

		denylist = authpostgres.NewDenylist(db)
	})

	It("answers membership after a revocation", func() {
		Expect(denylist.Revoke(ctx, "jti-1", 1, time.Now().Add(time.Hour))).To(Succeed())

		revoked, err := denylist.Contains(ctx, "jti-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeTrue())

		revoked, err = denylist.Contains(ctx, "jti-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(revoked).To(BeFalse())
	})

	It("ignores a duplicate revocation", func() {
		Expect(denylist.Revoke(ctx, "jti-1", 1, time.Now().Add(time.Hour))).To(Succeed())
		Expect(denylist.Revoke(ctx, "jti-1", 1, time.Now().Add(time.Hour))).To(Succeed())

		var count int64
		Expect(db.Model(&authpostgres.RevokedToken{}).Count(&count).Error).To(Succeed())
		Expect(count).To(Equal(int64(1)))
	})

	Describe("PurgeExpired", func() {
		It("removes only entries past their expiry", func() {
			Expect(denylist.Revoke(ctx, "expired", 1, time.Now().Add(-time.Hour))).To(Succeed())
			Expect(denylist.Revoke(ctx, "live", 1, time.Now().Add(time.Hour))).To(Succeed())

			purged, err := denylist.PurgeExpired(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(purged).To(Equal(int64(1)))

			revoked, err := denylist.Contains(ctx, "live")
			Expect(err).NotTo(HaveOccurred())
			Expect(revoked).To(BeTrue())
		})
	})
})
