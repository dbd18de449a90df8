package internal_test

import (
	"time"

	"github.com/frahmantamala/cardtracker/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	defaults := func() *internal.Config {
		cfg := &internal.Config{}
		cfg.ApplyDefaults()
		return cfg
	}

	It("is valid with defaults only", func() {
		cfg := defaults()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Storage.Backend).To(Equal(internal.StorageBackendFile))
		Expect(cfg.Reminder.DaysBefore).To(Equal([]int{7, 1, 0}))
		Expect(cfg.Locale.Location().String()).To(Equal("Asia/Ho_Chi_Minh"))
	})

	It("rejects an unknown backend", func() {
		cfg := defaults()
		cfg.Storage.Backend = "s3"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("Backend")))
	})

	It("requires credentials for jsonbin", func() {
		cfg := defaults()
		cfg.Storage.Backend = internal.StorageBackendJSONBin
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("jsonbin.api_key")))

		cfg.Storage.JSONBin.APIKey = "key"
		cfg.Storage.JSONBin.BinID = "bin"
		Expect(cfg.Validate()).To(Succeed())
	})

	It("requires a source for sql backends", func() {
		cfg := defaults()
		cfg.Storage.Backend = internal.StorageBackendPostgres
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("database.source")))
	})

	It("rejects more idle than open connections", func() {
		cfg := defaults()
		cfg.Storage.Backend = internal.StorageBackendSQLite
		cfg.Storage.Database.Source = "file:cards.db"
		cfg.Storage.Database.MaxIdleConns = 20
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("rejects an unknown timezone", func() {
		cfg := defaults()
		cfg.Locale.Timezone = "Mars/Olympus"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("invalid timezone")))
		Expect(cfg.Locale.Location()).To(Equal(time.UTC))
	})

	It("rejects reminder offsets beyond a month", func() {
		cfg := defaults()
		cfg.Reminder.DaysBefore = []int{40}
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("splits allowed origins", func() {
		cfg := defaults()
		cfg.Server.AllowedOrigins = "http://localhost:3000, https://cards.example ,"
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000", "https://cards.example"}))
	})

	Describe("LoadConfigFromEnv", func() {
		It("reads overrides from the environment", func() {
			GinkgoT().Setenv("STORAGE_BACKEND", "sqlite")
			GinkgoT().Setenv("DATABASE_URL", "file:test.db")
			GinkgoT().Setenv("REMIND_DAYS_BEFORE", "3, 0")
			GinkgoT().Setenv("REMINDER_INTERVAL", "15m")
			GinkgoT().Setenv("STORAGE_CACHE_ENABLED", "true")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Storage.Backend).To(Equal(internal.StorageBackendSQLite))
			Expect(cfg.Storage.Database.Source).To(Equal("file:test.db"))
			Expect(cfg.Storage.CacheEnabled).To(BeTrue())
			Expect(cfg.Reminder.DaysBefore).To(Equal([]int{3, 0}))
			Expect(cfg.Reminder.Interval).To(Equal(15 * time.Minute))
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})
