package recordstore_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/frahmantamala/cardtracker/internal/recordstore"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRecordStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Record Store Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func put(c recordstore.Collection, id, name string) recordstore.Mutation {
	m, err := recordstore.Put(c, id, item{ID: id, Name: name})
	Expect(err).NotTo(HaveOccurred())
	return m
}

func names(records []recordstore.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		var it item
		Expect(r.Decode(&it)).To(Succeed())
		out = append(out, it.Name)
	}
	return out
}

func newSQLiteStore() *recordstore.SQLStore {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	store := recordstore.NewSQLStore(db, testLogger)
	Expect(store.AutoMigrate()).To(Succeed())
	return store
}

// fakeJSONBin mimics the JSONBin v3 bin endpoints for a single bin.
type fakeJSONBin struct {
	mu      sync.Mutex
	content []byte
	fail    bool
	puts    int
}

func (f *fakeJSONBin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("X-Master-Key") != "secret" || r.Header.Get("X-Bin-Meta") != "false" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/b/bin-1/latest":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(f.content)
	case r.Method == http.MethodPut && r.URL.Path == "/b/bin-1":
		body, _ := io.ReadAll(r.Body)
		f.content = body
		f.puts++
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func storeBehaviour(newStore func() recordstore.Store) {
	var (
		ctx   context.Context
		store recordstore.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStore()
	})

	It("starts empty", func() {
		records, err := store.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("puts and reads back records per collection", func() {
		Expect(store.Apply(ctx,
			put(recordstore.Cards, "c1", "Visa"),
			put(recordstore.Cards, "c2", "Master"),
			put(recordstore.Payments, "p1", "first"),
		)).To(Succeed())

		cards, err := store.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(names(cards)).To(Equal([]string{"Visa", "Master"}))

		payments, err := store.List(ctx, recordstore.Payments)
		Expect(err).NotTo(HaveOccurred())
		Expect(names(payments)).To(Equal([]string{"first"}))

		rec, err := store.Get(ctx, recordstore.Cards, "c2")
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.ID).To(Equal("c2"))
	})

	It("replaces a record on a second put", func() {
		Expect(store.Apply(ctx, put(recordstore.Cards, "c1", "Visa"))).To(Succeed())
		Expect(store.Apply(ctx, put(recordstore.Cards, "c1", "Visa Gold"))).To(Succeed())

		cards, err := store.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(names(cards)).To(Equal([]string{"Visa Gold"}))
	})

	It("deletes records and ignores missing ids", func() {
		Expect(store.Apply(ctx, put(recordstore.Cards, "c1", "Visa"))).To(Succeed())
		Expect(store.Apply(ctx,
			recordstore.Remove(recordstore.Cards, "c1"),
			recordstore.Remove(recordstore.Cards, "missing"),
		)).To(Succeed())

		_, err := store.Get(ctx, recordstore.Cards, "c1")
		Expect(err).To(MatchError(recordstore.ErrNotFound))
	})

	It("rejects a batch containing an invalid mutation without writing any of it", func() {
		err := store.Apply(ctx,
			put(recordstore.Cards, "c1", "Visa"),
			recordstore.Mutation{Collection: recordstore.Payments, ID: "p1", Data: json.RawMessage(`{broken`)},
		)
		Expect(err).To(HaveOccurred())

		cards, err := store.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(cards).To(BeEmpty())
	})

	It("rejects unknown collections", func() {
		err := store.Apply(ctx, recordstore.Mutation{Collection: "expenses", ID: "x", Data: json.RawMessage(`{"id":"x"}`)})
		Expect(err).To(HaveOccurred())
	})

	It("pings", func() {
		Expect(store.Ping(ctx)).To(Succeed())
	})
}

var _ = Describe("FileStore", func() {
	var path string

	storeBehaviour(func() recordstore.Store {
		path = filepath.Join(GinkgoT().TempDir(), "data", "cards.json")
		return recordstore.NewFileStore(path, testLogger)
	})

	It("writes the two-collection document", func() {
		store := recordstore.NewFileStore(path, testLogger)
		Expect(store.Apply(context.Background(), put(recordstore.Cards, "c1", "Visa"))).To(Succeed())

		raw, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		var doc map[string][]map[string]any
		Expect(json.Unmarshal(raw, &doc)).To(Succeed())
		Expect(doc).To(HaveKey("cards"))
		Expect(doc).To(HaveKey("payments"))
		Expect(doc["cards"]).To(HaveLen(1))
		Expect(doc["payments"]).To(BeEmpty())
	})

	It("reads a bare array as the cards collection", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`[{"id":"c9","name":"Legacy"}]`), 0o644)).To(Succeed())

		store := recordstore.NewFileStore(path, testLogger)
		cards, err := store.List(context.Background(), recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(names(cards)).To(Equal([]string{"Legacy"}))
	})

	It("fails on a corrupt document", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`{"cards": [`), 0o644)).To(Succeed())

		store := recordstore.NewFileStore(path, testLogger)
		_, err := store.List(context.Background(), recordstore.Cards)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SQLStore", func() {
	storeBehaviour(func() recordstore.Store {
		return newSQLiteStore()
	})
})

var _ = Describe("JSONBinStore", func() {
	var (
		fake   *fakeJSONBin
		server *httptest.Server
	)

	newStore := func() recordstore.Store {
		fake = &fakeJSONBin{}
		server = httptest.NewServer(fake)
		DeferCleanup(server.Close)
		return recordstore.NewJSONBinStore(recordstore.JSONBinConfig{
			BaseURL: server.URL + "/b/",
			APIKey:  "secret",
			BinID:   "bin-1",
		}, testLogger)
	}

	storeBehaviour(newStore)

	It("replaces the whole bin on every write", func() {
		store := newStore()
		Expect(store.Apply(context.Background(),
			put(recordstore.Cards, "c1", "Visa"),
			put(recordstore.Payments, "p1", "first"),
		)).To(Succeed())

		Expect(fake.puts).To(Equal(1))
		Expect(string(fake.content)).To(ContainSubstring(`"cards"`))
		Expect(string(fake.content)).To(ContainSubstring(`"payments"`))
	})

	It("reads a missing bin as empty but reports it unhealthy", func() {
		fake = &fakeJSONBin{}
		server = httptest.NewServer(fake)
		DeferCleanup(server.Close)
		store := recordstore.NewJSONBinStore(recordstore.JSONBinConfig{
			BaseURL: server.URL + "/b/",
			APIKey:  "secret",
			BinID:   "missing",
		}, testLogger)

		records, err := store.List(context.Background(), recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())

		_, err = store.Get(context.Background(), recordstore.Cards, "c1")
		Expect(err).To(MatchError(recordstore.ErrNotFound))

		Expect(store.Ping(context.Background())).To(MatchError(ContainSubstring("bin not found")))
	})

	It("surfaces upstream failures", func() {
		store := newStore()
		fake.fail = true

		_, err := store.List(context.Background(), recordstore.Cards)
		Expect(err).To(MatchError(ContainSubstring("status 500")))
		Expect(store.Ping(context.Background())).NotTo(Succeed())
	})
})

// countingStore records how often the wrapped store is read.
type countingStore struct {
	recordstore.Store
	lists int
	fail  error
}

func (s *countingStore) List(ctx context.Context, c recordstore.Collection) ([]recordstore.Record, error) {
	s.lists++
	if s.fail != nil {
		return nil, s.fail
	}
	return s.Store.List(ctx, c)
}

var _ = Describe("CachedStore", func() {
	var (
		ctx    context.Context
		inner  *countingStore
		cached *recordstore.CachedStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		inner = &countingStore{Store: recordstore.NewFileStore(filepath.Join(GinkgoT().TempDir(), "cards.json"), testLogger)}
		cached = recordstore.NewCachedStore(inner)
	})

	storeBehaviour(func() recordstore.Store {
		return recordstore.NewCachedStore(recordstore.NewFileStore(filepath.Join(GinkgoT().TempDir(), "cards.json"), testLogger))
	})

	It("serves repeated reads from memory", func() {
		Expect(cached.Apply(ctx, put(recordstore.Cards, "c1", "Visa"))).To(Succeed())

		for i := 0; i < 3; i++ {
			_, err := cached.List(ctx, recordstore.Cards)
			Expect(err).NotTo(HaveOccurred())
		}
		_, err := cached.Get(ctx, recordstore.Cards, "c1")
		Expect(err).NotTo(HaveOccurred())

		Expect(inner.lists).To(Equal(1))
	})

	It("drops the touched collection on write", func() {
		_, err := cached.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		_, err = cached.List(ctx, recordstore.Payments)
		Expect(err).NotTo(HaveOccurred())

		Expect(cached.Apply(ctx, put(recordstore.Cards, "c1", "Visa"))).To(Succeed())

		cards, err := cached.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(names(cards)).To(Equal([]string{"Visa"}))
		_, err = cached.List(ctx, recordstore.Payments)
		Expect(err).NotTo(HaveOccurred())

		Expect(inner.lists).To(Equal(3))
	})

	It("does not cache failed reads", func() {
		inner.fail = fmt.Errorf("disk gone")
		_, err := cached.List(ctx, recordstore.Cards)
		Expect(err).To(HaveOccurred())

		inner.fail = nil
		_, err = cached.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(inner.lists).To(Equal(2))
	})

	It("returns copies so callers cannot corrupt the cache", func() {
		Expect(cached.Apply(ctx, put(recordstore.Cards, "c1", "Visa"))).To(Succeed())
		first, err := cached.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		first[0] = recordstore.Record{ID: "tampered"}

		again, err := cached.List(ctx, recordstore.Cards)
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].ID).To(Equal("c1"))
	})
})
