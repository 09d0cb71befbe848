package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bblcache/blockcache"
)

var _ = Describe("Monitor", func() {
	var (
		m     *Monitor
		cache *blockcache.Guarded
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.Handler().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		cache = blockcache.NewGuarded(
			blockcache.MustNew(2, blockcache.WithName("BBL")))
		m.RegisterCache(cache)
	})

	It("should ignore privileged ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should listen on every allowed port", func() {
		Expect(m.listenAddress()).To(Equal(":0"))

		m.WithPortNumber(999)
		Expect(m.listenAddress()).To(Equal(":0"))

		m.WithPortNumber(1000)
		Expect(m.listenAddress()).To(Equal(":1000"))

		m.WithPortNumber(8080)
		Expect(m.listenAddress()).To(Equal(":8080"))
	})

	It("should serve the statistics of every cache", func() {
		cache.Record(0x1)
		cache.Record(0x1)

		rec := get("/api/stats")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var stats []blockcache.Stats
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats).To(Equal([]blockcache.Stats{{
			Name:          "BBL",
			Capacity:      2,
			Size:          1,
			TotalAccesses: 2,
			Hits:          1,
			Misses:        1,
		}}))
	})

	It("should serve a single cache", func() {
		rec := get("/api/cache/BBL")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for an unknown cache", func() {
		rec := get("/api/cache/L2")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should list progress bars until they complete", func() {
		bar := m.CreateProgressBar("Replay", 100)
		bar.IncrementFinished(40)
		bar.IncrementFinished(5)

		rec := get("/api/progress")
		var bars []ProgressState
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Replay"))
		Expect(bars[0].Finished).To(Equal(uint64(45)))
		Expect(bars[0].Total).To(Equal(uint64(100)))
		Expect(bars[0].ID).NotTo(BeEmpty())

		m.CompleteProgressBar(bar)

		rec = get("/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should report process resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should start and stop the server", func() {
		url, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(url + "/api/stats")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(m.Shutdown(context.Background())).To(Succeed())
	})
})
