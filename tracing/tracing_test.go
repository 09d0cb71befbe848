package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/bblcache/blockcache"
)

var _ = Describe("CollectTrace", func() {
	It("should forward every access to the tracer", func() {
		c := blockcache.MustNew(1, blockcache.WithName("BBL"))
		counter := NewBlockCounter()
		CollectTrace(c, counter)

		c.Record(0x1)
		c.Record(0x1)
		c.Record(0x2)

		Expect(counter.Count(0x1)).To(Equal(BlockCount{
			Block: 0x1, Hits: 1, Misses: 1,
		}))
		Expect(counter.Count(0x2).Misses).To(Equal(uint64(1)))
	})

	It("should refuse to attach the same tracer twice", func() {
		c := blockcache.MustNew(1)
		counter := NewBlockCounter()
		CollectTrace(c, counter)

		Expect(func() { CollectTrace(c, counter) }).To(Panic())
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should create both tables", func() {
		recorder.EXPECT().CreateTable(AccessTableName, AccessEntry{})
		recorder.EXPECT().CreateTable(SummaryTableName, SummaryEntry{})

		NewDBTracer(recorder, "run", true)
	})

	It("should record accesses with evictions", func() {
		recorder.EXPECT().CreateTable(gomock.Any(), gomock.Any()).Times(2)
		tracer := NewDBTracer(recorder, "run", true)

		c := blockcache.MustNew(1, blockcache.WithName("BBL"))
		CollectTrace(c, tracer)

		gomock.InOrder(
			recorder.EXPECT().InsertData(AccessTableName, AccessEntry{
				Seq: 1, Cache: "BBL", Block: 0xa, Outcome: "miss",
			}),
			recorder.EXPECT().InsertData(AccessTableName, AccessEntry{
				Seq: 2, Cache: "BBL", Block: 0xb, Outcome: "miss",
				Evicted: 0xa, HasEvicted: true,
			}),
			recorder.EXPECT().InsertData(AccessTableName, AccessEntry{
				Seq: 3, Cache: "BBL", Block: 0xb, Outcome: "hit",
			}),
		)

		c.Record(0xa)
		c.Record(0xb)
		c.Record(0xb)
	})

	It("should keep every bit of kernel addresses", func() {
		recorder.EXPECT().CreateTable(gomock.Any(), gomock.Any()).Times(2)
		tracer := NewDBTracer(recorder, "run", true)

		var entry AccessEntry
		recorder.EXPECT().InsertData(AccessTableName, gomock.Any()).
			Do(func(_ string, e any) { entry = e.(AccessEntry) })

		tracer.TraceAccess("BBL", blockcache.Access{
			Seq: 1, Block: 0xffffffff81000000,
		})

		Expect(entry.Block).To(BeNumerically("<", 0))
		Expect(entry.BlockID()).To(Equal(blockcache.BlockID(0xffffffff81000000)))
	})

	It("should skip accesses when only summaries are wanted", func() {
		recorder.EXPECT().CreateTable(SummaryTableName, SummaryEntry{})
		tracer := NewDBTracer(recorder, "run", false)

		tracer.TraceAccess("BBL", blockcache.Access{Seq: 1, Block: 0x1})
	})

	It("should write the summary and flush on finish", func() {
		recorder.EXPECT().CreateTable(SummaryTableName, SummaryEntry{})
		tracer := NewDBTracer(recorder, "run-1", false)

		gomock.InOrder(
			recorder.EXPECT().InsertData(SummaryTableName, SummaryEntry{
				RunID:         "run-1",
				Cache:         "BBL",
				Capacity:      2,
				Size:          2,
				TotalAccesses: 4,
				Hits:          1,
				Misses:        3,
				Evictions:     1,
			}),
			recorder.EXPECT().Flush(),
		)

		tracer.Finish(blockcache.Stats{
			Name:          "BBL",
			Capacity:      2,
			Size:          2,
			TotalAccesses: 4,
			Hits:          1,
			Misses:        3,
			Evictions:     1,
		})
	})
})

var _ = Describe("BlockCounter", func() {
	It("should rank blocks by executions", func() {
		counter := NewBlockCounter()
		trace := func(id blockcache.BlockID, o blockcache.Outcome) {
			counter.TraceAccess("BBL", blockcache.Access{Block: id, Outcome: o})
		}

		trace(0x30, blockcache.Miss)
		trace(0x10, blockcache.Miss)
		trace(0x10, blockcache.Hit)
		trace(0x20, blockcache.Miss)
		trace(0x20, blockcache.Hit)
		trace(0x10, blockcache.Hit)

		Expect(counter.NumBlocks()).To(Equal(3))
		Expect(counter.Top(2)).To(Equal([]BlockCount{
			{Block: 0x10, Hits: 2, Misses: 1},
			{Block: 0x20, Hits: 1, Misses: 1},
		}))
		Expect(counter.Top(0)).To(HaveLen(3))
		Expect(counter.Count(0x99).Accesses()).To(BeZero())
	})
})
