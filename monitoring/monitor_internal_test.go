package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/sim"
)

type sampleComponent struct {
	*sim.ComponentBase

	in    sim.Buffer
	out   sim.Buffer
	count int
}

func (c *sampleComponent) Tick(_ sim.Tick) bool {
	c.count++
	return true
}

func newSampleComponent(name string) *sampleComponent {
	return &sampleComponent{
		ComponentBase: sim.NewComponentBase(name),
		in:            sim.NewBuffer(name+".In", 4),
		out:           sim.NewBuffer(name+".Out", 2),
	}
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *sim.SerialEngine
		comp   *sampleComponent
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		engine = sim.NewSerialEngine()
		comp = newSampleComponent("Comp")

		m.RegisterEngine(engine)
		m.RegisterComponent(comp)
	})

	It("should register components and internal buffers", func() {
		Expect(m.components).To(HaveLen(1))
		Expect(m.buffers).To(HaveLen(2))
	})

	It("should replace reserved port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(32776)
		Expect(m.portNumber).To(Equal(32776))
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"Comp"}))
	})

	It("should report the current tick", func() {
		rec := get("/api/now")

		var rsp struct {
			Now     uint32  `json:"now"`
			Seconds float64 `json:"seconds"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(BeZero())
	})

	It("should return 404 for unknown components", func() {
		rec := get("/api/component/Nope")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should serialize components", func() {
		rec := get("/api/component/Comp")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should sort buffers by fill percentage", func() {
		comp.in.Push(1)
		comp.out.Push(1)

		rec := get("/api/hangdetector/buffers?limit=1")

		var rsp []struct {
			Buffer string `json:"buffer"`
			Level  int    `json:"level"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Buffer).To(Equal("Comp.Out"))
	})

	It("should sort buffers by level", func() {
		comp.in.Push(1)
		comp.in.Push(2)
		comp.out.Push(1)

		rec := get("/api/hangdetector/buffers?sort=level")

		var rsp []struct {
			Buffer string `json:"buffer"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0].Buffer).To(Equal("Comp.In"))
	})

	It("should reject an unknown sort method", func() {
		rec := get("/api/hangdetector/buffers?sort=name")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Run", 100)
		bar.SetFinished(40)
		bar.IncrementInProgress(2)

		rec := get("/api/progress")
		var bars []map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["finished"]).To(Equal(40.0))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
	})
})
