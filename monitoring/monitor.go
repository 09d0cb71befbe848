// Package monitoring serves the live state of a run over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/bblcache/blockcache"
)

// Monitor exposes the statistics of the registered caches and the progress of
// the replay.
type Monitor struct {
	portNumber int
	caches     []blockcache.StatsSource
	server     *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random free port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCache registers a cache to be monitored. The source must be safe to
// read while the run is recording, such as a blockcache.Guarded.
func (m *Monitor) RegisterCache(c blockcache.StatsSource) {
	m.caches = append(m.caches, c)
}

// CreateProgressBar creates a new progress bar. A total of 0 means the total
// is unknown.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list being served.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router serving the monitoring API.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", m.listStats).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/{name}", m.cacheDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the URL of the
// monitor.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.listenAddress())
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring run with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Monitor stopped: %v\n", err)
		}
	}()

	return url, nil
}

// listenAddress returns the address to listen on. Ports that were not set or
// were rejected by WithPortNumber let the system pick a free port.
func (m *Monitor) listenAddress() string {
	if m.portNumber >= 1000 {
		return ":" + strconv.Itoa(m.portNumber)
	}

	return ":0"
}

// OpenInBrowser opens the monitor URL in the default browser.
func (m *Monitor) OpenInBrowser(url string) error {
	return browser.OpenURL(url + "/api/stats")
}

// Shutdown stops the server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) snapshot() []blockcache.Stats {
	stats := make([]blockcache.Stats, 0, len(m.caches))
	for _, c := range m.caches {
		stats = append(stats, c.Stats())
	}

	return stats
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.snapshot())
}

func (m *Monitor) cacheDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	for _, s := range m.snapshot() {
		if s.Name != name {
			continue
		}

		serializer := goseth.NewSerializer()
		serializer.SetRoot(&s)
		serializer.SetMaxDepth(1)

		err := serializer.Serialize(w)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	http.Error(w, "Cache not found", http.StatusNotFound)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressState, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, _ = w.Write(bytes)
}
