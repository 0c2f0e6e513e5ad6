// Package monitoring turns a running MMU into an HTTP server so its state
// can be inspected from outside the process.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/vmsim/vm/mmu"
)

// Monitor exposes registered MMUs over HTTP.
type Monitor struct {
	mmus       []*mmu.Comp
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterMMU registers an MMU to be monitored.
func (m *Monitor) RegisterMMU(c *mmu.Comp) {
	m.mmus = append(m.mmus, c)
}

// StartServer starts the monitor as a web server. It returns the port the
// server listens on.
func (m *Monitor) StartServer() int {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/list_mmus", m.listMMUs)
	r.HandleFunc("/api/mmu/{name}", m.mmuDetails)
	r.HandleFunc("/api/resource", m.listResources)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(os.Stderr,
		"Monitoring MMU with http://localhost:%d\n", port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()

	return port
}

type mmuStatus struct {
	Name       string `json:"name"`
	NumPages   uint64 `json:"num_pages"`
	NumFrames  uint64 `json:"num_frames"`
	PageFaults uint64 `json:"page_faults"`
	Evictions  uint64 `json:"evictions"`
	Restores   uint64 `json:"restores"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	statuses := make([]mmuStatus, 0, len(m.mmus))

	for _, c := range m.mmus {
		stats := c.Stats()
		statuses = append(statuses, mmuStatus{
			Name:       c.Name(),
			NumPages:   c.Geometry().NumPages(),
			NumFrames:  c.Geometry().NumFrames(),
			PageFaults: stats.PageFaults,
			Evictions:  stats.Evictions,
			Restores:   stats.Restores,
		})
	}

	bytes, err := json.Marshal(statuses)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listMMUs(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, c := range m.mmus {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", c.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) mmuDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	c := m.findMMUOr404(w, name)
	if c == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(c)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findMMUOr404(w http.ResponseWriter, name string) *mmu.Comp {
	for _, c := range m.mmus {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
