package main

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/mmu"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Write to more pages than physical memory can hold.",
	Long: `stress writes a distinct value to every virtual page, forcing ` +
		`the MMU to evict and restore pages, and then reads every page ` +
		`back to verify that the last written values survived.`,
	Run: runStress,
}

func init() {
	stressCmd.Flags().Uint64("page-size", 16,
		"words per page, must be a power of two")
	stressCmd.Flags().Uint64("num-pages", 256,
		"number of virtual pages, must be a power of two")
	stressCmd.Flags().Uint64("num-frames", 16,
		"number of physical frames")
	stressCmd.Flags().String("trace-db",
		os.Getenv("VMSIM_TRACE_DB"),
		"path of the trace database, without the .sqlite3 suffix")
	stressCmd.Flags().Bool("monitor", false,
		"serve MMU state over HTTP and open it in a browser")
	stressCmd.Flags().Int("monitor-port", 0,
		"port of the monitoring server, random if unset")

	rootCmd.AddCommand(stressCmd)
}

func runStress(cmd *cobra.Command, _ []string) {
	pageSize, _ := cmd.Flags().GetUint64("page-size")
	numPages, _ := cmd.Flags().GetUint64("num-pages")
	numFrames, _ := cmd.Flags().GetUint64("num-frames")
	traceDB, _ := cmd.Flags().GetString("trace-db")
	monitor, _ := cmd.Flags().GetBool("monitor")
	monitorPort, _ := cmd.Flags().GetInt("monitor-port")

	if traceDB == "" {
		traceDB = "vmsim_stress_" + xid.New().String()
	}

	m := mmu.MakeBuilder().
		WithGeometry(vm.MakeGeometry(pageSize, numPages, numFrames)).
		Build("MMU")
	m.Initialize()

	recorder := datarecording.NewDataRecorder(traceDB)
	m.AcceptHook(tracing.NewMMUTracer(recorder))

	if monitor {
		server := monitoring.NewMonitor().WithPortNumber(monitorPort)
		server.RegisterMMU(m)
		port := server.StartServer()

		err := browser.OpenURL(
			fmt.Sprintf("http://localhost:%d/api/status", port))
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}

	mismatches := 0
	for page := uint64(0); page < numPages; page++ {
		if !m.Write(page*pageSize, uint32(page)) {
			panic("write out of range, geometry is inconsistent")
		}
	}

	for page := uint64(0); page < numPages; page++ {
		word, ok := m.Read(page * pageSize)
		if !ok || word != uint32(page) {
			mismatches++
		}
	}

	recorder.Flush()

	stats := m.Stats()
	fmt.Printf("pages written: %d\n", numPages)
	fmt.Printf("page faults:   %d\n", stats.PageFaults)
	fmt.Printf("evictions:     %d\n", stats.Evictions)
	fmt.Printf("restores:      %d\n", stats.Restores)
	fmt.Printf("mismatches:    %d\n", mismatches)
	fmt.Printf("trace:         %s.sqlite3\n", traceDB)

	if mismatches > 0 {
		os.Exit(1)
	}
}
