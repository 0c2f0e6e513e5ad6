package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/vm"
)

var translateCmd = &cobra.Command{
	Use:   "translate [virtual address]",
	Short: "Show how a virtual address decomposes under a geometry.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranslate,
}

func init() {
	translateCmd.Flags().Uint64("page-size", 16,
		"words per page, must be a power of two")
	translateCmd.Flags().Uint64("num-pages", 256,
		"number of virtual pages, must be a power of two")

	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	pageSize, _ := cmd.Flags().GetUint64("page-size")
	numPages, _ := cmd.Flags().GetUint64("num-pages")

	vaddr, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid virtual address %q: %w", args[0], err)
	}

	g := vm.MakeGeometry(pageSize, numPages, 2)

	if vaddr >= g.VirtualMemSize() {
		return fmt.Errorf("address %#x is outside the %d-word address space",
			vaddr, g.VirtualMemSize())
	}

	fmt.Printf("virtual address: %#x\n", vaddr)
	fmt.Printf("page number:     %d\n", g.PageNumber(vaddr))
	fmt.Printf("offset:          %d\n", g.Offset(vaddr))
	for level := 0; level < g.TablesDepth(); level++ {
		fmt.Printf("level %d index:   %d\n", level, g.IndexAtLevel(vaddr, level))
	}

	return nil
}
