package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cilforge/cilmeta"
	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
	"github.com/cilforge/cilmeta/loader"
	"github.com/cilforge/cilmeta/validate"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to a metadata image file")
		tables      = flag.Bool("tables", false, "List per-table row counts")
		heaps       = flag.Bool("heaps", false, "Show heap sizes")
		level       = flag.String("validate", "", "Validation level (disabled|minimal|production|comprehensive|strict)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: cilmeta -file <image> [-tables] [-heaps] [-validate level]")
		fmt.Fprintln(os.Stderr, "       cilmeta -file <image> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*file, *tables, *heaps, *level); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configFor(level string) (validate.Config, error) {
	switch strings.ToLower(level) {
	case "disabled":
		return validate.Disabled(), nil
	case "minimal":
		return validate.Minimal(), nil
	case "production":
		return validate.Production(), nil
	case "comprehensive":
		return validate.Comprehensive(), nil
	case "strict":
		return validate.Strict(), nil
	default:
		return validate.Config{}, fmt.Errorf("unknown validation level %q", level)
	}
}

func run(path string, showTables, showHeaps bool, level string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	img, err := cil.Open(cilmeta.NewMemoryBackend(data))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	var totalRows uint64
	populated := 0
	for _, id := range cil.AllTableIDs() {
		if n := img.Tables.RowCount(id); n > 0 {
			totalRows += uint64(n)
			populated++
		}
	}

	fmt.Printf("Image: %s\n", path)
	fmt.Printf("Runtime version: %s\n", img.Root.Version)
	fmt.Printf("Streams: %d\n", len(img.Root.Streams))
	fmt.Printf("Tables: %d populated, %d rows total\n", populated, totalRows)

	if showTables {
		fmt.Printf("\nTable row counts:\n")
		for _, id := range cil.AllTableIDs() {
			if n := img.Tables.RowCount(id); n > 0 {
				fmt.Printf("  0x%02X %-24s %d\n", uint8(id), id, n)
			}
		}
	}

	if showHeaps {
		fmt.Printf("\nHeap sizes:\n")
		fmt.Printf("  #Strings %d bytes\n", img.Strings.Size())
		fmt.Printf("  #Blob    %d bytes\n", img.Blob.Size())
		fmt.Printf("  #GUID    %d bytes (%d records)\n", img.Guid.Size(), img.Guid.Count())
		fmt.Printf("  #US      %d bytes\n", img.UserStrings.Size())
	}

	if level == "" {
		return nil
	}

	cfg, err := configFor(level)
	if err != nil {
		return err
	}
	engine := validate.NewEngine(cfg)

	asm, loadErr := loader.Load(img)
	if loadErr != nil {
		fmt.Printf("\nResolution failed, running raw validation only: %v\n", loadErr)
	}

	verr := engine.Run(img, asm)
	if verr == nil {
		fmt.Printf("\nValidation (%s): clean\n", level)
		return loadErr
	}
	var ve *errors.ValidationError
	if !errors.As(verr, &ve) {
		return verr
	}
	fmt.Printf("\nValidation (%s): %d violation(s)\n", level, len(ve.Violations))
	for _, v := range ve.Violations {
		marker := " "
		if v.Fatal {
			marker = "!"
		}
		fmt.Printf("  %s %s\n", marker, v)
	}
	if ve.HasFatal() {
		return fmt.Errorf("fatal validation violations")
	}
	return loadErr
}
