package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wombatlabs/picomgr/manager"
	"github.com/wombatlabs/picomgr/picofile"
	"github.com/wombatlabs/picomgr/provider"
)

func main() {
	var (
		manifestPath = flag.String("manifest", "", "Path to YAML module manifest")
		loadSpec     = flag.String("load", "", "Load entries: a bounding id, or 'all'")
		list         = flag.Bool("list", false, "List registered entries and exit")
		exportSpec   = flag.String("export", "", "Resolve an export after loading (name:tag)")
		verbose      = flag.Bool("v", false, "Verbose logging")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: picorun -manifest <modules.yaml> [-load all|<id>] [-export name:tag]")
		fmt.Fprintln(os.Stderr, "       picorun -manifest <modules.yaml> -list")
		fmt.Fprintln(os.Stderr, "       picorun -manifest <modules.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		zl, err := zap.NewDevelopment()
		if err == nil {
			manager.SetLogger(zl)
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*manifestPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*manifestPath, *loadSpec, *exportSpec, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildManager registers every manifest module with a fresh manager over the
// heap provider. Vault buffers stay alive for the manager's lifetime.
func buildManager(man *manifest) (*manager.Manager, *provider.Heap, error) {
	heap := provider.NewHeap()
	mgr := manager.New(
		picofile.NewLoader(),
		heap,
		make([]manager.Entry, man.Capacity),
		manager.WithPadding(man.Padding),
	)

	for _, spec := range man.Modules {
		vault, err := os.ReadFile(spec.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", spec.Path, err)
		}
		if err := mgr.Add(spec.Name, vault); err != nil {
			return nil, nil, fmt.Errorf("register %s: %w", spec.Name, err)
		}
	}

	return mgr, heap, nil
}

func run(manifestPath, loadSpec, exportSpec string, listOnly bool) error {
	man, err := readManifest(manifestPath)
	if err != nil {
		return err
	}

	mgr, _, err := buildManager(man)
	if err != nil {
		return err
	}
	defer mgr.Close()

	fmt.Printf("Manifest: %s\n", manifestPath)
	fmt.Printf("Modules: %d (capacity %d)\n", mgr.Count(), mgr.Capacity())
	fmt.Printf("Packed code size: %d bytes (padding %d)\n", mgr.TotalCodeSize(), mgr.Padding())

	if listOnly {
		printEntries(mgr)
		return nil
	}

	if loadSpec != "" {
		upTo := manager.LoadAll
		if loadSpec != "all" {
			upTo, err = strconv.Atoi(loadSpec)
			if err != nil {
				return fmt.Errorf("bad -load value %q", loadSpec)
			}
		}

		if err := mgr.AllocRegion(man.FinalPadding); err != nil {
			return err
		}
		if err := mgr.Load(upTo, man.FinalPadding, man.importTable()); err != nil {
			return err
		}
		fmt.Printf("Region: %d bytes, used %d\n", mgr.RegionSize(), mgr.UsedSize())
	}

	printEntries(mgr)

	if exportSpec != "" {
		name, tagStr, ok := strings.Cut(exportSpec, ":")
		if !ok {
			return fmt.Errorf("bad -export value %q, want name:tag", exportSpec)
		}
		tag, err := strconv.Atoi(tagStr)
		if err != nil {
			return fmt.Errorf("bad export tag %q", tagStr)
		}

		exp, ok := mgr.ExportByName(name, tag)
		if !ok {
			return fmt.Errorf("export %s:%d not found (entry missing or unloaded)", name, tag)
		}
		off, _ := regionOffset(mgr, exp)
		fmt.Printf("Export %s:%d at region offset %d\n", name, tag, off)
	}

	return nil
}

func printEntries(mgr *manager.Manager) {
	fmt.Println("\nEntries:")
	for id := 0; id < mgr.Count(); id++ {
		e, _ := mgr.ByID(id)
		state := "unloaded"
		if e.Loaded() {
			off, _ := regionOffset(mgr, e.Code)
			state = fmt.Sprintf("loaded at offset %d", off)
		}
		fmt.Printf("  %2d  %-31s code=%-6d data=%-6d %s\n", e.ID, e.Name, e.CodeSize, e.DataSize, state)
	}
}

// regionOffset recovers a window's offset inside the manager's region.
// Windows carry no back reference, so locate the base by identity. Linear in
// the region size, which is fine for an inspection tool.
func regionOffset(mgr *manager.Manager, window []byte) (int, bool) {
	region := mgr.Region()
	if len(window) == 0 || len(region) == 0 {
		return 0, false
	}
	for off := range region {
		if &region[off] == &window[0] {
			return off, true
		}
	}
	return 0, false
}
