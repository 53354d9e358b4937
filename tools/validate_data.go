//go:build ignore

// Validate_data runs every file in a directory through the same parsers the
// client uses, delivering each file in small chunks, and reports what was
// accepted and rejected.
//
//	go run tools/validate_data.go [-chunk 3] [-window 128] <directory-or-file>
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bearanvil/trafficled/internal/ota"
	"github.com/bearanvil/trafficled/internal/speeds"
	"github.com/bearanvil/trafficled/internal/stream"
)

// Statistics tracks parsing results
type Statistics struct {
	TotalFiles    int
	VersionDocs   int
	SpeedFiles    int
	Skipped       int
	Records       int
	RemoveRecords int
	ParseFailure  int
	Versions      map[string]int
	FailedFiles   []FailedFile
}

// FailedFile stores information about parsing failures
type FailedFile struct {
	File  string
	Kind  string
	Error string
}

var (
	chunkSize  = flag.Int("chunk", 3, "bytes delivered per read")
	windowSize = flag.Int("window", ota.DefaultWindowSize, "receive window size")
	maxRecords = flag.Int("max-records", 4096, "stop a speed file after this many records")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: validate_data [-chunk n] [-window n] <directory-or-file>")
		fmt.Println("Example: validate_data ./data")
		fmt.Println("         validate_data ./data/firmware/version.json")
		os.Exit(1)
	}
	if *chunkSize <= 0 {
		fmt.Println("-chunk must be positive")
		os.Exit(1)
	}

	path := flag.Arg(0)
	stats := Statistics{Versions: make(map[string]int)}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			fmt.Printf("Error walking %s: %v\n", path, err)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}
	sort.Strings(files)

	fmt.Printf("=== Trafficled Data Validator ===\n")
	fmt.Printf("Files to process: %d (chunk %d bytes, window %d)\n\n", len(files), *chunkSize, *windowSize)

	ctx := context.Background()
	for _, file := range files {
		processFile(ctx, file, &stats)
	}

	printStatistics(&stats)
	if stats.ParseFailure > 0 {
		os.Exit(1)
	}
}

// chunked hands out at most n bytes of data per read.
func chunked(data []byte, n int) stream.Source {
	r := bytes.NewReader(data)
	return stream.SourceFunc(func(p []byte) (int, error) {
		if len(p) > n {
			p = p[:n]
		}
		return r.Read(p)
	})
}

func processFile(ctx context.Context, filename string, stats *Statistics) {
	stats.TotalFiles++

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file %s: %v\n", filename, err)
		return
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		stats.VersionDocs++
		v, err := ota.NewParser(ota.DefaultKeys(), *windowSize).Parse(ctx, chunked(data, *chunkSize))
		if err != nil {
			stats.fail(filename, "version document", err)
			return
		}
		stats.Versions[v.String()]++

	case ".csv", ".txt", "":
		stats.SpeedFiles++
		recs, err := speeds.ReadAll(ctx, chunked(data, *chunkSize), *windowSize, *maxRecords)
		stats.Records += len(recs)
		for _, r := range recs {
			if r.Remove() {
				stats.RemoveRecords++
			}
		}
		if err != nil {
			stats.fail(filename, "speed file", err)
		}

	default:
		stats.Skipped++
	}
}

func (s *Statistics) fail(file, kind string, err error) {
	s.ParseFailure++
	s.FailedFiles = append(s.FailedFiles, FailedFile{File: file, Kind: kind, Error: err.Error()})
}

func printStatistics(stats *Statistics) {
	fmt.Printf("========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Version Documents:  %d\n", stats.VersionDocs)
	fmt.Printf("Speed Files:        %d\n", stats.SpeedFiles)
	fmt.Printf("Skipped:            %d\n", stats.Skipped)
	fmt.Printf("Speed Records:      %d (%d removals)\n", stats.Records, stats.RemoveRecords)
	fmt.Printf("Parse Failure:      %d\n", stats.ParseFailure)

	if len(stats.Versions) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("PUBLISHED VERSIONS\n")
		fmt.Printf("----------------------------------------\n")
		versions := make([]string, 0, len(stats.Versions))
		for v := range stats.Versions {
			versions = append(versions, v)
		}
		sort.Strings(versions)
		for _, v := range versions {
			fmt.Printf("%s: %d file(s)\n", v, stats.Versions[v])
		}
	}

	if len(stats.FailedFiles) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("PARSE FAILURES (%d total)\n", len(stats.FailedFiles))
		fmt.Printf("----------------------------------------\n")

		maxShow := 10
		if len(stats.FailedFiles) > maxShow {
			fmt.Printf("(Showing first %d of %d failures)\n", maxShow, len(stats.FailedFiles))
		}
		for i, failed := range stats.FailedFiles {
			if i >= maxShow {
				break
			}
			fmt.Printf("\nFailure #%d:\n", i+1)
			fmt.Printf("  File: %s (%s)\n", failed.File, failed.Kind)
			fmt.Printf("  Error: %s\n", failed.Error)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.ParseFailure == 0 {
		fmt.Printf("SUCCESS: all files parsed\n")
	} else {
		fmt.Printf("ISSUES FOUND: %d files failed to parse\n", stats.ParseFailure)
	}
	fmt.Printf("========================================\n")
}
