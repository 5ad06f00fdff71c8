// Package main provides a performance benchmarking tool for the codetrend CLI.
// It measures how long building and querying the index takes on real repositories,
// running each build from an empty index first (cold) and then again with nothing
// left to index (warm), and writes CSV output for performance analysis.
//
// Prerequisites:
// - codetrend binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, flask, requests
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run for one repository and backend.
type BenchmarkResult struct {
	Repository string
	Backend    string
	Command    string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase     string
	Timeout      time.Duration
	MaxRevisions int
	QueryRuns    int
	Backends     []string
	TestRepos    []string
	RepoPaths    map[string]string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	repoBase := os.Args[1]

	config := BenchmarkConfig{
		RepoBase:     repoBase,
		Timeout:      10 * time.Minute,
		MaxRevisions: 50,
		QueryRuns:    3,
		Backends:     []string{"file", "sqlite"},
		TestRepos:    []string{"csv-parser", "fd", "flask", "requests"},
		RepoPaths: map[string]string{
			"csv-parser": "csvpy",
			"fd":         "scripts",
			"flask":      "src/flask/app.py",
			"requests":   "src/requests/sessions.py",
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that codetrend binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("codetrend"); err != nil {
		return fmt.Errorf("codetrend binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured repositories and backends
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %d backends, %v timeout, %d revisions, %d query runs\n",
		len(config.TestRepos), len(config.Backends), config.Timeout, config.MaxRevisions, config.QueryRuns)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, backend := range config.Backends {
			fmt.Printf("Benchmarking %s (%s)\n", repo, backend)

			cachePath, err := os.MkdirTemp("", "codetrend-bench-*")
			if err != nil {
				fmt.Printf("Warning: failed to create cache dir: %v\n", err)
				continue
			}
			base := []string{"--store-backend", backend, "--cache-path", cachePath}

			build := append([]string{"build", "--max-revisions", fmt.Sprint(config.MaxRevisions)}, base...)
			results = append(results, runBenchmarkSuite(config, repo, repoPath, backend, "build", build, 2))

			rank := append([]string{"rank", "--limit", "20"}, base...)
			results = append(results, runBenchmarkSuite(config, repo, repoPath, backend, "rank", rank, config.QueryRuns))

			if path, ok := config.RepoPaths[repo]; ok {
				report := append([]string{"report", path}, base...)
				results = append(results, runBenchmarkSuite(config, repo, repoPath, backend, "report", report, config.QueryRuns))
			}

			if err := os.RemoveAll(cachePath); err != nil {
				fmt.Printf("Warning: failed to remove %s: %v\n", cachePath, err)
			}
		}
	}

	return results
}

// runBenchmarkSuite runs a command numRuns times, treating the first run as cold
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, backend, command string, args []string, numRuns int) BenchmarkResult {
	fmt.Printf("  %s (%d runs)\n", command, numRuns)

	cold, warm := runBenchmark(config, repoPath, args, numRuns)

	coldTimeStr := "TIMEOUT"
	if cold > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", cold)
	}
	warmTimeStr := "N/A"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmTimeStr = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmTimeStr)

	return BenchmarkResult{
		Repository: repo,
		Backend:    backend,
		Command:    command,
		ColdTime:   coldTimeStr,
		WarmTime:   warmTimeStr,
	}
}

// runBenchmark executes a codetrend command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, repoPath string, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("codetrend", args...)
		cmd.Dir = repoPath

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil {
				times = append(times, time.Since(start).Seconds())
			} else {
				fmt.Printf("  Run %d failed: %v\n%s", run, cmdErr, strings.TrimSpace(string(output)))
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("codetrend_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "backend", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Backend, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "build", "Build:")
	printCommandSummary(results, "rank", "Rank:")
	printCommandSummary(results, "report", "Report:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s %-8s cold=%-10s warm=%s\n", result.Repository, result.Backend, result.ColdTime, result.WarmTime)
		}
	}
}
