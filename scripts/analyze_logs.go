package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	Lines              int
	Unparsed           int
	TotalErrors        int
	TotalWarnings      int
	OrdersCreated      int
	OrderFailures      int
	RenewalsCommitted  int
	SignatureMismatch  int
	DuplicatePayments  int
	DocumentFailures   int
	EmailFailures      int
	LoginSuccess       int
	LoginFailures      int
	TamperedProjects   map[string]int
	ErrorPatterns      map[string]int
	RenewalsByOperator map[string]int
}

type logEntry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Module    string `json:"module"`
	ProjectID string `json:"project_id"`
}

var (
	uuidPattern   = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	idPattern     = regexp.MustCompile(`\b(pay|order)_[A-Za-z0-9]+`)
	renewedBy     = regexp.MustCompile(`renewed by (\S+):`)
	numberPattern = regexp.MustCompile(`\d+`)
)

func main() {
	logDir := flag.String("dir", "./logs", "directory holding app.log")
	top := flag.Int("top", 5, "entries to show in top lists")
	flag.Parse()

	stats := &LogStats{
		TamperedProjects:   make(map[string]int),
		ErrorPatterns:      make(map[string]int),
		RenewalsByOperator: make(map[string]int),
	}

	logFile := filepath.Join(*logDir, "app.log")
	if err := analyzeLog(logFile, stats); err != nil {
		fmt.Printf("Error reading log file %s: %v\n", logFile, err)
		os.Exit(1)
	}

	printReport(stats, *top)
}

func analyzeLog(logFile string, stats *LogStats) error {
	file, err := os.Open(logFile)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.Lines++

		var entry logEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			stats.Unparsed++
			continue
		}
		classify(entry, stats)
	}
	return scanner.Err()
}

func classify(entry logEntry, stats *LogStats) {
	msg := entry.Message

	switch entry.Level {
	case "ERROR":
		stats.TotalErrors++
		stats.ErrorPatterns[normalize(msg)]++
	case "WARN":
		stats.TotalWarnings++
	}

	switch {
	case strings.HasPrefix(msg, "Payment order ") && strings.Contains(msg, " created for project "):
		stats.OrdersCreated++
	case strings.HasPrefix(msg, "Payment order creation failed"):
		stats.OrderFailures++
	case strings.Contains(msg, " renewed by "):
		stats.RenewalsCommitted++
		if m := renewedBy.FindStringSubmatch(msg); m != nil {
			stats.RenewalsByOperator[m[1]]++
		}
	case entry.Module == "security" && strings.Contains(msg, "signature mismatch"):
		stats.SignatureMismatch++
		if entry.ProjectID != "" {
			stats.TamperedProjects[entry.ProjectID]++
		}
	case strings.Contains(msg, "Renewal confirmation failed") && strings.Contains(msg, "Payment already processed"):
		stats.DuplicatePayments++
	case strings.HasPrefix(msg, "Document regeneration failed"):
		stats.DocumentFailures++
	case strings.HasPrefix(msg, "Renewal email failed"):
		stats.EmailFailures++
	case strings.HasSuffix(msg, " logged in"):
		stats.LoginSuccess++
	case strings.HasPrefix(msg, "Login attempt for unknown email"), strings.HasPrefix(msg, "Invalid password for user"):
		stats.LoginFailures++
	}
}

// normalize strips ids and numbers so that repeats of one error group together
func normalize(msg string) string {
	msg = uuidPattern.ReplaceAllString(msg, "<id>")
	msg = idPattern.ReplaceAllString(msg, "${1}_<id>")
	msg = numberPattern.ReplaceAllString(msg, "<n>")
	if len(msg) > 120 {
		msg = msg[:120] + "..."
	}
	return msg
}

func printReport(stats *LogStats, top int) {
	fmt.Println("\n=== Renewal Log Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Lines read: %d (unparsed: %d)\n", stats.Lines, stats.Unparsed)

	fmt.Println("\n1. Renewals:")
	fmt.Printf("   Payment Orders Created: %d\n", stats.OrdersCreated)
	fmt.Printf("   Payment Order Failures: %d\n", stats.OrderFailures)
	fmt.Printf("   Renewals Committed: %d\n", stats.RenewalsCommitted)
	fmt.Printf("   Duplicate Payments Rejected: %d\n", stats.DuplicatePayments)

	fmt.Println("\n2. Security:")
	fmt.Printf("   Signature Mismatches: %d\n", stats.SignatureMismatch)
	printTop("   Projects with mismatches", stats.TamperedProjects, top)

	fmt.Println("\n3. Post-commit Warnings:")
	fmt.Printf("   Document Failures: %d\n", stats.DocumentFailures)
	fmt.Printf("   Email Failures: %d\n", stats.EmailFailures)

	fmt.Println("\n4. Authentication:")
	fmt.Printf("   Successful Logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed Logins: %d\n", stats.LoginFailures)

	fmt.Println("\n5. Errors:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)
	fmt.Printf("   Total Warnings: %d\n", stats.TotalWarnings)
	printTop("   Most common errors", stats.ErrorPatterns, top)

	fmt.Println("\n6. Most Active Operators:")
	printTop("   Renewals by operator", stats.RenewalsByOperator, top)
}

func printTop(title string, counts map[string]int, n int) {
	type kv struct {
		Key   string
		Count int
	}
	var sorted []kv
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count == sorted[j].Count {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Count > sorted[j].Count
	})

	fmt.Println(title + ":")
	if len(sorted) == 0 {
		fmt.Println("      (none)")
		return
	}
	for i := 0; i < n && i < len(sorted); i++ {
		fmt.Printf("      %d. %s: %d\n", i+1, sorted[i].Key, sorted[i].Count)
	}
}
