package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL   = flag.String("api-url", "http://localhost:8080", "jobscout API base URL")
	apiKey   = flag.String("api-key", "", "API key for authenticated requests")
	urlsFile = flag.String("urls", "", "file with one job posting URL per line (default: built-in set)")
	runs     = flag.Int("runs", 1, "number of runs per URL")
	format   = flag.String("format", "text", "description_format to request")
	output   = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// defaultURLs covers the major ATS families the site rules target.
var defaultURLs = []string{
	"https://boards.greenhouse.io/embed/job_board?for=gitlab",
	"https://jobs.lever.co/palantir",
	"https://jobs.ashbyhq.com/ramp",
	"https://apply.workable.com/huggingface/",
	"https://jobs.smartrecruiters.com/Visa",
}

type scrapeJobResponse struct {
	Success     bool   `json:"success"`
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

type runResult struct {
	URL        string `json:"url"`
	Run        int    `json:"run"`
	LatencyMs  int64  `json:"latency_ms"`
	HTTPStatus int    `json:"http_status"`
	Success    bool   `json:"success"`
	HasTitle   bool   `json:"has_title"`
	HasCompany bool   `json:"has_company"`
	HasLoc     bool   `json:"has_location"`
	HasDesc    bool   `json:"has_description"`
	DescLen    int    `json:"description_length"`
	Error      string `json:"error,omitempty"`
}

type summary struct {
	Requests     int     `json:"requests"`
	SuccessRate  float64 `json:"success_rate"`
	TitleRate    float64 `json:"title_rate"`
	CompanyRate  float64 `json:"company_rate"`
	LocationRate float64 `json:"location_rate"`
	DescRate     float64 `json:"description_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type benchmarkReport struct {
	Timestamp string      `json:"timestamp"`
	APIURL    string      `json:"api_url"`
	Format    string      `json:"description_format"`
	Summary   summary     `json:"summary"`
	Results   []runResult `json:"results"`
}

func main() {
	flag.Parse()

	urls := defaultURLs
	if *urlsFile != "" {
		f, err := os.Open(*urlsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		urls, err = readURLs(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *urlsFile, err)
			os.Exit(1)
		}
	}

	fmt.Println("=== jobscout field coverage benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("URLs:      %d x %d runs\n\n", len(urls), *runs)

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	report := benchmarkReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		APIURL:    *apiURL,
		Format:    *format,
	}
	for _, u := range urls {
		for i := 1; i <= *runs; i++ {
			rr := benchmarkURL(client, u, i)
			if rr.Error != "" && !rr.Success {
				fmt.Printf("  %-60s FAILED: %s\n", truncateURL(u, 60), rr.Error)
			} else {
				fmt.Printf("  %-60s OK %dms\n", truncateURL(u, 60), rr.LatencyMs)
			}
			report.Results = append(report.Results, rr)
		}
	}
	report.Summary = summarize(report.Results)

	printTable(os.Stdout, report.Results)
	printSummary(os.Stdout, report.Summary)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

// readURLs returns the non-blank, non-comment lines of r.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func benchmarkURL(client *http.Client, url string, run int) runResult {
	rr := runResult{URL: url, Run: run}

	body, err := json.Marshal(map[string]string{"url": url, "description_format": *format})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}
	req, err := http.NewRequest(http.MethodPost, *apiURL+"/scrape-job", bytes.NewReader(body))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	start := time.Now()
	resp, err := client.Do(req)
	rr.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.HTTPStatus = resp.StatusCode

	var sr scrapeJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	fillRun(&rr, sr)
	return rr
}

func fillRun(rr *runResult, sr scrapeJobResponse) {
	rr.Success = sr.Success
	rr.HasTitle = sr.JobTitle != ""
	rr.HasCompany = sr.CompanyName != ""
	rr.HasLoc = sr.Location != ""
	rr.HasDesc = sr.Description != ""
	rr.DescLen = len([]rune(sr.Description))
	rr.Error = sr.Error
}

func summarize(results []runResult) summary {
	s := summary{Requests: len(results)}
	if s.Requests == 0 {
		return s
	}
	var latency int64
	for _, r := range results {
		latency += r.LatencyMs
		s.SuccessRate += b2f(r.Success)
		s.TitleRate += b2f(r.HasTitle)
		s.CompanyRate += b2f(r.HasCompany)
		s.LocationRate += b2f(r.HasLoc)
		s.DescRate += b2f(r.HasDesc)
	}
	n := float64(s.Requests)
	s.SuccessRate /= n
	s.TitleRate /= n
	s.CompanyRate /= n
	s.LocationRate /= n
	s.DescRate /= n
	s.AvgLatencyMs = float64(latency) / n
	return s
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func printTable(out io.Writer, results []runResult) {
	fmt.Fprintln(out, strings.Repeat("─", 85))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tLatency\tTitle\tCompany\tLocation\tDesc\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%dms\t%s\t%s\t%s\t%d\n",
			truncateURL(r.URL, 40), r.LatencyMs,
			mark(r.HasTitle), mark(r.HasCompany), mark(r.HasLoc), r.DescLen)
	}
	w.Flush()
	fmt.Fprintln(out, strings.Repeat("─", 85))
}

func printSummary(out io.Writer, s summary) {
	fmt.Fprintf(out, "success %.0f%%  title %.0f%%  company %.0f%%  location %.0f%%  description %.0f%%  avg %.0fms\n",
		s.SuccessRate*100, s.TitleRate*100, s.CompanyRate*100, s.LocationRate*100, s.DescRate*100, s.AvgLatencyMs)
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
