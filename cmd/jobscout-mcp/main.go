package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	_ = godotenv.Load()

	apiURL := os.Getenv("JOBSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &client{
		apiURL: apiURL,
		apiKey: os.Getenv("JOBSCOUT_API_KEY"),
		http:   newHTTPClient(60 * time.Second),
	}

	s := server.NewMCPServer(
		"jobscout",
		"0.1.0",
		server.WithToolCapabilities(false),
	)
	s.AddTool(scrapeJobTool(), c.handleScrapeJob)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func scrapeJobTool() mcp.Tool {
	return mcp.NewTool("scrape_job",
		mcp.WithDescription("Extract the job title, company, location and description from a job posting URL. Fields that cannot be found are left empty so they can be filled in by hand."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL of the job posting"),
		),
		mcp.WithString("description_format",
			mcp.Description("How to render the description: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
}
