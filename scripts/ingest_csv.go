// Package main provides a CLI tool to ingest survey responses from a CSV file
// into the survey hub API. This simulates real production usage by making API
// calls with proper authentication.
//
// The CSV header row names the columns: "completed" and "time_spent_seconds"
// are recognized as response fields, every other column is treated as a
// question id and its cell value becomes that question's answer.
//
// Usage:
//
//	go run scripts/ingest_csv.go -file /path/to/responses.csv -survey-id <uuid> -api-url http://localhost:8080 -api-key YOUR_API_KEY
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the CLI configuration
type Config struct {
	FilePath   string
	SurveyID   string
	APIBaseURL string
	APIKey     string
	DelayMS    int
	DryRun     bool
}

// AnswerPayload matches the Answer model
type AnswerPayload struct {
	QuestionID string          `json:"question_id"`
	Value      json.RawMessage `json:"value,omitempty"`
}

// ResponseRequest matches the CreateResponseRequest model
type ResponseRequest struct {
	IsCompleted      bool            `json:"is_completed"`
	TimeSpentSeconds *float64        `json:"time_spent_seconds,omitempty"`
	Answers          []AnswerPayload `json:"answers"`
	SubmittedAt      *string         `json:"submitted_at,omitempty"`
}

// Stats tracks ingestion statistics
type Stats struct {
	TotalRows       int
	SkippedEmpty    int
	SuccessfulPosts int
	FailedPosts     int
}

// Reserved header names that are not question ids.
const (
	headerCompleted   = "completed"
	headerTimeSpent   = "time_spent_seconds"
	headerSubmittedAt = "submitted_at"
)

func main() {
	cfg := parseFlags()

	if cfg.FilePath == "" {
		fmt.Println("Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	if cfg.SurveyID == "" {
		fmt.Println("Error: -survey-id is required")
		flag.Usage()
		os.Exit(1)
	}

	if cfg.APIKey == "" {
		fmt.Println("Error: -api-key is required")
		flag.Usage()
		os.Exit(1)
	}

	fmt.Printf("Survey Hub CSV Ingestion Tool\n")
	fmt.Printf("   API URL: %s\n", cfg.APIBaseURL)
	fmt.Printf("   Survey: %s\n", cfg.SurveyID)
	fmt.Printf("   CSV File: %s\n", cfg.FilePath)
	fmt.Printf("   Delay: %dms between requests\n", cfg.DelayMS)
	if cfg.DryRun {
		fmt.Printf("   DRY RUN MODE - No actual API calls will be made\n")
	}
	fmt.Println()

	stats := processCSV(cfg)

	fmt.Println()
	fmt.Println("Ingestion Summary")
	fmt.Printf("   Total rows processed:  %d\n", stats.TotalRows)
	fmt.Printf("   Skipped (empty):       %d\n", stats.SkippedEmpty)
	fmt.Printf("   Successfully created:  %d\n", stats.SuccessfulPosts)
	fmt.Printf("   Failed:                %d\n", stats.FailedPosts)
	fmt.Println()

	if stats.FailedPosts > 0 {
		os.Exit(1)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.FilePath, "file", "", "Path to CSV file (required)")
	flag.StringVar(&cfg.SurveyID, "survey-id", "", "Survey ID (UUID) to ingest responses into (required)")
	flag.StringVar(&cfg.APIBaseURL, "api-url", "http://localhost:8080", "Hub API base URL")
	flag.StringVar(&cfg.APIKey, "api-key", "", "API key for authentication (required)")
	flag.IntVar(&cfg.DelayMS, "delay", 100, "Delay in milliseconds between API calls")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Parse CSV but don't make API calls")

	flag.Parse()
	return cfg
}

func processCSV(cfg Config) Stats {
	stats := Stats{}

	file, err := os.Open(cfg.FilePath)
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable field counts
	reader.LazyQuotes = true    // Handle quotes more leniently

	client := &http.Client{Timeout: 10 * time.Second}

	header, err := reader.Read()
	if err != nil {
		fmt.Printf("Error reading header: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Ingesting responses...")

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("   ! Row %d: Error reading: %v\n", rowNum, err)
			rowNum++
			continue
		}

		stats.TotalRows++
		response := extractResponseFromRow(header, row)

		if len(response.Answers) == 0 {
			stats.SkippedEmpty++
			rowNum++
			continue
		}

		if cfg.DryRun {
			fmt.Printf("   [DRY] Row %d: Would create response with %d answers\n", rowNum, len(response.Answers))
			stats.SuccessfulPosts++
			rowNum++
			continue
		}

		if err := postResponse(client, cfg, response); err != nil {
			fmt.Printf("   x Row %d: %v\n", rowNum, err)
			stats.FailedPosts++
		} else {
			fmt.Printf("   + Row %d: %d answers\n", rowNum, len(response.Answers))
			stats.SuccessfulPosts++
		}

		time.Sleep(time.Duration(cfg.DelayMS) * time.Millisecond)
		rowNum++
	}

	return stats
}

// extractResponseFromRow maps CSV cells to a response payload. Numeric cells
// are sent as JSON numbers so rating questions tally correctly; everything
// else is sent as a string.
func extractResponseFromRow(header, row []string) ResponseRequest {
	response := ResponseRequest{}

	for i, name := range header {
		cell := strings.TrimSpace(safeGet(row, i))
		if cell == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(name)) {
		case headerCompleted:
			completed, err := strconv.ParseBool(cell)
			if err == nil {
				response.IsCompleted = completed
			}
		case headerTimeSpent:
			seconds, err := strconv.ParseFloat(cell, 64)
			if err == nil {
				response.TimeSpentSeconds = &seconds
			}
		case headerSubmittedAt:
			// Parse "2006-01-02 15:04:05" format and convert to RFC3339
			if t, err := time.Parse("2006-01-02 15:04:05", cell); err == nil {
				formatted := t.Format(time.RFC3339)
				response.SubmittedAt = &formatted
			}
		default:
			response.Answers = append(response.Answers, AnswerPayload{
				QuestionID: strings.TrimSpace(name),
				Value:      cellToJSON(cell),
			})
		}
	}

	return response
}

// cellToJSON encodes a cell as a JSON number when it parses as one, otherwise
// as a JSON string.
func cellToJSON(cell string) json.RawMessage {
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return json.RawMessage(cell)
	}

	encoded, _ := json.Marshal(cell)
	return encoded
}

func postResponse(client *http.Client, cfg Config, response ResponseRequest) error {
	body, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	url := cfg.APIBaseURL + "/v1/surveys/" + cfg.SurveyID + "/responses"
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func safeGet(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return row[index]
	}
	return ""
}
