package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Replays a capture device's per-day CSV backup against the mark endpoint.
// The device writes rows as: Name,Date,Time,Status,Class Period — where the
// first column is the recognized roll number and the period reads "Class N".
func main() {
	file := flag.String("file", "", "attendance CSV file to replay")
	baseURL := flag.String("url", "http://localhost:5000", "backend base URL")
	flag.Parse()

	if *file == "" {
		log.Fatal("usage: device -file attendance_2024-01-10.csv [-url http://host:port]")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	client := &http.Client{Timeout: 10 * time.Second}

	reader := csv.NewReader(f)
	sent, failed := 0, 0
	for line := 0; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("read csv: %v", err)
		}
		if line == 0 && strings.EqualFold(row[0], "Name") {
			continue // header
		}
		if len(row) < 5 {
			log.Printf("line %d: short row, skipped", line+1)
			failed++
			continue
		}

		period, err := parsePeriod(row[4])
		if err != nil {
			log.Printf("line %d: %v, skipped", line+1, err)
			failed++
			continue
		}

		if err := postMark(client, *baseURL, markPayload{
			RollNumber:  row[0],
			Date:        row[1],
			Time:        row[2],
			Status:      strings.ToLower(row[3]),
			ClassPeriod: period,
		}); err != nil {
			log.Printf("line %d: %v", line+1, err)
			failed++
			continue
		}
		sent++
	}

	log.Printf("replay done: %d sent, %d failed", sent, failed)
}

type markPayload struct {
	RollNumber  string `json:"rollNumber"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	ClassPeriod int    `json:"classPeriod"`
}

func parsePeriod(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Class"))
	period, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad class period %q", s)
	}
	return period, nil
}

func postMark(client *http.Client, baseURL string, payload markPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(baseURL+"/api/attendance/mark", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post mark for %s: %w", payload.RollNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mark for %s rejected: %s: %s", payload.RollNumber, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
