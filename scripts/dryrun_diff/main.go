// Command dryrun_diff runs a dry generation pass against two deployments of
// the API and reports how the produced timetables differ. It is meant for
// validating engine or weight changes before rollout: point -base at the
// current deployment and -candidate at the one under test.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

type assignment struct {
	OfferingID string  `json:"offeringId"`
	Kind       string  `json:"kind"`
	SlotID     string  `json:"slotId"`
	RoomID     *string `json:"roomId"`
	Locked     bool    `json:"locked"`
}

type warning struct {
	OfferingID string `json:"offeringId"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
}

type stats struct {
	SuccessfulUnits int     `json:"successfulUnits"`
	FailedUnits     int     `json:"failedUnits"`
	Utilization     float64 `json:"utilization"`
}

type generateResponse struct {
	Data struct {
		Assignments []assignment `json:"assignments"`
		Warnings    []warning    `json:"warnings"`
		Stats       stats        `json:"stats"`
	} `json:"data"`
}

type run struct {
	base     string
	response generateResponse
	duration time.Duration
}

func main() {
	var (
		baseURL      string
		candidateURL string
		apiPrefix    string
		timeout      time.Duration
		maxChurn     float64
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "baseline API base URL")
	flag.StringVar(&candidateURL, "candidate", "http://localhost:8081", "candidate API base URL")
	flag.StringVar(&apiPrefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "HTTP client timeout")
	flag.Float64Var(&maxChurn, "max-churn", 0.25, "fail when more than this fraction of units move")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	baseline, err := dryRun(client, baseURL, apiPrefix)
	if err != nil {
		log.Fatalf("baseline run failed: %v", err)
	}
	candidate, err := dryRun(client, candidateURL, apiPrefix)
	if err != nil {
		log.Fatalf("candidate run failed: %v", err)
	}

	churn := report(baseline, candidate)
	if churn > maxChurn {
		fmt.Printf("FAIL: %.0f%% of units moved (limit %.0f%%)\n", churn*100, maxChurn*100)
		os.Exit(1)
	}
}

func dryRun(client *http.Client, base, prefix string) (*run, error) {
	url := strings.TrimRight(base, "/") + prefix + "/timetable/generate"
	body := bytes.NewReader([]byte(`{"dryRun":true}`))

	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	r := &run{base: base, duration: time.Since(start)}
	if err := json.Unmarshal(raw, &r.response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return r, nil
}

// unitKey identifies one schedulable unit independent of its placement.
func unitKey(a assignment) string {
	return a.OfferingID + "/" + a.Kind
}

func placement(a assignment) string {
	room := "-"
	if a.RoomID != nil {
		room = *a.RoomID
	}
	return a.SlotID + "@" + room
}

func report(baseline, candidate *run) float64 {
	basePlacements := map[string][]string{}
	for _, a := range baseline.response.Data.Assignments {
		basePlacements[unitKey(a)] = append(basePlacements[unitKey(a)], placement(a))
	}
	candPlacements := map[string][]string{}
	for _, a := range candidate.response.Data.Assignments {
		candPlacements[unitKey(a)] = append(candPlacements[unitKey(a)], placement(a))
	}

	var moved, added, removed []string
	for key, basePl := range basePlacements {
		candPl, ok := candPlacements[key]
		if !ok {
			removed = append(removed, key)
			continue
		}
		if !samePlacements(basePl, candPl) {
			moved = append(moved, key)
		}
	}
	for key := range candPlacements {
		if _, ok := basePlacements[key]; !ok {
			added = append(added, key)
		}
	}
	sort.Strings(moved)
	sort.Strings(added)
	sort.Strings(removed)

	fmt.Println("Dry-Run Diff Report")
	fmt.Println("===================")
	printRun("baseline", baseline)
	printRun("candidate", candidate)
	fmt.Printf("Units moved: %d\n", len(moved))
	for _, key := range moved {
		fmt.Printf("  ~ %s: %s -> %s\n", key, strings.Join(basePlacements[key], ","), strings.Join(candPlacements[key], ","))
	}
	fmt.Printf("Units only in candidate: %d\n", len(added))
	for _, key := range added {
		fmt.Printf("  + %s\n", key)
	}
	fmt.Printf("Units only in baseline: %d\n", len(removed))
	for _, key := range removed {
		fmt.Printf("  - %s\n", key)
	}

	total := len(basePlacements)
	if total == 0 {
		return 0
	}
	return float64(len(moved)+len(removed)) / float64(total)
}

func samePlacements(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sortedA := append([]string(nil), a...)
	sortedB := append([]string(nil), b...)
	sort.Strings(sortedA)
	sort.Strings(sortedB)
	for i := range sortedA {
		if sortedA[i] != sortedB[i] {
			return false
		}
	}
	return true
}

func printRun(name string, r *run) {
	st := r.response.Data.Stats
	fmt.Printf("%s (%s, %s): %d placed, %d failed, %.1f%% utilization, %d warnings\n",
		name, r.base, r.duration.Round(time.Millisecond),
		st.SuccessfulUnits, st.FailedUnits, st.Utilization, len(r.response.Data.Warnings))
}
