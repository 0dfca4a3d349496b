// Command upstream_probe checks that the exam-supervision backend exposes
// the endpoints the gateway relies on and reports which payload generation
// each one returns. Run it against a staging backend before pointing the
// gateway at it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type probe struct {
	Name     string
	Method   string
	Path     string
	Critical bool
	Paged    bool
}

type result struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Shape    string
	Error    error
}

func main() {
	var (
		base      string
		teacherID int64
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8081", "Backend base URL")
	flag.Int64Var(&teacherID, "teacher", 1, "Teacher ID used for per-teacher endpoints")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := []probe{
		{Name: "sessions page", Method: http.MethodGet, Path: "/enseignant/sessions?page=0&size=5", Critical: true, Paged: true},
		{Name: "teacher profile", Method: http.MethodGet, Path: fmt.Sprintf("/enseignant/%d", teacherID), Critical: true},
		{Name: "my sessions", Method: http.MethodGet, Path: fmt.Sprintf("/enseignant/%d/mesSeances", teacherID), Critical: true},
		{Name: "subject sessions", Method: http.MethodGet, Path: fmt.Sprintf("/enseignant/%d/sessionsWithAllMatieres", teacherID), Critical: true},
	}

	client := &http.Client{Timeout: timeout}
	var failures int

	fmt.Println("Upstream Probe Report")
	fmt.Println("=====================")
	for _, p := range probes {
		res := run(client, base, p)
		status := "OK"
		if res.Error != nil || res.Status >= 400 {
			status = "FAIL"
			if p.Critical {
				failures++
			}
		}
		fmt.Printf("[%s] %s %s\n", status, p.Method, p.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status: %d (%s)\n", res.Status, res.Duration)
		if res.Shape != "" {
			fmt.Printf("  Payload shape: %s\n", res.Shape)
		}
	}

	if failures > 0 {
		fmt.Printf("Critical failures: %d\n", failures)
		os.Exit(1)
	}
}

func run(client *http.Client, base string, p probe) result {
	res := result{Probe: p}

	url := strings.TrimRight(base, "/") + p.Path
	req, err := http.NewRequest(p.Method, url, nil)
	if err != nil {
		res.Error = err
		return res
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		res.Error = fmt.Errorf("read body: %w", err)
		return res
	}

	res.Shape = describeShape(body, p.Paged)
	return res
}

// describeShape reports which generation of the session payload the backend
// returned: the current DTO (salle, surveillants, maxSurveillants) or the
// legacy entity shape (salles, enseignants, nbSurveillantsMax).
func describeShape(body []byte, paged bool) string {
	var records []map[string]json.RawMessage

	if paged {
		var page struct {
			Content []map[string]json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return "unparseable"
		}
		records = page.Content
	} else {
		if err := json.Unmarshal(body, &records); err != nil {
			var single map[string]json.RawMessage
			if err := json.Unmarshal(body, &single); err != nil {
				return "unparseable"
			}
			return "object"
		}
	}

	if len(records) == 0 {
		return "empty"
	}

	var current, legacy int
	for _, rec := range records {
		if _, ok := rec["salle"]; ok {
			current++
		}
		if _, ok := rec["surveillants"]; ok {
			current++
		}
		if _, ok := rec["maxSurveillants"]; ok {
			current++
		}
		if _, ok := rec["salles"]; ok {
			legacy++
		}
		if _, ok := rec["enseignants"]; ok {
			legacy++
		}
		if _, ok := rec["nbSurveillantsMax"]; ok {
			legacy++
		}
	}

	switch {
	case current > 0 && legacy > 0:
		return "mixed (current + legacy fields)"
	case current > 0:
		return "current DTO"
	case legacy > 0:
		return "legacy entity"
	default:
		return "unknown"
	}
}
