// Command shadow_compare replays the relay routes against this server and the
// legacy Node server with the same credential cookies and reports differences.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
	// Keys limits the body comparison to these top-level JSON keys.
	Keys []string `json:"keys"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type credentials struct {
	PupilCode   string
	DateOfBirth string
}

type result struct {
	Target       target
	GoStatus     int
	LegacyStatus int
	GoLocation   string
	LegacyLoc    string
	StatusMatch  bool
	BodyMatch    bool
	Err          error
	GoTook       time.Duration
	LegacyTook   time.Duration
}

func (r result) diff() bool {
	return r.Err != nil || !r.StatusMatch || !r.BodyMatch
}

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
		creds       credentials
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:3000", "Go dashboard base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3001", "Legacy dashboard base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "HTTP client timeout")
	flag.StringVar(&creds.PupilCode, "pupil-code", os.Getenv("PUPIL_CODE"), "Pupil code sent as the pupilCode cookie")
	flag.StringVar(&creds.DateOfBirth, "dob", os.Getenv("DATE_OF_BIRTH"), "Date of birth sent as the dateOfBirth cookie")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{
		Timeout: timeout,
		// Redirects are part of the contract being compared.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	var (
		results      []result
		breaking     int
		optionalDiff int
	)
	for _, t := range targets {
		res := compare(client, goBase, legacyBase, creds, t)
		if res.diff() {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		results = append(results, res)
	}

	printReport(os.Stdout, results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compare(client *http.Client, goBase, legacyBase string, creds credentials, t target) result {
	res := result{Target: t}

	goStatus, goLoc, goBody, goTook, err := fetch(client, goBase, creds, t)
	if err != nil {
		res.Err = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyStatus, legacyLoc, legacyBody, legacyTook, err := fetch(client, legacyBase, creds, t)
	if err != nil {
		res.Err = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GoStatus, res.GoLocation, res.GoTook = goStatus, goLoc, goTook
	res.LegacyStatus, res.LegacyLoc, res.LegacyTook = legacyStatus, legacyLoc, legacyTook
	res.StatusMatch = goStatus == legacyStatus && goLoc == legacyLoc
	res.BodyMatch = bodiesEqual(goBody, legacyBody, t.Keys)
	return res
}

func fetch(client *http.Client, base string, creds credentials, t target) (int, string, []byte, time.Duration, error) {
	if client == nil {
		return 0, "", nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, "", nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if creds.PupilCode != "" && creds.DateOfBirth != "" {
		req.AddCookie(&http.Cookie{Name: "pupilCode", Value: creds.PupilCode})
		req.AddCookie(&http.Cookie{Name: "dateOfBirth", Value: creds.DateOfBirth})
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", nil, 0, err
	}
	defer resp.Body.Close()
	took := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, took, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, resp.Header.Get("Location"), body, took, nil
}

// bodiesEqual compares two JSON bodies, optionally only on keys. Non-JSON
// bodies match when byte-identical after trimming.
func bodiesEqual(a, b []byte, keys []string) bool {
	if len(keys) == 0 && bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	if len(keys) > 0 {
		aj, bj = pick(aj, keys), pick(bj, keys)
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func pick(v interface{}, keys []string) interface{} {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	out := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		if value, ok := obj[key]; ok {
			out[key] = value
		}
	}
	return out
}

// normalize folds the legacy numeric flags (success: 1) and integral floats so
// both servers compare equal on the same data.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, inner := range val {
			normalize(&inner)
			val[k] = inner
		}
		if n, ok := val["success"].(int64); ok {
			val["success"] = n == 1
		}
	case []interface{}:
		for i, inner := range val {
			normalize(&inner)
			val[i] = inner
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(w io.Writer, results []result) {
	fmt.Fprintln(w, "Dashboard Parity Report")
	fmt.Fprintln(w, "=======================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case res.diff():
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Fprintf(w, "  Go: %d %s (%s)\n", res.GoStatus, res.GoLocation, res.GoTook)
		fmt.Fprintf(w, "  Legacy: %d %s (%s)\n", res.LegacyStatus, res.LegacyLoc, res.LegacyTook)
		if res.Err != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(w, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}
