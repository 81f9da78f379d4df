package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const (
	defaultListenAddr = ":8081"
	checkTimeout      = 2 * time.Second
)

// defaultTargets are the in-cluster health endpoints checked when
// HEALTH_TARGETS is unset.
var defaultTargets = []string{
	"http://localhost:8082/health",
}

type targetStatus struct {
	URL     string `json:"url"`
	Healthy bool   `json:"healthy"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

type healthReport struct {
	Status  string         `json:"status"`
	Targets []targetStatus `json:"targets"`
}

func main() {
	_ = godotenv.Load()
	utils.InitLogger("meta-service")

	addr := os.Getenv("META_LISTEN_ADDR")
	if addr == "" {
		addr = defaultListenAddr
	}
	targets := parseTargets(os.Getenv("HEALTH_TARGETS"))

	http.HandleFunc("/health", healthHandler(&http.Client{Timeout: checkTimeout}, targets))
	utils.Logger.Infof("Starting health check service on %s (%d targets)", addr, len(targets))
	srv := &http.Server{Addr: addr, ReadHeaderTimeout: 5 * time.Second}
	utils.Logger.Fatal(srv.ListenAndServe())
}

// parseTargets splits a comma-separated list, falling back to defaultTargets.
func parseTargets(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return defaultTargets
	}
	return out
}

func healthHandler(client *http.Client, targets []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := checkAll(r.Context(), client, targets)
		status := http.StatusOK
		if report.Status != "OK" {
			status = http.StatusServiceUnavailable
		}
		utils.RespondWithJSON(w, status, report)
	}
}

// checkAll checks every target concurrently. Results keep the input order.
func checkAll(ctx context.Context, client *http.Client, targets []string) healthReport {
	results := make([]targetStatus, len(targets))
	var wg sync.WaitGroup
	for i, u := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = checkTarget(ctx, client, u)
		}()
	}
	wg.Wait()

	report := healthReport{Status: "OK", Targets: results}
	for _, res := range results {
		if !res.Healthy {
			report.Status = "Unhealthy"
			utils.Logger.Warnf("(Health Check) Service unhealthy: %s", res.URL)
		}
	}
	return report
}

func checkTarget(ctx context.Context, client *http.Client, u string) targetStatus {
	res := targetStatus{URL: u}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	resp, err := client.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode
	res.Healthy = resp.StatusCode == http.StatusOK
	return res
}
