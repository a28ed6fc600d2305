// Package main is a minimal HTTP health check binary for use in distroless
// containers. It exits 0 when the health endpoint returns HTTP 200, and 1
// otherwise, so a service set DOWN fails its container health check.
// Compile with CGO_ENABLED=0 for a fully static binary.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"
)

var (
	url     = flag.String("url", "http://localhost:8080/actuator/health", "Health endpoint to probe")
	timeout = flag.Duration("timeout", 3*time.Second, "Request timeout")
)

func main() {
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "url" {
			explicit = true
		}
	})

	target := resolveTarget(*url, explicit, os.Getenv("HEALTHDEMO_HEALTHCHECK_URL"))
	os.Exit(probe(&http.Client{Timeout: *timeout}, target))
}

// resolveTarget picks the endpoint to check: an explicit -url flag, then the
// environment, then the flag default.
func resolveTarget(flagValue string, explicit bool, env string) string {
	if !explicit && env != "" {
		return env
	}
	return flagValue
}

// probe returns the process exit code for a single health request.
func probe(client *http.Client, target string) int {
	resp, err := client.Get(target)
	if err != nil {
		return 1
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
