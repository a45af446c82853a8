package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// HealthResponse matches the /readyz body.
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthCheckResult is the outcome of probing one URL.
type HealthCheckResult struct {
	URL        string
	StatusCode int
	Status     string
	Healthy    bool
	Err        error
}

type healthcheckOptions struct {
	url     string
	timeout time.Duration
	retries int
	backoff time.Duration
}

func newHealthcheckCommand() *cobra.Command {
	opts := healthcheckOptions{}
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is ready",
		Long: `Performs a readiness check by calling the /readyz endpoint.

This command is used by container HEALTHCHECK directives. It exits with code 0
when the server reports healthy and non-zero otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := opts.url
			if url == "" {
				url = defaultHealthURL()
			}
			result := performHealthCheckWithRetries(cmd.Context(), url, opts)
			if !result.Healthy {
				if result.Err != nil {
					return fmt.Errorf("health check failed: %w", result.Err)
				}
				return fmt.Errorf("unhealthy: status=%s code=%d", result.Status, result.StatusCode)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.URL, result.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "readiness URL (default: http://localhost:{PORT}/readyz)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "timeout per attempt")
	cmd.Flags().IntVar(&opts.retries, "retries", 1, "number of attempts")
	cmd.Flags().DurationVar(&opts.backoff, "backoff", time.Second, "delay between attempts")
	return cmd
}

func defaultHealthURL() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	return fmt.Sprintf("http://localhost:%s/readyz", port)
}

func performHealthCheck(ctx context.Context, url string, timeout time.Duration) HealthCheckResult {
	result := HealthCheckResult{URL: url}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Err = err
		return result
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()
	result.StatusCode = resp.StatusCode

	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Err = fmt.Errorf("parse health response: %w", err)
		return result
	}
	result.Status = body.Status
	result.Healthy = resp.StatusCode == http.StatusOK && body.Status == "healthy"
	return result
}

func performHealthCheckWithRetries(ctx context.Context, url string, opts healthcheckOptions) HealthCheckResult {
	attempts := opts.retries
	if attempts < 1 {
		attempts = 1
	}

	var result HealthCheckResult
	for i := 0; i < attempts; i++ {
		result = performHealthCheck(ctx, url, opts.timeout)
		if result.Healthy || i == attempts-1 {
			return result
		}
		select {
		case <-ctx.Done():
			return result
		case <-time.After(opts.backoff):
		}
	}
	return result
}
