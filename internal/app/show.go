package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"

	"campuswatch/internal/engine"
)

// Show queries a running campuswatch instance and prints its recent alerts.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return fmt.Errorf("--url is required")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)

	var alerts []engine.Alert
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(opts.Limit)).
		SetResult(&alerts).
		Get("/api/alerts/recent")
	if err != nil {
		return fmt.Errorf("query recent alerts: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("recent alerts 响应码异常: %d", resp.StatusCode())
	}

	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts recorded")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tType\tEntity\tDetail")
	for _, alert := range alerts {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			alert.Timestamp.UTC().Format(time.RFC3339),
			alert.Kind,
			alert.EntityID,
			sanitizeInline(alertDetail(alert)),
		)
	}
	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
