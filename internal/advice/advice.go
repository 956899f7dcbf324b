// Package advice asks a local Ollama-compatible endpoint for budgeting
// suggestions grounded in the household's current numbers. The model never
// sees raw transactions, only the aggregated summary.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contas/internal/core"
	"contas/internal/metrics"
)

type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Advise returns a short piece of budgeting advice for the current month.
func (c *Client) Advise(ctx context.Context, state *core.FinanceState, now time.Time) (string, error) {
	prompt := buildPrompt(state, now)

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	advice := strings.TrimSpace(out.Response)
	if advice == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return advice, nil
}

// buildPrompt condenses the dashboard numbers into a compact briefing.
func buildPrompt(state *core.FinanceState, now time.Time) string {
	summary := metrics.ComputeSummary(state, metrics.PeriodMonthly, now)
	effort := metrics.ComputeEffortRate(state)
	taxes := metrics.EstimateDeductions(state.Transactions, now)

	var b strings.Builder
	b.WriteString("You are a pragmatic family budgeting assistant for a Portuguese household.\n")
	fmt.Fprintf(&b, "Currency: %s. Month: %s.\n", state.AppSettings.Currency, now.Format("2006-01"))
	fmt.Fprintf(&b, "This month: income %s, expenses %s, net %s.\n",
		summary.TotalInflow, summary.TotalOutflow, summary.Net)

	if len(summary.ByCategory) > 0 {
		b.WriteString("Spending by category:\n")
		for _, ca := range summary.ByCategory {
			fmt.Fprintf(&b, "- %s: %s (%s%%)\n", ca.Category, ca.Amount, ca.Percent.StringFixed(1))
		}
	}

	if effort.Available {
		fmt.Fprintf(&b, "Effort rate (fixed commitments over fixed income): %s%%.\n", effort.Rate)
	}
	fmt.Fprintf(&b, "Saved towards goals: %s. Invested: %s. Debt outstanding: %s.\n",
		summary.GoalsSaved, summary.Invested, summary.DebtOwed)
	fmt.Fprintf(&b, "Estimated recoverable tax deductions this year: %s.\n", taxes.TotalRecoverable)

	b.WriteString("Give three short, concrete suggestions to improve next month. Answer in plain text, no markdown.")
	return b.String()
}
