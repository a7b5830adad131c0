package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "balancechain-cli",
		Short: "BalanceChain CLI tool",
		Long:  `A command line interface for interacting with the BalanceChain API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BalanceChain API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(chainCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(executeCmd())
	rootCmd.AddCommand(adjustCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func chainCmd() *cobra.Command {
	var companyID, branchID string
	var page int

	cmd := &cobra.Command{
		Use:   "chain <entityType> <entityId>",
		Short: "Show the year-by-year opening balance chain",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/opening-balance/%s/%s/years?companyId=%s&branchId=%s&page=%d",
				args[0], args[1], companyID, branchID, page)
			getJSON(path)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID (required)")
	cmd.Flags().StringVar(&branchID, "branch", "", "Branch ID")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.MarkFlagRequired("company")

	return cmd
}

func analyzeCmd() *cobra.Command {
	var companyID, accountID, amount, balanceType string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the impact of an opening balance change",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/opening-balance/analyze", map[string]any{
				"companyId":          companyID,
				"accountId":          accountID,
				"newOpeningBalance":  amount,
				"openingBalanceType": balanceType,
			})
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID (required)")
	cmd.Flags().StringVar(&accountID, "account", "", "Account ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "New opening balance (required)")
	cmd.Flags().StringVar(&balanceType, "type", "dr", "Balance type: dr or cr")
	cmd.MarkFlagRequired("company")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func executeCmd() *cobra.Command {
	var companyID, accountID, amount, balanceType, triggeredBy, reason string

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Analyze and execute an opening balance change",
		Long:  `Runs the impact analysis, then submits the change with the resulting report.`,
		Run: func(cmd *cobra.Command, args []string) {
			impact := requestJSON(http.MethodPost, "/api/v1/opening-balance/analyze", map[string]any{
				"companyId":          companyID,
				"accountId":          accountID,
				"newOpeningBalance":  amount,
				"openingBalanceType": balanceType,
			})

			fmt.Printf("Impact: %d transactions across %v branches\n",
				impact["totalTransactions"], lenOf(impact["affectedBranches"]))

			postJSON("/api/v1/opening-balance/execute", map[string]any{
				"companyId":          companyID,
				"accountId":          accountID,
				"newOpeningBalance":  amount,
				"openingBalanceType": balanceType,
				"impact":             impact,
				"triggeredBy":        triggeredBy,
				"reason":             reason,
			})
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID (required)")
	cmd.Flags().StringVar(&accountID, "account", "", "Account ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "New opening balance (required)")
	cmd.Flags().StringVar(&balanceType, "type", "dr", "Balance type: dr or cr")
	cmd.Flags().StringVar(&triggeredBy, "user", "", "User ID (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason for the change")
	cmd.MarkFlagRequired("company")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("user")

	return cmd
}

func adjustCmd() *cobra.Command {
	var companyID, branchID, entityID, entityType, amount, reason, userID string
	var financialYear int

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Create or replace a year opening adjustment",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/opening-balance/adjustments", map[string]any{
				"companyId":     companyID,
				"branchId":      branchID,
				"entityId":      entityID,
				"entityType":    entityType,
				"financialYear": financialYear,
				"amount":        amount,
				"reason":        reason,
				"userId":        userID,
			})
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID (required)")
	cmd.Flags().StringVar(&branchID, "branch", "", "Branch ID")
	cmd.Flags().StringVar(&entityID, "entity", "", "Entity ID (required)")
	cmd.Flags().StringVar(&entityType, "entity-type", "party", "Entity type: party or item")
	cmd.Flags().IntVar(&financialYear, "fy", 0, "Financial year (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Signed adjustment amount (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason (required)")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (required)")
	cmd.MarkFlagRequired("company")
	cmd.MarkFlagRequired("entity")
	cmd.MarkFlagRequired("fy")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("reason")
	cmd.MarkFlagRequired("user")

	return cmd
}

func cancelCmd() *cobra.Command {
	var companyID, branchID, reason, userID string

	cmd := &cobra.Command{
		Use:   "cancel <adjustmentId>",
		Short: "Cancel a year opening adjustment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{
				"companyId": companyID,
				"branchId":  branchID,
				"userId":    userID,
				"reason":    reason,
			}
			result := requestJSON(http.MethodDelete, "/api/v1/opening-balance/adjustments/"+args[0], body)
			printJSON(result)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID (required)")
	cmd.Flags().StringVar(&branchID, "branch", "", "Branch ID")
	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason (required)")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (required)")
	cmd.MarkFlagRequired("company")
	cmd.MarkFlagRequired("reason")
	cmd.MarkFlagRequired("user")

	return cmd
}

func historyCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history <entityType> <entityId>",
		Short: "Show the opening balance audit trail",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/opening-balance/%s/%s/history?limit=%d&offset=%d",
				args[0], args[1], limit, offset)
			getJSON(path)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")

	return cmd
}

func getJSON(path string) {
	printJSON(requestJSON(http.MethodGet, path, nil))
}

func postJSON(path string, body map[string]any) {
	printJSON(requestJSON(http.MethodPost, path, body))
}

func requestJSON(method, path string, body map[string]any) map[string]any {
	client := &http.Client{Timeout: timeout}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		// Some endpoints return arrays; fall back to raw output.
		fmt.Println(string(raw))
		os.Exit(0)
	}

	return result
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format response: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}

func lenOf(v any) int {
	if list, ok := v.([]any); ok {
		return len(list)
	}

	return 0
}
