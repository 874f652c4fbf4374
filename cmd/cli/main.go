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
	baseURL  string
	timeout  time.Duration
	tenantID string
	userID   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glcore-cli",
		Short: "General ledger CLI tool",
		Long:  `A command line interface for the glcore ledger and reconciliation API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the glcore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "Tenant ID sent with every request")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID sent with every request")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Chart of accounts operations",
	}
	accountCmd.AddCommand(listAccountsCmd())

	periodCmd := &cobra.Command{
		Use:   "period",
		Short: "Financial period operations",
	}
	periodCmd.AddCommand(closePeriodCmd())

	statementCmd := &cobra.Command{
		Use:   "statement",
		Short: "Bank statement operations",
	}
	statementCmd.AddCommand(importStatementCmd(), reconcileCmd())

	rootCmd.AddCommand(accountCmd, periodCmd, statementCmd, trialBalanceCmd())
	return rootCmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := doRequest(http.MethodGet, "/api/v1/accounts", nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
}

func closePeriodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <period-id>",
		Short: "Close a financial period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := doRequest(http.MethodPost, "/api/v1/periods/"+args[0]+"/close", nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
}

func importStatementCmd() *cobra.Command {
	var bankAccountID, format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read statement file: %w", err)
			}

			result, err := doRequest(http.MethodPost, "/api/v1/statements/import", map[string]any{
				"bank_account_id": bankAccountID,
				"format":          format,
				"content":         string(content),
			})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&bankAccountID, "bank-account", "", "Ledger account the statement belongs to")
	cmd.Flags().StringVar(&format, "format", "csv", "Statement format")
	_ = cmd.MarkFlagRequired("bank-account")
	return cmd
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <statement-id>",
		Short: "Run a matching pass over an imported statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := doRequest(http.MethodPost, "/api/v1/statements/"+args[0]+"/reconcile", nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}
}

func trialBalanceCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Fetch a trial balance report",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/trial-balance?start=" + start + "&end=" + end
			result, err := doRequest(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Report start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Report end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func doRequest(method, path string, body any) (map[string]any, error) {
	client := &http.Client{Timeout: timeout}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	req.Header.Set("X-User-ID", userID)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
