package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(h2hCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(metricsCmd)

	fetchCmd.Flags().Int("days", 7, "How many days back to search the feed")
	processCmd.Flags().Bool("dry-run", false, "Run the pipeline without persisting or notifying")
	rankingCmd.Flags().String("kind", "PLAYER", "Ranking kind: PLAYER or PAIR")
	recomputeCmd.Flags().String("from", "", "Recompute from this date (YYYY-MM-DD), empty means everything")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull played results from the feed and ingest them",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		return performGetRequest(fmt.Sprintf("/fetch?days=%d", days))
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the processing pipeline over pending facts",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/process"
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			endpoint += "?dry_run=true"
		}
		return performGetRequest(endpoint)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the stats store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show the current ranking (player or pair)",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		return performGetRequest("/players/ranking?kind=" + url.QueryEscape(kind))
	},
}

var h2hCmd = &cobra.Command{
	Use:   "h2h <slug-a> <slug-b>",
	Short: "Show the head-to-head summary between two subjects",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(fmt.Sprintf("/players/headtohead/%s/%s", url.PathEscape(args[0]), url.PathEscape(args[1])))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search players, pairs and tournaments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/search?q=" + url.QueryEscape(args[0]))
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show subjects with the biggest recent point swings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/analytics/trending")
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute <subject-slug>",
	Short: "Invalidate and rebuild a subject's ranking snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		return performPostRequest("/admin/recompute", map[string]string{
			"subject_id": args[0],
			"from":       from,
		})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func init() {
	fetchCmd.Flags().Int("days", 7, "How many days back to search the feed")
	processCmd.Flags().Bool("dry-run", false, "Run the pipeline without persisting or notifying")
	rankingCmd.Flags().String("kind", "PLAYER", "Ranking kind: PLAYER or PAIR")
	recomputeCmd.Flags().String("from", "", "Recompute from this date (YYYY-MM-DD), empty means everything")
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
