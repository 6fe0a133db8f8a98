package command

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	pb "github.com/godilite/feedback-server/api/v1"
)

func newOverviewCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the dashboard overview of a branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, client *pb.FeedbackClient) error {
				resp, err := client.GetOverview(ctx, opts.dashboardRequest())
				if err != nil {
					return fmt.Errorf("failed to get overview: %w", err)
				}
				if opts.asJSON {
					return printJSON(cmd, resp)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Average:       %.2f\n", resp.GlobalAverage)
				fmt.Fprintf(out, "Ratings:       %d in %d episodes\n", resp.TotalRatings, resp.TotalEpisodes)
				fmt.Fprintf(out, "Comments:      %d\n", resp.TotalComments)
				fmt.Fprintf(out, "Suggestions:   %d\n", resp.TotalSuggestions)

				scores := make([]int, 0, len(resp.Distribution))
				for score := range resp.Distribution {
					scores = append(scores, int(score))
				}
				sort.Ints(scores)
				for _, score := range scores {
					fmt.Fprintf(out, "  %d stars:     %d\n", score, resp.Distribution[int32(score)])
				}

				if len(resp.ServicePoints) > 0 {
					w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "\nSERVICE POINT\tACTIVE\tAVERAGE\tRATINGS\tCOMMENTS")
					for _, sp := range resp.ServicePoints {
						fmt.Fprintf(w, "%s\t%t\t%.1f\t%d\t%d\n", sp.Name, sp.IsActive, sp.AverageRating, sp.RatingCount, sp.CommentCount)
					}
					if err := w.Flush(); err != nil {
						return err
					}
				}
				for _, e := range resp.Errors {
					fmt.Fprintf(out, "warning: %s unavailable: %s\n", e.Source, e.Message)
				}
				return nil
			})
		},
	}
}

func newEpisodesCommand(opts *options) *cobra.Command {
	var criterion, servicePoint, search string

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List rating episodes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, client *pb.FeedbackClient) error {
				req := opts.dashboardRequest()
				req.Criterion = criterion
				req.ServicePoint = servicePoint
				req.Search = search

				resp, err := client.ListEpisodes(ctx, req)
				if err != nil {
					return fmt.Errorf("failed to list episodes: %w", err)
				}
				if opts.asJSON {
					return printJSON(cmd, resp)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tSERVICE POINT\tUSER\tCRITERIA\tAVERAGE")
				for _, e := range resp.Episodes {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\n", e.Date, e.ServicePoint, e.UserName, len(e.Criteria), e.AverageScore)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&criterion, "criterion", "", "keep episodes rating this criterion")
	cmd.Flags().StringVar(&servicePoint, "service-point", "", "keep episodes of this service point")
	cmd.Flags().StringVar(&search, "search", "", "free-text filter")
	return cmd
}

func newSuggestionsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suggestions",
		Short: "List free-text suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, client *pb.FeedbackClient) error {
				resp, err := client.ListSuggestions(ctx, opts.dashboardRequest())
				if err != nil {
					return fmt.Errorf("failed to list suggestions: %w", err)
				}
				if opts.asJSON {
					return printJSON(cmd, resp)
				}
				for _, s := range resp.Suggestions {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s (%s)\n", s.Text, s.UserName)
				}
				return nil
			})
		},
	}
}
