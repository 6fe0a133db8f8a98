// Package command implements feedbackctl, an operator CLI for the feedback
// gRPC API.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/godilite/feedback-server/api/v1"
)

type options struct {
	addr    string
	timeout time.Duration
	company string
	branch  string
	asJSON  bool
}

// NewRootCommand builds the command tree. Each invocation gets its own flags.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "feedbackctl",
		Short:         "feedbackctl - operate the feedback service",
		Long:          "feedbackctl reads dashboards and manages rating criteria over the feedback gRPC API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.addr, "addr", "localhost:50051", "gRPC server address")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-call timeout")
	flags.StringVar(&opts.company, "company", "", "company id")
	flags.StringVar(&opts.branch, "branch", "", "branch id")
	flags.BoolVar(&opts.asJSON, "json", false, "print raw JSON")

	root.AddCommand(
		newOverviewCommand(opts),
		newEpisodesCommand(opts),
		newSuggestionsCommand(opts),
		newServicePointsCommand(opts),
		newCriteriaCommand(opts),
	)
	return root
}

// Execute runs feedbackctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// call dials the server, runs fn with a bounded context and closes the connection.
func (o *options) call(cmd *cobra.Command, fn func(ctx context.Context, client *pb.FeedbackClient) error) error {
	if o.company == "" {
		return fmt.Errorf("company is required (--company)")
	}

	conn, err := grpc.NewClient(o.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to create gRPC client: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	return fn(ctx, pb.NewFeedbackClient(conn))
}

func (o *options) dashboardRequest() *pb.DashboardRequest {
	return &pb.DashboardRequest{CompanyId: o.company, BranchId: o.branch}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
