package command

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	pb "github.com/godilite/feedback-server/api/v1"
)

func newServicePointsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "service-points",
		Short: "List service points and their criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, client *pb.FeedbackClient) error {
				resp, err := client.ListServicePoints(ctx, &pb.ListServicePointsRequest{CompanyId: opts.company})
				if err != nil {
					return fmt.Errorf("failed to list service points: %w", err)
				}
				if opts.asJSON {
					return printJSON(cmd, resp)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tACTIVE\tCRITERIA")
				for _, sp := range resp.ServicePoints {
					titles := make([]string, len(sp.Criteria))
					for i, c := range sp.Criteria {
						titles[i] = c.Title
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", sp.Id, sp.Name, sp.Department, sp.IsActive, strings.Join(titles, ", "))
				}
				return w.Flush()
			})
		},
	}
}

func newCriteriaCommand(opts *options) *cobra.Command {
	criteria := &cobra.Command{
		Use:   "criteria",
		Short: "Manage catalog criteria",
	}

	var servicePointID int64
	var required, optional []string

	upsert := &cobra.Command{
		Use:   "upsert",
		Short: "Create or update criteria of a service point",
		Long: `Create or update criteria by title and link them to a service point.
Criteria are displayed in the order given, required ones first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if servicePointID <= 0 {
				return fmt.Errorf("service point id is required (--service-point)")
			}
			if len(required)+len(optional) == 0 {
				return fmt.Errorf("at least one --required or --optional criterion is required")
			}

			inputs := make([]*pb.CriterionInput, 0, len(required)+len(optional))
			add := func(titles []string, isRequired bool) {
				for _, title := range titles {
					flag := isRequired
					inputs = append(inputs, &pb.CriterionInput{
						Title:        title,
						IsRequired:   &flag,
						DisplayOrder: int32(len(inputs) + 1),
					})
				}
			}
			add(required, true)
			add(optional, false)

			return opts.call(cmd, func(ctx context.Context, client *pb.FeedbackClient) error {
				resp, err := client.UpsertCriteria(ctx, &pb.UpsertCriteriaRequest{
					CompanyId:      opts.company,
					ServicePointId: servicePointID,
					Criteria:       inputs,
				})
				if err != nil {
					return fmt.Errorf("failed to upsert criteria: %w", err)
				}
				if opts.asJSON {
					return printJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "upserted %d criteria: %v\n", len(resp.Ids), resp.Ids)
				return nil
			})
		},
	}
	upsert.Flags().Int64Var(&servicePointID, "service-point", 0, "service point id")
	upsert.Flags().StringSliceVar(&required, "required", nil, "required criterion title (repeatable)")
	upsert.Flags().StringSliceVar(&optional, "optional", nil, "optional criterion title (repeatable)")

	criteria.AddCommand(upsert)
	return criteria
}
