package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/samewave/internal/model"
)

func newSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <threadId> <trackId>",
		Short: "Suggest a track for a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			by, err := a.session.CurrentIdentity(ctx)
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			sg, err := a.sync.CreateSuggestion(ctx, model.NewSuggestion{
				ThreadID:  args[0],
				TrackID:   args[1],
				Reason:    reason,
				Tags:      tags,
				CreatedBy: by,
				TrackData: trackFromFlags(cmd, args[1]),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Suggested %s as %s\n", sg.ID, sg.CreatedBy)
			return nil
		},
	}
	cmd.Flags().StringP("reason", "r", "", "why it has the same vibe")
	cmd.Flags().StringSliceP("tag", "t", nil, "vibe tag (repeatable)")
	addTrackFlags(cmd)
	return cmd
}

func newUpvoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upvote <suggestionId>",
		Short: "Upvote a suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			sg, err := a.sync.Upvote(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s now has %d votes\n", sg.ID, sg.Votes)
			return nil
		},
	}
}
