package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/render"
)

// DefaultTag is applied to a new thread when no tag is given.
const DefaultTag = "Chill"

func newThreadsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List threads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return render.Threads(a.out, a.sync.Threads(), a.sync.Suggestions())
		},
	}
}

func newThreadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thread",
		Short: "Create or show a thread",
	}
	cmd.AddCommand(newThreadNewCmd(a), newThreadShowCmd(a))
	return cmd
}

func newThreadNewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <trackId>",
		Short: "Open a thread on a seed track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			by, err := a.session.CurrentIdentity(ctx)
			if err != nil {
				return err
			}

			tags, _ := cmd.Flags().GetStringSlice("tag")
			if len(tags) == 0 {
				tags = []string{DefaultTag}
			}

			th, err := a.sync.CreateThread(ctx, model.NewThread{
				SeedTrackID: args[0],
				Tags:        tags,
				CreatedBy:   by,
				TrackData:   trackFromFlags(cmd, args[0]),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created thread %s\n", th.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceP("tag", "t", nil, "vibe tag (repeatable, default "+DefaultTag+")")
	addTrackFlags(cmd)
	return cmd
}

func newThreadShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <threadId>",
		Short: "Show a thread and its ranked suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			th, ok := a.sync.Thread(args[0])
			if !ok {
				return apperror.NotFound("thread", args[0])
			}
			return render.Thread(a.out, th, a.sync.RankedSuggestions(th.ID))
		},
	}
}

// addTrackFlags lets the user attach a track snapshot to what they create.
func addTrackFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "track title")
	cmd.Flags().String("artist", "", "track artist")
	cmd.Flags().String("year", "", "release year")
}

// trackFromFlags returns nil when no title was given.
func trackFromFlags(cmd *cobra.Command, id string) *model.Track {
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		return nil
	}
	artist, _ := cmd.Flags().GetString("artist")
	year, _ := cmd.Flags().GetString("year")
	return &model.Track{ID: id, Title: title, Artist: artist, Year: year}
}
