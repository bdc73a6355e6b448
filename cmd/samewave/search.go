package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/samewave/internal/catalog"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/render"
)

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the music catalog",
		Long: `Search through the entity store's proxy. When the store is down the
catalog providers are queried directly with the local configuration.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			tracks, err := a.search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return render.Tracks(a.out, tracks)
		},
	}
	cmd.Flags().IntP("limit", "n", catalog.DefaultLimit, "maximum number of results")
	return cmd
}

func (a *app) search(ctx context.Context, query string, limit int) ([]model.Track, error) {
	tracks, err := a.api.Search(ctx, query, limit)
	if err == nil {
		return tracks, nil
	}
	a.logger.Warn("search proxy unavailable, querying catalog directly")

	gw, gerr := catalog.New(a.cfg.Catalog, &http.Client{}, a.logger)
	if gerr != nil {
		return nil, gerr
	}
	return gw.Search(ctx, query, limit), nil
}
