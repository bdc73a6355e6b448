// Package render prints the client's views as plain-text tables. Missing
// track snapshots and dangling thread references render as placeholders
// instead of failing.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sakif/samewave/internal/model"
)

const (
	ThreadTrackNotFound = "Thread track not found"
	TrackNotFound       = "Track not found"
)

// CoverHue is the placeholder cover colour for a title: the sum of its code
// points mod 360. An empty title hashes as "default".
func CoverHue(title string) int {
	if title == "" {
		title = "default"
	}
	sum := 0
	for _, r := range title {
		sum += int(r)
	}
	return sum % 360
}

// CoverColor formats CoverHue as a CSS colour.
func CoverColor(title string) string {
	return fmt.Sprintf("hsl(%d 70%% 82%%)", CoverHue(title))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// trackLabel is "Title - Artist (Year)", or placeholder when t is nil.
func trackLabel(t *model.Track, placeholder string) string {
	if t == nil {
		return placeholder
	}
	label := t.Title
	if t.Artist != "" {
		label += " - " + t.Artist
	}
	if t.Year != "" {
		label += " (" + t.Year + ")"
	}
	return label
}

func cover(t *model.Track) string {
	if t != nil && t.CoverURL != "" {
		return t.CoverURL
	}
	title := ""
	if t != nil {
		title = t.Title
	}
	return CoverColor(title)
}

func tags(ts []string) string {
	if len(ts) == 0 {
		return "-"
	}
	return strings.Join(ts, ", ")
}

// Tracks prints search results.
func Tracks(w io.Writer, tracks []model.Track) error {
	if len(tracks) == 0 {
		_, err := fmt.Fprintln(w, "No tracks found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tARTIST\tYEAR\tPREVIEW")
	for _, t := range tracks {
		preview := "-"
		if t.PreviewURL != "" {
			preview = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Artist, orDash(t.Year), preview)
	}
	return tw.Flush()
}

// Threads prints the thread list with the number of suggestions each has.
func Threads(w io.Writer, threads []model.Thread, suggestions []model.Suggestion) error {
	if len(threads) == 0 {
		_, err := fmt.Fprintln(w, "No threads yet.")
		return err
	}
	counts := make(map[string]int, len(threads))
	for _, s := range suggestions {
		counts[s.ThreadID]++
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTRACK\tTAGS\tBY\tSUGGESTIONS")
	for _, t := range threads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			t.ID, trackLabel(t.TrackData, ThreadTrackNotFound), tags(t.Tags), t.CreatedBy, counts[t.ID])
	}
	return tw.Flush()
}

// Thread prints one thread and its suggestions in the order given, which
// callers rank beforehand.
func Thread(w io.Writer, thread model.Thread, ranked []model.Suggestion) error {
	fmt.Fprintf(w, "%s\n", trackLabel(thread.TrackData, ThreadTrackNotFound))
	fmt.Fprintf(w, "  id: %s  by: %s  on: %s\n", thread.ID, thread.CreatedBy, thread.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "  tags: %s  cover: %s\n\n", tags(thread.Tags), cover(thread.TrackData))

	if len(ranked) == 0 {
		_, err := fmt.Fprintln(w, "No suggestions yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "VOTES\tID\tTRACK\tREASON\tBY")
	for _, s := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.Votes, s.ID, trackLabel(s.TrackData, TrackNotFound), orDash(s.Reason), s.CreatedBy)
	}
	return tw.Flush()
}

// Profile prints an identity's contribution counts and its suggestions,
// each next to the thread it answers.
func Profile(w io.Writer, handle string, threadCount int, mine []model.Suggestion, threads []model.Thread) error {
	byID := make(map[string]model.Thread, len(threads))
	for _, t := range threads {
		byID[t.ID] = t
	}

	fmt.Fprintf(w, "%s\n  threads: %d  suggestions: %d\n", handle, threadCount, len(mine))
	if len(mine) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "SUGGESTED\tFOR THREAD\tVOTES")
	for _, s := range mine {
		var threadTrack *model.Track
		if t, ok := byID[s.ThreadID]; ok {
			threadTrack = t.TrackData
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n",
			trackLabel(s.TrackData, TrackNotFound), trackLabel(threadTrack, ThreadTrackNotFound), s.Votes)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
