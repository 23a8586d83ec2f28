package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/zoomreport/internal/calendar"
	"github.com/nao1215/zoomreport/internal/model"
)

// meetingResult is the outcome of fetching one meeting's participants.
// Exactly one of meeting and err is meaningful.
type meetingResult struct {
	meeting model.Meeting
	err     error
}

// fetchMeetings fetches the participants of every meeting in ids using up
// to g.concurrency goroutines.
//
// Results are stored by index, so their order always matches ids no matter
// which request finishes first. In abort mode the first error cancels the
// remaining requests and is returned. In continue mode per-meeting errors
// are kept in the results and only a cancelled context is returned.
func (g *Generator) fetchMeetings(ctx context.Context, day calendar.Date, ids []string, accountID string) ([]meetingResult, error) {
	results := make([]meetingResult, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, id := range ids {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			g.logger.Debug("fetching participants",
				"day", day.String(),
				"meeting", id,
				"index", i+1,
				"total", len(ids),
			)

			meeting, err := g.fetchMeeting(egCtx, day, id, accountID)
			if err != nil {
				if !g.continueOnError || isCancellation(egCtx, err) {
					return err
				}
				g.logger.Warn("meeting failed", "day", day.String(), "meeting", id, "error", err)
				results[i] = meetingResult{err: err}
				return nil
			}

			results[i] = meetingResult{meeting: meeting}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// fetchMeeting fetches one participant list and tags each record with its
// meeting and day.
func (g *Generator) fetchMeeting(ctx context.Context, day calendar.Date, id, accountID string) (model.Meeting, error) {
	participantsURL, err := g.source.ParticipantsURL(id, accountID)
	if err != nil {
		return model.Meeting{}, err
	}

	attendees, err := g.source.Participants(ctx, participantsURL)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("failed to fetch participants of meeting %s: %w", id, err)
	}

	for i := range attendees {
		attendees[i].MeetingID = id
		attendees[i].Day = day.String()
	}

	return model.Meeting{ID: id, Day: day.String(), Attendees: attendees}, nil
}
