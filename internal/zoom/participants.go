package zoom

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/zoomreport/internal/model"
)

// participantList is the JSON document returned by the participant endpoint.
// Attendees is a pointer so a missing or null key can be told apart from an
// empty list.
type participantList struct {
	Attendees *[]participant `json:"attendees"`
}

// participant is one entry of the attendees array. Fields are pointers so
// that a missing key is reported instead of silently becoming a zero value.
type participant struct {
	ID           *string  `json:"id"`
	Name         *string  `json:"name"`
	Duration     *float64 `json:"duration"`
	JoinTimeStr  *string  `json:"joinTimeStr"`
	LeaveTimeStr *string  `json:"leaveTimeStr"`
}

// ParseParticipants decodes a participant list response into attendee
// records, preserving the order of the attendees array.
//
// The duration is converted from seconds to whole minutes, rounding up.
func ParseParticipants(r io.Reader) ([]model.Attendee, error) {
	var list participantList
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, err
	}
	if list.Attendees == nil {
		return nil, ErrAttendeesMissing
	}

	attendees := make([]model.Attendee, 0, len(*list.Attendees))
	for i, p := range *list.Attendees {
		a, err := p.toAttendee()
		if err != nil {
			return nil, fmt.Errorf("attendee %d: %w", i, err)
		}
		attendees = append(attendees, a)
	}

	return attendees, nil
}

// toAttendee normalizes a participant into an attendee record.
func (p participant) toAttendee() (model.Attendee, error) {
	switch {
	case p.ID == nil:
		return model.Attendee{}, fmt.Errorf("%w: id", ErrMissingField)
	case p.Name == nil:
		return model.Attendee{}, fmt.Errorf("%w: name", ErrMissingField)
	case p.Duration == nil:
		return model.Attendee{}, fmt.Errorf("%w: duration", ErrMissingField)
	case p.JoinTimeStr == nil:
		return model.Attendee{}, fmt.Errorf("%w: joinTimeStr", ErrMissingField)
	case p.LeaveTimeStr == nil:
		return model.Attendee{}, fmt.Errorf("%w: leaveTimeStr", ErrMissingField)
	}

	return model.Attendee{
		ID:        *p.ID,
		Name:      *p.Name,
		Duration:  model.DurationMinutes(*p.Duration),
		JoinTime:  *p.JoinTimeStr,
		LeaveTime: *p.LeaveTimeStr,
	}, nil
}
