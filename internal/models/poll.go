package models

import (
	"math"
	"time"
)

// Poll is a professor-created vote among candidate time slots.
type Poll struct {
	ID          string       `json:"id"`
	ProfessorID string       `json:"professorId"`
	CourseID    string       `json:"courseId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Options     []PollOption `json:"options"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	EndDate     time.Time    `json:"endDate"`
}

// PollOption is one candidate schedule alternative within a poll.
type PollOption struct {
	ID        string   `json:"id"`
	Day       Weekday  `json:"day"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Room      string   `json:"room"`
	Votes     int      `json:"votes"`
	Voters    []string `json:"voters"`
}

// IsOpen is the single source of truth for whether a poll accepts votes.
func (p Poll) IsOpen(now time.Time) bool {
	return p.IsActive && !now.After(p.EndDate)
}

// Option returns the index of the option with the given id, or -1.
func (p Poll) Option(optionID string) int {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

// VotedOption returns the option id the user currently votes for.
func (p Poll) VotedOption(userID string) (string, bool) {
	for _, option := range p.Options {
		for _, voter := range option.Voters {
			if voter == userID {
				return option.ID, true
			}
		}
	}
	return "", false
}

// TotalVotes sums option vote counts.
func (p Poll) TotalVotes() int {
	total := 0
	for _, option := range p.Options {
		total += option.Votes
	}
	return total
}

// Clone deep-copies the poll so callers never share option slices with the store.
func (p Poll) Clone() Poll {
	cp := p
	cp.Options = make([]PollOption, len(p.Options))
	for i, option := range p.Options {
		option.Voters = append([]string(nil), option.Voters...)
		if option.Voters == nil {
			option.Voters = []string{}
		}
		cp.Options[i] = option
	}
	return cp
}

// PollTally summarises votes per option.
type PollTally struct {
	PollID     string            `json:"pollId"`
	TotalVotes int               `json:"totalVotes"`
	Options    []PollOptionTally `json:"options"`
}

// PollOptionTally is the vote share of one option.
type PollOptionTally struct {
	OptionID   string `json:"optionId"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// Tally computes totals and rounded percentages; every percentage is 0 when nobody voted.
func (p Poll) Tally() PollTally {
	total := p.TotalVotes()
	tally := PollTally{PollID: p.ID, TotalVotes: total, Options: make([]PollOptionTally, 0, len(p.Options))}
	for _, option := range p.Options {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(option.Votes) / float64(total) * 100))
		}
		tally.Options = append(tally.Options, PollOptionTally{OptionID: option.ID, Votes: option.Votes, Percentage: pct})
	}
	return tally
}
