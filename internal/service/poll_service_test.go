package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newPollService(t *testing.T) (*PollService, *repository.EntityStore) {
	t.Helper()
	store := newSeededStore(t)
	return NewPollService(store, nil, nil), store
}

func pollByID(t *testing.T, store *repository.EntityStore, id string) models.Poll {
	t.Helper()
	for _, p := range store.Polls() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("poll %s not found", id)
	return models.Poll{}
}

func assertVotesMatchVoters(t *testing.T, poll models.Poll) {
	t.Helper()
	for _, option := range poll.Options {
		assert.Equal(t, len(option.Voters), option.Votes, "option %s", option.ID)
	}
}

func TestPollCastVoteMovesPreviousVote(t *testing.T) {
	svc, store := newPollService(t)
	ctx := context.Background()
	student := studentClaims()

	poll, err := svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "1"}, student)
	require.NoError(t, err)
	assert.Equal(t, 4, poll.Options[0].Votes)
	assert.Contains(t, poll.Options[0].Voters, "2")

	poll, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "3"}, student)
	require.NoError(t, err)
	assert.Equal(t, 3, poll.Options[0].Votes)
	assert.NotContains(t, poll.Options[0].Voters, "2")
	assert.Equal(t, 5, poll.Options[2].Votes)
	assert.Equal(t, 10, poll.TotalVotes())

	stored := pollByID(t, store, "1")
	assertVotesMatchVoters(t, stored)
	voted, ok := stored.VotedOption("2")
	require.True(t, ok)
	assert.Equal(t, "3", voted)
}

func TestPollCastVoteSameOptionTwiceKeepsOneVote(t *testing.T) {
	svc, store := newPollService(t)
	ctx := context.Background()

	_, err := svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "2"}, studentClaims())
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "2"}, studentClaims())
	require.NoError(t, err)

	stored := pollByID(t, store, "1")
	assert.Equal(t, 3, stored.Options[1].Votes)
	assertVotesMatchVoters(t, stored)
}

func TestPollCastVoteRejections(t *testing.T) {
	svc, store := newPollService(t)
	ctx := context.Background()

	_, err := svc.CastVote(ctx, "3", dto.CastVoteRequest{OptionID: "7"}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden), "poll 3 targets semester 8: %v", err)

	_, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "99"}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.CastVote(ctx, "42", dto.CastVoteRequest{OptionID: "1"}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Close(ctx, "1", professorClaims("3"))
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "1"}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
	assert.Equal(t, 9, pollByID(t, store, "1").TotalVotes())
}

func TestPollCastVoteAfterEndDateIsInvalidState(t *testing.T) {
	store := repository.NewEntityStore(repository.WithClock(func() time.Time { return fixedNow.Add(4 * 24 * time.Hour) }))
	require.NoError(t, repository.SeedDemoData(store))
	svc := NewPollService(store, nil, nil)

	// Seeded relative to the later clock, so move the end date into the past.
	require.NoError(t, store.Update(func(tx *repository.Tx) error {
		p, err := tx.Poll("1")
		if err != nil {
			return err
		}
		p.EndDate = tx.Now().Add(-time.Minute)
		return tx.SavePoll(p)
	}))

	_, err := svc.CastVote(context.Background(), "1", dto.CastVoteRequest{OptionID: "1"}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestPollCreate(t *testing.T) {
	svc, store := newPollService(t)
	ctx := context.Background()
	req := dto.CreatePollRequest{
		CourseID:    "7",
		Title:       "Lab slot",
		Description: "Pick a lab slot",
		Options: []dto.PollOptionInput{
			{Day: models.Monday, StartTime: "15:00", EndTime: "17:00", Room: "Lab-303"},
			{Day: models.Friday, StartTime: "09:00", EndTime: "11:00", Room: "Lab-303"},
		},
		EndDate: fixedNow.Add(48 * time.Hour),
	}

	poll, err := svc.Create(ctx, req, professorClaims("3"))
	require.NoError(t, err)
	assert.True(t, poll.IsActive)
	assert.Equal(t, "3", poll.ProfessorID)
	require.Len(t, poll.Options, 2)
	for _, option := range poll.Options {
		assert.NotEmpty(t, option.ID)
		assert.Zero(t, option.Votes)
		assert.Empty(t, option.Voters)
	}
	assert.Len(t, store.Polls(), 4)

	single := req
	single.Options = req.Options[:1]
	_, err = svc.Create(ctx, single, professorClaims("3"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	blankTitle := req
	blankTitle.Title = "   "
	_, err = svc.Create(ctx, blankTitle, professorClaims("3"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	blankDescription := req
	blankDescription.Description = "\n"
	_, err = svc.Create(ctx, blankDescription, professorClaims("3"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	past := req
	past.EndDate = fixedNow.Add(-time.Hour)
	_, err = svc.Create(ctx, past, professorClaims("3"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, req, professorClaims("4"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Create(ctx, req, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Len(t, store.Polls(), 4)
}

func TestPollCloseAndList(t *testing.T) {
	svc, _ := newPollService(t)
	ctx := context.Background()

	_, err := svc.Close(ctx, "1", professorClaims("4"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	open, err := svc.List(ctx, dto.PollQuery{}, studentClaims())
	require.NoError(t, err)
	require.Len(t, open, 2)

	closed, err := svc.Close(ctx, "2", adminClaims())
	require.NoError(t, err)
	assert.False(t, closed.IsActive)

	open, err = svc.List(ctx, dto.PollQuery{}, studentClaims())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "1", open[0].ID)

	withEnded, err := svc.List(ctx, dto.PollQuery{IncludeEnded: true}, studentClaims())
	require.NoError(t, err)
	assert.Len(t, withEnded, 2)

	own, err := svc.List(ctx, dto.PollQuery{CourseID: "6"}, professorClaims("3"))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "3", own[0].ID)
}

func TestPollGetTally(t *testing.T) {
	svc, _ := newPollService(t)

	poll, tally, err := svc.Get(context.Background(), "1", studentClaims())
	require.NoError(t, err)
	assert.Equal(t, "1", poll.ID)
	assert.Equal(t, 9, tally.TotalVotes)
	require.Len(t, tally.Options, 3)
	assert.Equal(t, 33, tally.Options[0].Percentage)
	assert.Equal(t, 22, tally.Options[1].Percentage)
	assert.Equal(t, 44, tally.Options[2].Percentage)

	_, _, err = svc.Get(context.Background(), "1", professorClaims("5"))
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestPollOfDeletedCourseIsClosedToEveryone(t *testing.T) {
	svc, store := newPollService(t)
	ctx := context.Background()
	_, err := store.DeleteCourse("1")
	require.NoError(t, err)

	outsider := &models.JWTClaims{UserID: "77", Role: models.RoleStudent, Department: "Physics", Semester: 2}
	_, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "1"}, outsider)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden), "got %v", err)
	_, _, err = svc.Get(ctx, "1", outsider)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.CastVote(ctx, "1", dto.CastVoteRequest{OptionID: "1"}, studentClaims())
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	listed, err := svc.List(ctx, dto.PollQuery{IncludeEnded: true}, outsider)
	require.NoError(t, err)
	assert.Empty(t, listed)

	stored := pollByID(t, store, "1")
	assert.False(t, stored.IsActive)
	assert.Equal(t, 9, stored.TotalVotes())
}

func TestPollConcurrentVotesKeepOneVotePerUser(t *testing.T) {
	svc, store := newPollService(t)
	const users, rounds = 10, 5
	options := []string{"1", "2", "3"}

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		actor := &models.JWTClaims{UserID: fmt.Sprintf("cs6-%d", u), Role: models.RoleStudent, Department: "Computer Science", Semester: 6}
		for r := 0; r < rounds; r++ {
			wg.Add(1)
			go func(actor *models.JWTClaims, option string) {
				defer wg.Done()
				_, err := svc.CastVote(context.Background(), "1", dto.CastVoteRequest{OptionID: option}, actor)
				assert.NoError(t, err)
			}(actor, options[(u+r)%len(options)])
		}
	}
	wg.Wait()

	poll := pollByID(t, store, "1")
	assertVotesMatchVoters(t, poll)
	assert.Equal(t, 9+users, poll.TotalVotes())

	seen := map[string]int{}
	for _, option := range poll.Options {
		for _, voter := range option.Voters {
			seen[voter]++
		}
	}
	for voter, n := range seen {
		assert.Equal(t, 1, n, "voter %s", voter)
	}
}
