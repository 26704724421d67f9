package service

import (
	"testing"

	"github.com/HrushithaL/CyberQuest-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iptr(v int) *int { return &v }

func TestMergeAnswersPreservesRecorded(t *testing.T) {
	existing := []*int{iptr(0), nil, iptr(2)}
	incoming := []*int{nil, iptr(1)}

	merged := MergeAnswers(existing, incoming, 4)

	require.Len(t, merged, 4)
	assert.Equal(t, 0, *merged[0])
	assert.Equal(t, 1, *merged[1])
	assert.Equal(t, 2, *merged[2])
	assert.Nil(t, merged[3])
}

func TestMergeAnswersIncomingLongerThanItemCount(t *testing.T) {
	merged := MergeAnswers(nil, []*int{iptr(3), nil, iptr(1)}, 2)

	require.Len(t, merged, 3)
	assert.Equal(t, 3, *merged[0])
	assert.Nil(t, merged[1])
	assert.Equal(t, 1, *merged[2])
}

func TestMergeSolutions(t *testing.T) {
	existing := map[string]string{"0": "old answer", "1": "kept"}
	incoming := map[string]string{"0": "revised answer", "2": "new"}

	merged := MergeSolutions(existing, incoming)

	assert.Equal(t, map[string]string{
		"0": "revised answer",
		"1": "kept",
		"2": "new",
	}, merged)
}

func TestComputeTrackMonotonic(t *testing.T) {
	prior := model.SubmissionTrack{QuestionsSubmitted: true}

	track := ComputeTrack(prior, []*int{nil, nil, iptr(0)}, nil, 2, 1)

	assert.True(t, track.QuestionsSubmitted)
	assert.True(t, track.ScenariosSubmitted)
	assert.False(t, track.ChallengesSubmitted)
}

func TestComputeTrackChallenges(t *testing.T) {
	track := ComputeTrack(model.SubmissionTrack{}, nil, map[string]string{"0": "sql injection"}, 0, 0)

	assert.False(t, track.QuestionsSubmitted)
	assert.True(t, track.ChallengesSubmitted)
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name       string
		track      model.SubmissionTrack
		questions  int
		scenarios  int
		challenges int
		want       bool
	}{
		{
			name:       "all sections submitted",
			track:      model.SubmissionTrack{QuestionsSubmitted: true, ScenariosSubmitted: true, ChallengesSubmitted: true},
			questions:  2,
			scenarios:  1,
			challenges: 1,
			want:       true,
		},
		{
			name:       "missing challenge section",
			track:      model.SubmissionTrack{QuestionsSubmitted: true, ScenariosSubmitted: true},
			questions:  2,
			scenarios:  1,
			challenges: 1,
			want:       false,
		},
		{
			name:      "absent sections vacuously satisfied",
			track:     model.SubmissionTrack{QuestionsSubmitted: true},
			questions: 2,
			want:      true,
		},
		{
			name: "empty mission is complete",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsComplete(tt.track, tt.questions, tt.scenarios, tt.challenges)
			assert.Equal(t, tt.want, got)
		})
	}
}

func meshContent() model.MissionContent {
	return model.MissionContent{
		Questions:  []model.Question{{Question: "q1", Options: []string{"a", "b"}}},
		Scenarios:  []model.Scenario{{Title: "s1", Options: []string{"a", "b"}}},
		Challenges: []model.Challenge{{Title: "c1"}},
	}
}

func TestApplyMergePartialThenComplete(t *testing.T) {
	content := meshContent()
	progress := &model.MissionProgress{Status: model.StatusNotStarted}

	require.NoError(t, ApplyMerge(progress, []*int{iptr(0)}, nil, content))

	assert.Equal(t, model.StatusInProgress, progress.Status)
	assert.True(t, progress.QuestionsSubmitted)
	assert.False(t, progress.ScenariosSubmitted)
	require.NotNil(t, progress.StartedAt)
	require.NotNil(t, progress.LastPlayed)
	assert.Nil(t, progress.CompletedAt)
	startedAt := *progress.StartedAt

	require.NoError(t, ApplyMerge(progress, []*int{nil, iptr(1)}, map[string]string{"0": "csrf token"}, content))

	assert.Equal(t, model.StatusCompleted, progress.Status)
	require.NotNil(t, progress.CompletedAt)
	completedAt := *progress.CompletedAt

	answers := progress.DecodeAnswers()
	require.Len(t, answers, 2)
	assert.Equal(t, 0, *answers[0])
	assert.Equal(t, 1, *answers[1])

	require.NoError(t, ApplyMerge(progress, []*int{iptr(1)}, nil, content))

	assert.Equal(t, model.StatusCompleted, progress.Status)
	assert.Equal(t, completedAt, *progress.CompletedAt)
	assert.Equal(t, startedAt, *progress.StartedAt)
}

func TestApplyMergeNeverUnanswersQuestions(t *testing.T) {
	content := meshContent()
	progress := &model.MissionProgress{Status: model.StatusNotStarted}

	require.NoError(t, ApplyMerge(progress, []*int{iptr(1), iptr(0)}, nil, content))
	require.NoError(t, ApplyMerge(progress, []*int{nil, nil}, nil, content))

	answers := progress.DecodeAnswers()
	require.Len(t, answers, 2)
	assert.Equal(t, 1, *answers[0])
	assert.Equal(t, 0, *answers[1])
	assert.True(t, progress.QuestionsSubmitted)
	assert.True(t, progress.ScenariosSubmitted)
}

func TestApplyAutosaveReplacesDraft(t *testing.T) {
	progress := &model.MissionProgress{Status: model.StatusNotStarted}
	require.NoError(t, progress.SetAnswers([]*int{iptr(0), iptr(1)}))

	require.NoError(t, ApplyAutosave(progress, []*int{iptr(1)}, nil))

	answers := progress.DecodeAnswers()
	require.Len(t, answers, 1)
	assert.Equal(t, 1, *answers[0])
	assert.Equal(t, model.StatusInProgress, progress.Status)
	assert.NotNil(t, progress.StartedAt)
	assert.Equal(t, map[string]string{}, progress.DecodeSolutions())
}

func TestApplyAutosaveKeepsCompletedStatus(t *testing.T) {
	progress := &model.MissionProgress{Status: model.StatusCompleted}

	require.NoError(t, ApplyAutosave(progress, nil, map[string]string{"0": "draft"}))

	assert.Equal(t, model.StatusCompleted, progress.Status)
}
