package service

import (
	"time"

	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
)

// MergeAnswers reconciles an incoming sparse answers array with the
// already-recorded one. An incoming nil entry never overwrites a
// recorded answer; the merged array spans the mission's full
// question+scenario index space so later lookups never go out of
// range.
func MergeAnswers(existing, incoming []*int, itemCount int) []*int {
	length := itemCount
	if len(existing) > length {
		length = len(existing)
	}
	if len(incoming) > length {
		length = len(incoming)
	}

	merged := make([]*int, length)
	copy(merged, existing)
	for i, v := range incoming {
		if v != nil {
			merged[i] = v
		}
	}
	return merged
}

// MergeSolutions unions challenge submissions by index key. Incoming
// keys overwrite: an explicit re-submission replaces prior work, while
// keys the new submission omits are preserved.
func MergeSolutions(existing, incoming map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

// ComputeTrack derives section-submission flags from merged data and
// ORs them against the prior flags so they stay monotonic.
func ComputeTrack(prior model.SubmissionTrack, merged []*int, solutions map[string]string, questionCount, scenarioCount int) model.SubmissionTrack {
	track := prior

	for i := 0; i < questionCount && i < len(merged); i++ {
		if merged[i] != nil {
			track.QuestionsSubmitted = true
			break
		}
	}
	for i := questionCount; i < questionCount+scenarioCount && i < len(merged); i++ {
		if merged[i] != nil {
			track.ScenariosSubmitted = true
			break
		}
	}
	if len(solutions) > 0 {
		track.ChallengesSubmitted = true
	}
	return track
}

// IsComplete reports whether every section the mission actually
// contains has been submitted; absent sections are vacuously
// satisfied.
func IsComplete(track model.SubmissionTrack, questionCount, scenarioCount, challengeCount int) bool {
	if questionCount > 0 && !track.QuestionsSubmitted {
		return false
	}
	if scenarioCount > 0 && !track.ScenariosSubmitted {
		return false
	}
	if challengeCount > 0 && !track.ChallengesSubmitted {
		return false
	}
	return true
}

// ApplyMerge folds one submission into a progress record: merge,
// recompute flags, advance the status machine. completedAt is written
// exactly once, on the transition into completed; lastPlayed moves on
// every merge.
func ApplyMerge(progress *model.MissionProgress, incoming []*int, incomingSolutions map[string]string, content model.MissionContent) error {
	questionCount := len(content.Questions)
	scenarioCount := len(content.Scenarios)
	challengeCount := len(content.Challenges)

	merged := MergeAnswers(progress.DecodeAnswers(), incoming, questionCount+scenarioCount)
	solutions := MergeSolutions(progress.DecodeSolutions(), incomingSolutions)

	if err := progress.SetAnswers(merged); err != nil {
		return err
	}
	if err := progress.SetSolutions(solutions); err != nil {
		return err
	}

	track := ComputeTrack(progress.Track(), merged, solutions, questionCount, scenarioCount)
	progress.QuestionsSubmitted = track.QuestionsSubmitted
	progress.ScenariosSubmitted = track.ScenariosSubmitted
	progress.ChallengesSubmitted = track.ChallengesSubmitted

	now := time.Now()
	if progress.StartedAt == nil {
		progress.StartedAt = &now
	}
	progress.LastPlayed = &now

	if IsComplete(track, questionCount, scenarioCount, challengeCount) {
		if progress.Status != model.StatusCompleted {
			progress.Status = model.StatusCompleted
			progress.CompletedAt = &now
		}
	} else if progress.Status != model.StatusCompleted {
		progress.Status = model.StatusInProgress
	}
	return nil
}

// ApplyAutosave records the user's current draft wholesale. It never
// downgrades a completed record and sets the start timestamp only
// once.
func ApplyAutosave(progress *model.MissionProgress, answers []*int, solutions map[string]string) error {
	if err := progress.SetAnswers(answers); err != nil {
		return err
	}
	if solutions == nil {
		solutions = map[string]string{}
	}
	if err := progress.SetSolutions(solutions); err != nil {
		return err
	}

	if progress.Status != model.StatusCompleted {
		progress.Status = model.StatusInProgress
	}

	now := time.Now()
	if progress.StartedAt == nil {
		progress.StartedAt = &now
	}
	progress.LastPlayed = &now
	return nil
}
