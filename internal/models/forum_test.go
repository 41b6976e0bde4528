package models_test

import (
	"testing"

	"github.com/dkoren/drivenet/internal/models"
)

// TestApplyVoteFirstVote tests that a first vote counts once
func TestApplyVoteFirstVote(t *testing.T) {
	thread := &models.Thread{}

	if !thread.ApplyVote("alice", models.VoteUp) {
		t.Fatal("Expected first vote to change the thread")
	}
	if thread.Upvotes != 1 || thread.Downvotes != 0 {
		t.Errorf("Expected 1/0, got %d/%d", thread.Upvotes, thread.Downvotes)
	}
	if thread.Votes["alice"] != models.VoteUp {
		t.Errorf("Expected recorded direction, got %v", thread.Votes["alice"])
	}
}

// TestApplyVoteRepeatIsNoOp tests the same-direction repeat
func TestApplyVoteRepeatIsNoOp(t *testing.T) {
	thread := &models.Thread{}
	thread.ApplyVote("alice", models.VoteUp)

	if thread.ApplyVote("alice", models.VoteUp) {
		t.Error("Expected repeat vote to be a no-op")
	}
	if thread.Upvotes != 1 {
		t.Errorf("Expected upvotes to stay at 1, got %d", thread.Upvotes)
	}
}

// TestApplyVoteSwitch tests that switching adjusts both counters
func TestApplyVoteSwitch(t *testing.T) {
	thread := &models.Thread{}
	thread.ApplyVote("alice", models.VoteUp)

	if !thread.ApplyVote("alice", models.VoteDown) {
		t.Fatal("Expected switch to change the thread")
	}
	if thread.Upvotes != 0 || thread.Downvotes != 1 {
		t.Errorf("Expected 0/1 after switch, got %d/%d", thread.Upvotes, thread.Downvotes)
	}
}

// TestApplyVoteIndependentUsers tests per-user accounting
func TestApplyVoteIndependentUsers(t *testing.T) {
	thread := &models.Thread{}
	thread.ApplyVote("alice", models.VoteUp)
	thread.ApplyVote("bob", models.VoteUp)
	thread.ApplyVote("carol", models.VoteDown)

	if thread.Upvotes != 2 || thread.Downvotes != 1 {
		t.Errorf("Expected 2/1, got %d/%d", thread.Upvotes, thread.Downvotes)
	}
}

// TestApplyVoteInvalidDirection tests rejection of unknown directions
func TestApplyVoteInvalidDirection(t *testing.T) {
	thread := &models.Thread{}

	if thread.ApplyVote("alice", "sideways") {
		t.Error("Expected unknown direction to be rejected")
	}
	if thread.Upvotes != 0 || thread.Downvotes != 0 {
		t.Errorf("Expected untouched counters, got %d/%d", thread.Upvotes, thread.Downvotes)
	}
}

// TestRecordRoundTrip tests the record codec over a thread
func TestRecordRoundTrip(t *testing.T) {
	thread := models.Thread{
		UserID:    "u1",
		Title:     "Winter tires",
		Upvotes:   3,
		Downvotes: 1,
		Votes:     map[string]models.VoteDirection{"alice": models.VoteUp},
	}

	rec, err := models.ToRecord(thread)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if rec["title"] != "Winter tires" {
		t.Errorf("Expected title field, got %v", rec["title"])
	}

	back, err := models.FromRecord[models.Thread](rec)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if back.Title != thread.Title || back.Upvotes != 3 {
		t.Errorf("Round trip mismatch: %+v", back)
	}
	if back.Votes["alice"] != models.VoteUp {
		t.Errorf("Expected votes map to survive, got %+v", back.Votes)
	}
}
