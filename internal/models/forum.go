package models

// VoteDirection is a user's vote on a thread: upvote or downvote, at most
// one per user.
type VoteDirection string

const (
	VoteUp   VoteDirection = "upvote"
	VoteDown VoteDirection = "downvote"
)

// Thread is a top-level forum post. It owns the nested comments collection
// (threads/{threadId}/comments).
type Thread struct {
	ID          string                   `json:"id,omitempty"`
	UserID      string                   `json:"userId"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Image       string                   `json:"image,omitempty"`
	Upvotes     int                      `json:"upvotes"`
	Downvotes   int                      `json:"downvotes"`
	Votes       map[string]VoteDirection `json:"votes,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
}

// ApplyVote records one user's vote and adjusts the counters. A repeated
// identical vote is a no-op; switching sides decrements the old counter and
// increments the new one. Returns whether anything changed.
//
// The whole votes map plus counters is written back with a single partial
// update, so two users voting at the same instant race last-write-wins and
// can lose an increment. That matches the source behavior; the store layer
// has the transaction primitives if atomic counters are ever wanted.
func (t *Thread) ApplyVote(userID string, dir VoteDirection) bool {
	if dir != VoteUp && dir != VoteDown {
		return false
	}
	if t.Votes == nil {
		t.Votes = make(map[string]VoteDirection)
	}

	prev, voted := t.Votes[userID]
	if voted && prev == dir {
		return false
	}
	if voted {
		switch prev {
		case VoteUp:
			t.Upvotes--
		case VoteDown:
			t.Downvotes--
		}
	}
	t.Votes[userID] = dir
	switch dir {
	case VoteUp:
		t.Upvotes++
	case VoteDown:
		t.Downvotes++
	}
	return true
}

// Comment belongs to a thread and owns the nested replies collection
// (threads/{t}/comments/{c}/replies).
type Comment struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`

	CreatedAt string `json:"createdAt,omitempty"`
}

// Reply belongs to a (thread, comment) pair.
type Reply struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`

	CreatedAt string `json:"createdAt,omitempty"`
}
