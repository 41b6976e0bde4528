package binding

import (
	"github.com/dkoren/drivenet/internal/models"
	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/store"
)

// Collection path templates for the two entity trees.
var (
	usersTemplate   = store.MustTemplate("users")
	carsTemplate    = store.MustTemplate("cars")
	threadsTemplate = store.MustTemplate("threads")

	logsTemplate     = store.MustTemplate("cars", "*", "logs")
	commentsTemplate = store.MustTemplate("threads", "*", "comments")
	repliesTemplate  = store.MustTemplate("threads", "*", "comments", "*", "replies")
)

// Users binds the flat users collection, poll-on-mutation.
func Users(s store.Store, sink *observe.Sink) (*Binding[models.User], error) {
	return New(Config[models.User]{
		Store:    s,
		Sink:     sink,
		Template: usersTemplate,
		Strategy: PollOnMutation,
		Decode:   models.FromRecord[models.User],
		Encode:   func(u models.User) (store.Record, error) { return models.ToRecord(u) },
		ID:       func(u models.User) string { return u.ID },
	})
}

// Cars binds the flat cars collection, poll-on-mutation.
func Cars(s store.Store, sink *observe.Sink) (*Binding[models.Car], error) {
	return New(Config[models.Car]{
		Store:    s,
		Sink:     sink,
		Template: carsTemplate,
		Strategy: PollOnMutation,
		Decode:   models.FromRecord[models.Car],
		Encode:   func(c models.Car) (store.Record, error) { return models.ToRecord(c) },
		ID:       func(c models.Car) string { return c.ID },
	})
}

// Threads binds the flat threads collection, poll-on-mutation, newest first.
func Threads(s store.Store, sink *observe.Sink) (*Binding[models.Thread], error) {
	return New(Config[models.Thread]{
		Store:    s,
		Sink:     sink,
		Template: threadsTemplate,
		Order:    &store.Order{Field: store.CreatedAtField, Desc: true},
		Strategy: PollOnMutation,
		Decode:   models.FromRecord[models.Thread],
		Encode:   func(t models.Thread) (store.Record, error) { return models.ToRecord(t) },
		ID:       func(t models.Thread) string { return t.ID },
	})
}

// FuelLogs binds one car's nested logs collection, live, ordered by log
// date.
func FuelLogs(s store.Store, sink *observe.Sink, carID string) (*Binding[models.FuelLog], error) {
	return New(Config[models.FuelLog]{
		Store:     s,
		Sink:      sink,
		Template:  logsTemplate,
		Ancestors: []string{carID},
		Order:     &store.Order{Field: "date"},
		Strategy:  Live,
		Decode:    models.FromRecord[models.FuelLog],
		Encode:    func(l models.FuelLog) (store.Record, error) { return models.ToRecord(l) },
		ID:        func(l models.FuelLog) string { return l.ID },
	})
}

// Comments binds one thread's nested comments collection, live, oldest
// first.
func Comments(s store.Store, sink *observe.Sink, threadID string) (*Binding[models.Comment], error) {
	return New(Config[models.Comment]{
		Store:     s,
		Sink:      sink,
		Template:  commentsTemplate,
		Ancestors: []string{threadID},
		Order:     &store.Order{Field: store.CreatedAtField},
		Strategy:  Live,
		Decode:    models.FromRecord[models.Comment],
		Encode:    func(c models.Comment) (store.Record, error) { return models.ToRecord(c) },
		ID:        func(c models.Comment) string { return c.ID },
	})
}

// Replies binds one comment's nested replies collection, live, oldest
// first.
func Replies(s store.Store, sink *observe.Sink, threadID, commentID string) (*Binding[models.Reply], error) {
	return New(Config[models.Reply]{
		Store:     s,
		Sink:      sink,
		Template:  repliesTemplate,
		Ancestors: []string{threadID, commentID},
		Order:     &store.Order{Field: store.CreatedAtField},
		Strategy:  Live,
		Decode:    models.FromRecord[models.Reply],
		Encode:    func(r models.Reply) (store.Record, error) { return models.ToRecord(r) },
		ID:        func(r models.Reply) string { return r.ID },
	})
}
