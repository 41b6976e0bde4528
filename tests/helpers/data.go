// Copyright (c) 2026 Daniel Koren <dan@dkoren.dev>
//
// This file is part of drivenet.
// drivenet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// drivenet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with drivenet.
// If not, see <https://www.gnu.org/licenses/>.

package helpers

import (
	"context"
	"testing"

	"github.com/dkoren/drivenet/internal/models"
	"github.com/dkoren/drivenet/internal/store"
)

// SeedUser inserts a user document and returns its id
func SeedUser(t *testing.T, s store.Store, user models.User) string {
	t.Helper()
	return seed(t, s, store.MustPath("users"), user)
}

// SeedCar inserts a car document and returns its id
func SeedCar(t *testing.T, s store.Store, car models.Car) string {
	t.Helper()
	return seed(t, s, store.MustPath("cars"), car)
}

// SeedFuelLog inserts a fuel log document under a car and returns its id
func SeedFuelLog(t *testing.T, s store.Store, carID string, log models.FuelLog) string {
	t.Helper()
	return seed(t, s, store.MustPath("cars", carID, "logs"), log)
}

// SeedThread inserts a thread document and returns its id
func SeedThread(t *testing.T, s store.Store, thread models.Thread) string {
	t.Helper()
	return seed(t, s, store.MustPath("threads"), thread)
}

// SeedComment inserts a comment document under a thread and returns its id
func SeedComment(t *testing.T, s store.Store, threadID string, comment models.Comment) string {
	t.Helper()
	return seed(t, s, store.MustPath("threads", threadID, "comments"), comment)
}

// SeedReply inserts a reply document under a comment and returns its id
func SeedReply(t *testing.T, s store.Store, threadID, commentID string, reply models.Reply) string {
	t.Helper()
	return seed(t, s, store.MustPath("threads", threadID, "comments", commentID, "replies"), reply)
}

func seed(t *testing.T, s store.Store, path store.Path, v any) string {
	t.Helper()
	rec, err := models.ToRecord(v)
	if err != nil {
		t.Fatalf("Failed to encode seed document: %v", err)
	}
	id, err := s.Add(context.Background(), path, rec)
	if err != nil {
		t.Fatalf("Failed to seed document at %s: %v", path, err)
	}
	return id
}
