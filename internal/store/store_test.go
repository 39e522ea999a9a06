package store_test

import (
	"context"
	"errors"
	"testing"

	"datadesk/m/domain"
	"datadesk/m/internal/store"
	"datadesk/m/internal/testutil"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(testutil.OpenDB(t))
}

func TestUserCRUD(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "hash-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 || u.Username != "alice" || u.Role != domain.RoleUser {
		t.Fatalf("unexpected created user: %+v", u)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil || got.Username != "alice" || got.HashedPassword != "hash-1" {
		t.Fatalf("get by id: %v %+v", err, got)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("get by username: %v %+v", err, byName)
	}

	updated, err := s.UpdateUser(ctx, u.ID, "alice2", "hash-2")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "alice2" || updated.HashedPassword != "hash-2" || updated.Role != domain.RoleUser {
		t.Fatalf("unexpected updated user: %+v", updated)
	}

	list, err := s.ListUsers(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUsernameUniqueness(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "bob", "h", domain.RoleUser); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(ctx, "bob", "h", domain.RoleUser); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// Uniqueness is case-sensitive.
	if _, err := s.CreateUser(ctx, "Bob", "h", domain.RoleUser); err != nil {
		t.Fatalf("create Bob: %v", err)
	}

	carol, err := s.CreateUser(ctx, "carol", "h", domain.RoleUser)
	if err != nil {
		t.Fatalf("create carol: %v", err)
	}
	if _, err := s.UpdateUser(ctx, carol.ID, "bob", "h"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on rename, got %v", err)
	}
}

func TestCreateUserRejectsInvalidRole(t *testing.T) {
	s := newStore(t)

	if _, err := s.CreateUser(context.Background(), "eve", "h", domain.Role("owner")); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestMissingUserIsNotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.GetUser(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get by username: %v", err)
	}
	if _, err := s.UpdateUser(ctx, 42, "ghost", "h"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
	if err := s.DeleteUser(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete: %v", err)
	}
}

func TestRoleCounts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	counts, err := s.RoleCounts(ctx)
	if err != nil || len(counts) != 0 {
		t.Fatalf("empty counts: %v %+v", err, counts)
	}

	for _, u := range []struct {
		name string
		role domain.Role
	}{{"a", domain.RoleAdmin}, {"b", domain.RoleUser}, {"c", domain.RoleUser}} {
		if _, err := s.CreateUser(ctx, u.name, "h", u.role); err != nil {
			t.Fatalf("create %s: %v", u.name, err)
		}
	}

	counts, err = s.RoleCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := []store.RoleCount{{Role: domain.RoleAdmin, Count: 1}, {Role: domain.RoleUser, Count: 2}}
	if len(counts) != len(want) {
		t.Fatalf("expected %v, got %v", want, counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, counts)
		}
	}
}

func TestEntryCRUD(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "owner", "h", domain.RoleUser)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	other, err := s.CreateUser(ctx, "other", "h", domain.RoleUser)
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	e, err := s.CreateEntry(ctx, store.EntryInput{Content: `{"a":1}`, Format: "JSON", UserID: owner.ID})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	got, err := s.GetEntry(ctx, e.ID)
	if err != nil || got != e {
		t.Fatalf("get entry: %v %+v != %+v", err, got, e)
	}

	upd, err := s.UpdateEntry(ctx, e.ID, store.EntryInput{Content: "<a/>", Format: "XML", UserID: other.ID})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if upd.Content != "<a/>" || upd.Format != "XML" || upd.UserID != other.ID {
		t.Fatalf("unexpected update: %+v", upd)
	}

	list, err := s.ListEntries(ctx)
	if err != nil || len(list) != 1 || list[0] != upd {
		t.Fatalf("list: %v %+v", err, list)
	}

	if err := s.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetEntry(ctx, e.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteEntry(ctx, e.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := s.UpdateEntry(ctx, e.ID, store.EntryInput{Content: "x", Format: "CSV", UserID: owner.ID}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestEntryRequiresExistingUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.CreateEntry(ctx, store.EntryInput{Content: "x", Format: "CSV", UserID: 404}); !errors.Is(err, store.ErrUnknownUser) {
		t.Fatalf("expected unknown user, got %v", err)
	}

	owner, err := s.CreateUser(ctx, "owner", "h", domain.RoleUser)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	e, err := s.CreateEntry(ctx, store.EntryInput{Content: "x", Format: "CSV", UserID: owner.ID})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := s.UpdateEntry(ctx, e.ID, store.EntryInput{Content: "x", Format: "CSV", UserID: 404}); !errors.Is(err, store.ErrUnknownUser) {
		t.Fatalf("expected unknown user on update, got %v", err)
	}
}

func TestDeleteUserWithEntries(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "owner", "h", domain.RoleUser)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if _, err := s.CreateEntry(ctx, store.EntryInput{Content: "x", Format: "CSV", UserID: owner.ID}); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := s.DeleteUser(ctx, owner.ID); !errors.Is(err, store.ErrUserHasEntries) {
		t.Fatalf("expected user has entries, got %v", err)
	}
}
