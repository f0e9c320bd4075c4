package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var ratingCols = []string{"id", "user_id", "username", "tmdb_movie_id", "score", "comment", "created_at"}

func TestUpsertReportsInsertAndUpdate(t *testing.T) {
	cases := []struct {
		name     string
		affected int64
		created  bool
	}{
		{"insert", 1, true},
		{"update", 2, false},
		{"unchanged", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			comment := "great"
			mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE score=VALUES(score), comment=VALUES(comment)")).
				WithArgs(sqlmock.AnyArg(), "u1", int64(550), 8, sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))
			mock.ExpectQuery(regexp.QuoteMeta("WHERE r.user_id=? AND r.tmdb_movie_id=?")).
				WithArgs("u1", int64(550)).
				WillReturnRows(sqlmock.NewRows(ratingCols).AddRow("r1", "u1", "alice", int64(550), 8, comment, time.Now()))

			rt, created, err := NewRatingRepo(db).Upsert(context.Background(), "u1", 550, 8, &comment)
			if err != nil {
				t.Fatal(err)
			}
			if created != tc.created {
				t.Errorf("created = %v, want %v", created, tc.created)
			}
			if rt.Score != 8 || rt.Comment == nil || *rt.Comment != "great" || rt.Username != "alice" {
				t.Errorf("unexpected rating: %+v", rt)
			}
		})
	}
}

func TestUpsertNullComment(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO ratings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM ratings r").
		WillReturnRows(sqlmock.NewRows(ratingCols).AddRow("r1", "u1", "alice", int64(1), 0, nil, time.Now()))

	rt, _, err := NewRatingRepo(db).Upsert(context.Background(), "u1", 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rt.Comment != nil {
		t.Fatalf("comment = %q, want nil", *rt.Comment)
	}
}

func TestTopRated(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY average_rating DESC")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"tmdb_movie_id", "average_rating", "rating_count"}).
			AddRow(int64(10), 9.5, 2).
			AddRow(int64(11), 7.0, 1))

	top, err := NewRatingRepo(db).TopRated(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].TMDBMovieID != 10 || top[0].AverageRating != 9.5 || top[0].RatingCount != 2 {
		t.Fatalf("unexpected top: %+v", top)
	}
}

func TestLatestUsesLimit(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY r.created_at DESC")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(ratingCols))

	out, err := NewRatingRepo(db).Latest(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", out)
	}
}

func TestUnratedForUser(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	mock.ExpectQuery("NOT EXISTS").
		WithArgs("u1", sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), "u1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"tmdb_movie_id", "last_session", "room_id"}).
			AddRow(int64(42), at, "room-9"))

	out, err := NewRatingRepo(db).UnratedForUser(context.Background(), "u1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].RoomID != "room-9" || !out[0].SessionDatetime.Equal(at) {
		t.Fatalf("unexpected: %+v", out)
	}
}
