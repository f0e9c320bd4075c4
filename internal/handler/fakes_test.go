package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/utils"
)

var (
	admin = model.User{ID: "admin", Username: "alice", Email: "alice@example.com", Role: model.RoleAdmin, Status: model.StatusActive}
	bob   = model.User{ID: "bob", Username: "bob", Email: "bob@example.com", Role: model.RoleUser, Status: model.StatusActive}
)

// call runs h behind a route registered at path.  When as is not nil the
// request is authenticated as that user.
func call(t *testing.T, h echo.HandlerFunc, method, path, target, body string, as *model.User) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var mws []echo.MiddlewareFunc
	if as != nil {
		u := *as
		mws = append(mws, func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				claims := &utils.Claims{}
				claims.ID = "jti-" + u.ID
				claims.Subject = u.ID
				claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
				middleware.SetIdentity(c, u, claims)
				return next(c)
			}
		})
	}
	e.Add(method, path, h, mws...)

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, want, rec.Body.String())
	}
}

// fakeUsers is an in-memory user directory.
type fakeUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, status string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.users {
		if status == "" || u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateStatus(_ context.Context, id, status string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			f.users[i].Status = status
			return f.users[i], nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			if u.IsAdmin() {
				return repository.ErrAdminProtected
			}
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeRatings keeps one rating per (user, movie).
type fakeRatings struct {
	mu      sync.Mutex
	ratings map[string]model.Rating
	unrated []model.UnratedMovie
}

func newFakeRatings() *fakeRatings { return &fakeRatings{ratings: map[string]model.Rating{}} }

func (f *fakeRatings) Upsert(_ context.Context, userID string, movieID int64, score int, comment *string) (model.Rating, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + strconv.FormatInt(movieID, 10)
	r, exists := f.ratings[key]
	if !exists {
		r = model.Rating{ID: key, UserID: userID, TMDBMovieID: movieID, CreatedAt: time.Now()}
	}
	r.Score, r.Comment = score, comment
	f.ratings[key] = r
	return r, !exists, nil
}

func (f *fakeRatings) ListForMovie(_ context.Context, movieID int64) ([]model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Rating{}
	for _, r := range f.ratings {
		if r.TMDBMovieID == movieID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatings) TopRated(context.Context, int) ([]model.TopMovie, error) {
	return []model.TopMovie{}, nil
}

func (f *fakeRatings) Latest(_ context.Context, limit int) ([]model.Rating, error) {
	return []model.Rating{}, nil
}

func (f *fakeRatings) UnratedForUser(_ context.Context, _ string, limit int) ([]model.UnratedMovie, error) {
	if len(f.unrated) > limit {
		return f.unrated[:limit], nil
	}
	return f.unrated, nil
}

// fakeRooms mirrors the ownership and membership rules of RoomRepo.
type fakeRooms struct {
	mu    sync.Mutex
	rooms map[string]*model.RoomDetail
	seq   int
	limit int // last limit passed to ListUpcoming
	asked string
}

func newFakeRooms() *fakeRooms { return &fakeRooms{rooms: map[string]*model.RoomDetail{}} }

func (f *fakeRooms) Create(_ context.Context, ownerID string, movieID int64, at time.Time, private bool) (model.RoomDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "room-" + strconv.Itoa(f.seq)
	d := &model.RoomDetail{
		Room:    model.Room{ID: id, OwnerID: ownerID, TMDBMovieID: movieID, SessionDatetime: at, IsPrivate: private},
		Owner:   model.UserRef{ID: ownerID, Username: ownerID},
		Members: []model.RoomMember{{UserID: ownerID, Username: ownerID, Role: model.MemberRoleOwner}},
	}
	f.rooms[id] = d
	return *d, nil
}

func (f *fakeRooms) Get(_ context.Context, id string) (model.RoomDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rooms[id]
	if !ok {
		return model.RoomDetail{}, repository.ErrNotFound
	}
	return *d, nil
}

func (f *fakeRooms) ListForMovie(_ context.Context, movieID int64) ([]model.RoomDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.RoomDetail{}
	for _, d := range f.rooms {
		if d.TMDBMovieID == movieID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRooms) Join(_ context.Context, userID, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, m := range d.Members {
		if m.UserID == userID {
			return repository.ErrAlreadyMember
		}
	}
	d.Members = append(d.Members, model.RoomMember{UserID: userID, Username: userID, Role: model.MemberRoleMember})
	return nil
}

func (f *fakeRooms) Leave(_ context.Context, userID, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	if d.OwnerID == userID {
		return repository.ErrOwnerCannotLeave
	}
	for i, m := range d.Members {
		if m.UserID == userID {
			d.Members = append(d.Members[:i], d.Members[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotMember
}

func (f *fakeRooms) DeleteByIDAndOwner(_ context.Context, roomID, requesterID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	if d.OwnerID != requesterID {
		return repository.ErrForbidden
	}
	delete(f.rooms, roomID)
	return nil
}

func (f *fakeRooms) ListUpcoming(_ context.Context, limit int, userID string) ([]model.UpcomingRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit, f.asked = limit, userID
	return []model.UpcomingRoom{}, nil
}

type fakeFavorites struct {
	mu   sync.Mutex
	favs map[int64]bool
}

func (f *fakeFavorites) IsFavorite(_ context.Context, _ string, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favs[id], nil
}

func (f *fakeFavorites) Add(_ context.Context, _ string, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.favs[id] {
		return false, nil
	}
	f.favs[id] = true
	return true, nil
}

func (f *fakeFavorites) Remove(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.favs, id)
	return nil
}

func (f *fakeFavorites) ListByUser(_ context.Context, userID string) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Favorite{}
	for id := range f.favs {
		out = append(out, model.Favorite{UserID: userID, TMDBMovieID: id})
	}
	return out, nil
}
