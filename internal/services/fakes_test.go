package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"vregistry/internal/models"
	"vregistry/internal/notify"
	"vregistry/internal/repositories"
)

func ptr[T any](v T) *T { return &v }

// ===== users / vehicles =====

type fakeUsers struct {
	byID map[int]*models.User

	updateRefreshFunc func(ctx context.Context, userID int, token string, expiresAt time.Time) error
	rotateRefreshFunc func(ctx context.Context, oldToken, newToken string, exp time.Time) (*models.User, error)
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("user get by id %d: %w", id, sql.ErrNoRows)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	ids := make([]int, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if strings.EqualFold(f.byID[id].Username, username) {
			cp := *f.byID[id]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user get by username: %w", sql.ErrNoRows)
}

func (f *fakeUsers) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	if f.updateRefreshFunc != nil {
		return f.updateRefreshFunc(ctx, userID, token, expiresAt)
	}
	u, ok := f.byID[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.RefreshToken = &token
	u.RefreshExpiresAt = &expiresAt
	u.RefreshRevoked = false
	return nil
}

func (f *fakeUsers) RotateRefresh(ctx context.Context, oldToken, newToken string, exp time.Time) (*models.User, error) {
	if f.rotateRefreshFunc != nil {
		return f.rotateRefreshFunc(ctx, oldToken, newToken, exp)
	}
	for _, u := range f.byID {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &exp
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.byID {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user get by refresh token: %w", sql.ErrNoRows)
}

type fakeVehicles map[int]*models.Vehicle

func (f fakeVehicles) GetByID(_ context.Context, id int) (*models.Vehicle, error) {
	v, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("vehicle get by id %d: %w", id, sql.ErrNoRows)
	}
	cp := *v
	return &cp, nil
}

// ===== verified users =====

// fakeVerifiedUsers behaves like the SQL repository: join on users, lowest id wins.
type fakeVerifiedUsers struct {
	users  *fakeUsers
	rows   map[int]models.VerifiedUser
	nextID int
	writes int

	getByIDErr error
}

func newFakeVerifiedUsers(users *fakeUsers) *fakeVerifiedUsers {
	return &fakeVerifiedUsers{users: users, rows: map[int]models.VerifiedUser{}, nextID: 1}
}

func (f *fakeVerifiedUsers) load(row models.VerifiedUser) *models.VerifiedUser {
	if u, ok := f.users.byID[row.UserID]; ok {
		cp := *u
		row.User = &cp
	}
	return &row
}

func (f *fakeVerifiedUsers) GetByID(_ context.Context, id int) (*models.VerifiedUser, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("verified_user get %d: %w", id, sql.ErrNoRows)
	}
	return f.load(row), nil
}

func (f *fakeVerifiedUsers) GetByValue(_ context.Context, value string) (*models.VerifiedUser, error) {
	ids := make([]int, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		row := f.rows[id]
		if (row.IIN != nil && strings.EqualFold(*row.IIN, value)) ||
			(row.PassportNumber != nil && strings.EqualFold(*row.PassportNumber, value)) {
			return f.load(row), nil
		}
	}
	return nil, fmt.Errorf("verified_user get by value: %w", sql.ErrNoRows)
}

func (f *fakeVerifiedUsers) List(_ context.Context, flt models.ListFilter) (*models.Page[*models.VerifiedUser], error) {
	var items []*models.VerifiedUser
	for id := 1; id < f.nextID; id++ {
		if row, ok := f.rows[id]; ok {
			items = append(items, f.load(row))
		}
	}
	return models.NewPage(items, len(items), flt), nil
}

func (f *fakeVerifiedUsers) Create(_ context.Context, v *models.VerifiedUser) (int, error) {
	f.writes++
	if _, ok := f.users.byID[v.UserID]; !ok {
		return 0, repositories.ErrReferenceMissing
	}
	row := *v
	row.ID = f.nextID
	row.User = nil
	f.nextID++
	f.rows[row.ID] = row
	v.ID = row.ID
	return row.ID, nil
}

func (f *fakeVerifiedUsers) Update(_ context.Context, v *models.VerifiedUser) error {
	f.writes++
	if _, ok := f.rows[v.ID]; !ok {
		return sql.ErrNoRows
	}
	row := *v
	row.User = nil
	f.rows[v.ID] = row
	return nil
}

func (f *fakeVerifiedUsers) Delete(_ context.Context, id int) error {
	f.writes++
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("verified_user delete %d: %w", id, sql.ErrNoRows)
	}
	delete(f.rows, id)
	return nil
}

// ===== verified vehicles =====

type fakeVerifiedVehicles struct {
	vehicles fakeVehicles
	rows     map[int]models.VerifiedVehicle
	nextID   int
	writes   int
}

func newFakeVerifiedVehicles(vehicles fakeVehicles) *fakeVerifiedVehicles {
	return &fakeVerifiedVehicles{vehicles: vehicles, rows: map[int]models.VerifiedVehicle{}, nextID: 1}
}

func (f *fakeVerifiedVehicles) load(row models.VerifiedVehicle) *models.VerifiedVehicle {
	if v, ok := f.vehicles[row.VehicleID]; ok {
		cp := *v
		row.Vehicle = &cp
	}
	return &row
}

func (f *fakeVerifiedVehicles) GetByID(_ context.Context, id int) (*models.VerifiedVehicle, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("verified_vehicle get %d: %w", id, sql.ErrNoRows)
	}
	return f.load(row), nil
}

func (f *fakeVerifiedVehicles) GetByValue(_ context.Context, value string) (*models.VerifiedVehicle, error) {
	for id := 1; id < f.nextID; id++ {
		row, ok := f.rows[id]
		if ok && row.CarNumber != nil && strings.EqualFold(*row.CarNumber, value) {
			return f.load(row), nil
		}
	}
	return nil, fmt.Errorf("verified_vehicle get by value: %w", sql.ErrNoRows)
}

func (f *fakeVerifiedVehicles) List(_ context.Context, flt models.ListFilter) (*models.Page[*models.VerifiedVehicle], error) {
	var items []*models.VerifiedVehicle
	for id := 1; id < f.nextID; id++ {
		if row, ok := f.rows[id]; ok {
			items = append(items, f.load(row))
		}
	}
	return models.NewPage(items, len(items), flt), nil
}

func (f *fakeVerifiedVehicles) Create(_ context.Context, v *models.VerifiedVehicle) (int, error) {
	f.writes++
	row := *v
	row.ID = f.nextID
	row.Vehicle = nil
	f.nextID++
	f.rows[row.ID] = row
	v.ID = row.ID
	return row.ID, nil
}

func (f *fakeVerifiedVehicles) Update(_ context.Context, v *models.VerifiedVehicle) error {
	f.writes++
	if _, ok := f.rows[v.ID]; !ok {
		return sql.ErrNoRows
	}
	row := *v
	row.Vehicle = nil
	f.rows[v.ID] = row
	return nil
}

func (f *fakeVerifiedVehicles) Delete(_ context.Context, id int) error {
	f.writes++
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("verified_vehicle delete %d: %w", id, sql.ErrNoRows)
	}
	delete(f.rows, id)
	return nil
}

// ===== notifier =====

type recordingNotifier struct {
	events []notify.Decision
	err    error
}

func (n *recordingNotifier) NotifyDecision(_ context.Context, d notify.Decision) error {
	n.events = append(n.events, d)
	return n.err
}

// blockingNotifier ждёт отмены контекста, как зависший внешний сервис.
type blockingNotifier struct {
	calls int
}

func (n *blockingNotifier) NotifyDecision(ctx context.Context, _ notify.Decision) error {
	n.calls++
	<-ctx.Done()
	return ctx.Err()
}
