package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/repositories"
	"github.com/Dosada05/sports-center/schedule"
)

var (
	testLocation = time.UTC
	// testNow is a Friday morning; most fixtures are placed relative to it.
	testNow   = time.Date(2025, time.March, 14, 10, 0, 0, 0, testLocation)
	testToday = schedule.DateOf(testNow)
)

func fixedClock(now time.Time) Clock {
	return Clock{Now: func() time.Time { return now }, Location: testLocation}
}

// fakeTx runs fn without a database. Writes made by fn stay applied.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeFacilityRepo struct {
	mu         sync.Mutex
	facilities map[int]*models.Facility
	nextID     int
}

func newFakeFacilityRepo(facilities ...models.Facility) *fakeFacilityRepo {
	r := &fakeFacilityRepo{facilities: map[int]*models.Facility{}}
	for i := range facilities {
		f := facilities[i]
		r.facilities[f.ID] = &f
		if f.ID > r.nextID {
			r.nextID = f.ID
		}
	}
	return r
}

func (r *fakeFacilityRepo) Create(ctx context.Context, f *models.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	f.ID = r.nextID
	cp := *f
	r.facilities[f.ID] = &cp
	return nil
}

func (r *fakeFacilityRepo) GetByID(ctx context.Context, id int) (*models.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facilities[id]
	if !ok {
		return nil, repositories.ErrFacilityNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFacilityRepo) List(ctx context.Context, filter repositories.ListFacilitiesFilter) ([]models.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Facility, 0)
	for _, f := range r.facilities {
		if filter.OnlyActive && !f.Active {
			continue
		}
		if filter.Category != nil && f.Category != *filter.Category {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFacilityRepo) Update(ctx context.Context, f *models.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.facilities[f.ID]; !ok {
		return repositories.ErrFacilityNotFound
	}
	cp := *f
	r.facilities[f.ID] = &cp
	return nil
}

func (r *fakeFacilityRepo) UpdateImageKey(ctx context.Context, facilityID int, imageKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facilities[facilityID]
	if !ok {
		return repositories.ErrFacilityNotFound
	}
	f.ImageKey = imageKey
	return nil
}

func (r *fakeFacilityRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.facilities[id]; !ok {
		return repositories.ErrFacilityNotFound
	}
	delete(r.facilities, id)
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[int]*models.Reservation
	nextID       int
	// overlapOnCreate simulates the exclusion constraint firing.
	overlapOnCreate bool
	completed       []int
	activeQueries   int
	// beforeCancel runs ahead of the guarded cancel update.
	beforeCancel func(id int)
}

func newFakeReservationRepo(reservations ...models.Reservation) *fakeReservationRepo {
	r := &fakeReservationRepo{reservations: map[int]*models.Reservation{}}
	for i := range reservations {
		res := reservations[i]
		r.reservations[res.ID] = &res
		if res.ID > r.nextID {
			r.nextID = res.ID
		}
	}
	return r
}

func (r *fakeReservationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapOnCreate {
		return repositories.ErrReservationOverlap
	}
	r.nextID++
	res.ID = r.nextID
	res.CreatedAt = testNow
	cp := *res
	r.reservations[res.ID] = &cp
	return nil
}

func (r *fakeReservationRepo) GetByID(ctx context.Context, id int) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, repositories.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *fakeReservationRepo) ListActiveByFacilityDate(ctx context.Context, exec repositories.SQLExecutor, facilityID int, date schedule.Date) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeQueries++
	out := make([]models.Reservation, 0)
	for _, res := range r.sorted() {
		if res.FacilityID == facilityID && res.Date.Equal(date) && res.Status.Blocking() {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ListByUser(ctx context.Context, userID int) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Reservation, 0)
	for _, res := range r.sorted() {
		if res.OwnedBy(userID) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ListAll(ctx context.Context) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(), nil
}

func (r *fakeReservationRepo) HasActiveForFacility(ctx context.Context, facilityID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.reservations {
		if res.FacilityID == facilityID && res.Status.Blocking() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) CancelActive(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if r.beforeCancel != nil {
		r.beforeCancel(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok || !res.Status.Blocking() {
		return repositories.ErrReservationNotActive
	}
	res.Status = models.ReservationCancelled
	return nil
}

// setStatus overwrites the stored status, as another request would.
func (r *fakeReservationRepo) setStatus(id int, status models.ReservationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations[id].Status = status
}

func (r *fakeReservationRepo) MarkCompleted(ctx context.Context, ids []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if res, ok := r.reservations[id]; ok && res.Status == models.ReservationConfirmed {
			res.Status = models.ReservationCompleted
			r.completed = append(r.completed, id)
		}
	}
	return nil
}

func (r *fakeReservationRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[id]; !ok {
		return repositories.ErrReservationNotFound
	}
	delete(r.reservations, id)
	return nil
}

func (r *fakeReservationRepo) storedStatus(id int) models.ReservationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.reservations[id]; ok {
		return res.Status
	}
	return ""
}

// sorted must be called with mu held.
func (r *fakeReservationRepo) sorted() []models.Reservation {
	out := make([]models.Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime.String() < out[j].StartTime.String()
	})
	return out
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int]*models.User{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) SetAPIToken(ctx context.Context, userID int, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.APIToken = token
	return nil
}

func (r *fakeUserRepo) UpdateMembership(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsMember = user.IsMember
	u.MembershipStart = user.MembershipStart
	u.MembershipEnd = user.MembershipEnd
	u.SubscriptionCancelled = user.SubscriptionCancelled
	return nil
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments []models.Enrollment
}

func (r *fakeEnrollmentRepo) Exists(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(tournamentID, userID) >= 0, nil
}

func (r *fakeEnrollmentRepo) Count(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count(tournamentID), nil
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(tournamentID, userID) >= 0 {
		return repositories.ErrEnrollmentExists
	}
	r.enrollments = append(r.enrollments, models.Enrollment{
		TournamentID: tournamentID,
		UserID:       userID,
		CreatedAt:    testNow.Add(time.Duration(len(r.enrollments)) * time.Minute),
		UserName:     "Jugador " + strconv.Itoa(userID),
	})
	return nil
}

func (r *fakeEnrollmentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(tournamentID, userID)
	if i < 0 {
		return repositories.ErrEnrollmentNotFound
	}
	r.enrollments = append(r.enrollments[:i], r.enrollments[i+1:]...)
	return nil
}

func (r *fakeEnrollmentRepo) EnrolledTournamentIDs(ctx context.Context, userID int) (map[int]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := map[int]bool{}
	for _, e := range r.enrollments {
		if e.UserID == userID {
			ids[e.TournamentID] = true
		}
	}
	return ids, nil
}

func (r *fakeEnrollmentRepo) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Enrollment(nil), r.enrollments...), nil
}

func (r *fakeEnrollmentRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Totals(ctx context.Context) ([]models.TournamentEnrollmentTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[int]int{}
	for _, e := range r.enrollments {
		counts[e.TournamentID]++
	}
	out := make([]models.TournamentEnrollmentTotal, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.TournamentEnrollmentTotal{TournamentID: id, Enrolled: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TournamentID < out[j].TournamentID })
	return out, nil
}

func (r *fakeEnrollmentRepo) count(tournamentID int) int {
	n := 0
	for _, e := range r.enrollments {
		if e.TournamentID == tournamentID {
			n++
		}
	}
	return n
}

func (r *fakeEnrollmentRepo) indexOf(tournamentID, userID int) int {
	for i, e := range r.enrollments {
		if e.TournamentID == tournamentID && e.UserID == userID {
			return i
		}
	}
	return -1
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
	enrollments *fakeEnrollmentRepo
}

func newFakeTournamentRepo(enrollments *fakeEnrollmentRepo, tournaments ...models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}, enrollments: enrollments}
	for i := range tournaments {
		t := tournaments[i]
		r.tournaments[t.ID] = &t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	var mine map[int]bool
	if filter.EnrolledUserID != nil {
		mine, _ = r.enrollments.EnrolledTournamentIDs(ctx, *filter.EnrolledUserID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.OnlyActive && !t.Active {
			continue
		}
		if filter.NotEndedBefore != nil && t.EndDate.Before(*filter.NotEndedBefore) {
			continue
		}
		if mine != nil && !mine[t.ID] {
			continue
		}
		cp := *t
		cp.Enrolled, _ = r.enrollments.Count(ctx, nil, t.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) UpdateStatusAndCount(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, enrolled int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.Enrolled = enrolled
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) stored(id int) models.Tournament {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.tournaments[id]
}

type fakeStatsRepo struct {
	dailySince   schedule.Date
	monthlySince schedule.Date
}

func (r *fakeStatsRepo) ConfirmedTotals(ctx context.Context) (int, models.Money, error) {
	return 2, models.MoneyFromString("37.50"), nil
}

func (r *fakeStatsRepo) RevenuePerDay(ctx context.Context, since schedule.Date) ([]models.DailyRevenue, error) {
	r.dailySince = since
	return []models.DailyRevenue{{Date: testToday.String(), Count: 2, Revenue: models.MoneyFromString("37.50")}}, nil
}

func (r *fakeStatsRepo) RevenuePerFacility(ctx context.Context) ([]models.FacilityRevenue, error) {
	return []models.FacilityRevenue{{FacilityID: 1, FacilityName: "Pista 1", Count: 2, Revenue: models.MoneyFromString("37.50")}}, nil
}

func (r *fakeStatsRepo) RevenuePerMonth(ctx context.Context, since schedule.Date) ([]models.MonthlyRevenue, error) {
	r.monthlySince = since
	return []models.MonthlyRevenue{{Month: "2025-03", Count: 2, Revenue: models.MoneyFromString("37.50")}}, nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	rooms    []string
	messages []realtime.Message
}

func (b *recordingBroadcaster) BroadcastToRoom(room string, msg realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, room)
	b.messages = append(b.messages, msg)
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func intPtr(n int) *int { return &n }
