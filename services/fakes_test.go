package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/utils"
)

// fakeTx runs fn directly. With serial set, transactions are serialized like row locks would.
type fakeTx struct {
	serial bool
	mu     sync.Mutex
}

func (t *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.serial {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	return fn(ctx)
}

type fakeTurnRepo struct {
	mu     sync.Mutex
	turns  map[uint]models.Turn
	nextID uint
}

func newFakeTurnRepo() *fakeTurnRepo {
	return &fakeTurnRepo{turns: map[uint]models.Turn{}}
}

func (r *fakeTurnRepo) clashes(t models.Turn) bool {
	if t.Status == models.TurnCancelled {
		return false
	}
	for id, other := range r.turns {
		if id != t.ID && other.DoctorID == t.DoctorID && other.Status != models.TurnCancelled && other.ScheduledAt.Equal(t.ScheduledAt) {
			return true
		}
	}
	return false
}

func (r *fakeTurnRepo) Create(_ context.Context, turn *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if turn.Status == "" {
		turn.Status = models.TurnAvailable
	}
	if r.clashes(*turn) {
		return repositories.ErrDuplicate
	}
	r.nextID++
	turn.ID = r.nextID
	turn.CreatedAt = time.Now()
	r.turns[turn.ID] = *turn
	return nil
}

func (r *fakeTurnRepo) FindByID(_ context.Context, id uint) (*models.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.turns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTurnRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Turn, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTurnRepo) ExistsActiveAt(_ context.Context, doctorID uint, at time.Time, excludeID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate := models.Turn{DoctorID: doctorID, ScheduledAt: at, Status: models.TurnAvailable}
	candidate.ID = excludeID
	return r.clashes(candidate), nil
}

func (r *fakeTurnRepo) Reserve(_ context.Context, turnID, patientID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.turns[turnID]
	if !ok || t.Status != models.TurnAvailable {
		return false, nil
	}
	pid := patientID
	t.Status = models.TurnReserved
	t.PatientID = &pid
	r.turns[turnID] = t
	return true, nil
}

func (r *fakeTurnRepo) Update(_ context.Context, turn *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clashes(*turn) {
		return repositories.ErrDuplicate
	}
	r.turns[turn.ID] = *turn
	return nil
}

func (r *fakeTurnRepo) list(match func(models.Turn) bool) []models.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Turn{}
	for _, t := range r.turns {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (r *fakeTurnRepo) ListByDoctor(_ context.Context, doctorID uint, from, to time.Time, statuses ...models.TurnStatus) ([]models.Turn, error) {
	return r.list(func(t models.Turn) bool {
		if t.DoctorID != doctorID || t.ScheduledAt.Before(from) || !t.ScheduledAt.Before(to) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if t.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *fakeTurnRepo) ListByPatient(_ context.Context, patientID uint, from, to time.Time) ([]models.Turn, error) {
	return r.list(func(t models.Turn) bool {
		return t.HasPatient(patientID) && !t.ScheduledAt.Before(from) && t.ScheduledAt.Before(to)
	}), nil
}

func (r *fakeTurnRepo) ListReservedBetween(_ context.Context, from, to time.Time) ([]models.Turn, error) {
	return r.list(func(t models.Turn) bool {
		return t.Status == models.TurnReserved && !t.ScheduledAt.Before(from) && t.ScheduledAt.Before(to)
	}), nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uint]models.TurnModifyRequest
	nextID   uint
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[uint]models.TurnModifyRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *models.TurnModifyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.requests {
		if other.TurnID == req.TurnID && other.IsPending() {
			return repositories.ErrDuplicate
		}
	}
	r.nextID++
	req.ID = r.nextID
	r.requests[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) FindByIDForUpdate(_ context.Context, id uint) (*models.TurnModifyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) FindPendingByTurn(_ context.Context, turnID uint) (*models.TurnModifyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.TurnID == turnID && req.IsPending() {
			return &req, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeRequestRepo) Update(_ context.Context, req *models.TurnModifyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *req
	stored.Turn = nil
	r.requests[req.ID] = stored
	return nil
}

func (r *fakeRequestRepo) VoidPendingByTurn(_ context.Context, turnID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, req := range r.requests {
		if req.TurnID == turnID && req.IsPending() {
			delete(r.requests, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeRequestRepo) ListPendingByDoctor(_ context.Context, doctorID uint) ([]models.TurnModifyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TurnModifyRequest
	for _, req := range r.requests {
		if req.DoctorID == doctorID && req.IsPending() {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByPatient(_ context.Context, patientID uint) ([]models.TurnModifyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TurnModifyRequest
	for _, req := range r.requests {
		if req.PatientID == patientID {
			out = append(out, req)
		}
	}
	return out, nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings []models.Rating
}

func (r *fakeRatingRepo) Create(_ context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.ratings {
		if other.TurnID == rating.TurnID && other.RaterID == rating.RaterID {
			return repositories.ErrDuplicate
		}
	}
	rating.ID = uint(len(r.ratings) + 1)
	r.ratings = append(r.ratings, *rating)
	return nil
}

func (r *fakeRatingRepo) ExistsByTurnAndRater(_ context.Context, turnID, raterID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.ratings {
		if other.TurnID == turnID && other.RaterID == raterID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRatingRepo) ListByRated(_ context.Context, ratedID uint) ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rating
	for _, rating := range r.ratings {
		if rating.RatedID == ratedID {
			out = append(out, rating)
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) ListByTurn(_ context.Context, turnID uint) ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rating
	for _, rating := range r.ratings {
		if rating.TurnID == turnID {
			out = append(out, rating)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	if u.DoctorProfile != nil {
		u.DoctorProfile.UserID = u.ID
	}
	r.users[u.ID] = u
	return &u
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	for _, other := range r.users {
		if other.Email == user.Email || other.DNI == user.DNI {
			r.mu.Unlock()
			return repositories.ErrDuplicate
		}
	}
	r.mu.Unlock()
	created := r.add(*user)
	user.ID = created.ID
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if u.DoctorProfile != nil {
		profile := *u.DoctorProfile
		u.DoctorProfile = &profile
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.users[user.ID]
	profile := stored.DoctorProfile
	stored = *user
	stored.DoctorProfile = profile
	r.users[user.ID] = stored
	return nil
}

func (r *fakeUserRepo) UpdateDoctorProfile(_ context.Context, profile *models.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[profile.UserID]
	p := *profile
	u.DoctorProfile = &p
	r.users[profile.UserID] = u
	return nil
}

func (r *fakeUserRepo) ListByRoleAndStatus(_ context.Context, role models.Role, status models.UserStatus) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.Role == role && u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListDoctors(ctx context.Context, specialty string) ([]models.User, error) {
	doctors, _ := r.ListByRoleAndStatus(ctx, models.RoleDoctor, models.UserActive)
	if specialty == "" {
		return doctors, nil
	}
	var out []models.User
	for _, d := range doctors {
		if d.DoctorProfile != nil && strings.EqualFold(d.DoctorProfile.Specialty, specialty) {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeStatsRepo struct {
	mu       sync.Mutex
	doctors  map[uint]models.DoctorBadgeStatistics
	patients map[uint]models.PatientBadgeStatistics
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		doctors:  map[uint]models.DoctorBadgeStatistics{},
		patients: map[uint]models.PatientBadgeStatistics{},
	}
}

func (r *fakeStatsRepo) LockDoctor(_ context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.doctors[doctorID]
	if !ok {
		st = models.DoctorBadgeStatistics{ID: uint(len(r.doctors) + 1), DoctorID: doctorID}
		r.doctors[doctorID] = st
	}
	return &st, nil
}

func (r *fakeStatsRepo) SaveDoctor(_ context.Context, st *models.DoctorBadgeStatistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctors[st.DoctorID] = *st
	return nil
}

func (r *fakeStatsRepo) FindDoctor(_ context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.doctors[doctorID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &st, nil
}

func (r *fakeStatsRepo) LockPatient(_ context.Context, patientID uint) (*models.PatientBadgeStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.patients[patientID]
	if !ok {
		st = models.PatientBadgeStatistics{ID: uint(len(r.patients) + 1), PatientID: patientID}
		r.patients[patientID] = st
	}
	return &st, nil
}

func (r *fakeStatsRepo) SavePatient(_ context.Context, st *models.PatientBadgeStatistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[st.PatientID] = *st
	return nil
}

func (r *fakeStatsRepo) FindPatient(_ context.Context, patientID uint) (*models.PatientBadgeStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.patients[patientID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &st, nil
}

type fakeBadgeRepo struct {
	mu     sync.Mutex
	badges map[uint]models.Badge
	nextID uint
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{badges: map[uint]models.Badge{}}
}

func (r *fakeBadgeRepo) ListByUser(_ context.Context, userID uint) ([]models.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Badge
	for _, b := range r.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeType < out[j].BadgeType })
	return out, nil
}

func (r *fakeBadgeRepo) Save(_ context.Context, badge *models.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if badge.ID == 0 {
		r.nextID++
		badge.ID = r.nextID
	}
	r.badges[badge.ID] = *badge
	return nil
}

func (r *fakeBadgeRepo) find(userID uint, badgeType models.BadgeType) (models.Badge, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.badges {
		if b.UserID == userID && b.BadgeType == badgeType {
			return b, true
		}
	}
	return models.Badge{}, false
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	fail          error
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	n.ID = uint(len(r.notifications) + 1)
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notifications {
		if r.notifications[i].UserID == userID && !r.notifications[i].Read {
			r.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

type fakePatientFileRepo struct {
	files []models.PatientFile
}

func (r *fakePatientFileRepo) Create(_ context.Context, f *models.PatientFile) error {
	f.ID = uint(len(r.files) + 1)
	r.files = append(r.files, *f)
	return nil
}

func (r *fakePatientFileRepo) ListByPatient(_ context.Context, patientID uint) ([]models.PatientFile, error) {
	var out []models.PatientFile
	for _, f := range r.files {
		if f.PatientID == patientID {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeUploader struct {
	publicIDs []string
}

func (u *fakeUploader) Upload(_ context.Context, _ any, publicID string) (utils.UploadResult, error) {
	u.publicIDs = append(u.publicIDs, publicID)
	return utils.UploadResult{URL: "https://files.example/" + publicID, PublicID: publicID}, nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, "", nil
	}
	l.held[key] = true
	return true, key, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *fakePublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type sentEmail struct {
	to, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}
