// Package memory is an in-process implementation of every repository interface,
// used for local development without Postgres and as the fake in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

// Store holds all tables behind one lock.
type Store struct {
	mu            sync.RWMutex
	workouts      map[uuid.UUID]models.WorkoutLog
	users         map[uuid.UUID]models.User
	audits        []models.AuditLog
	notifications map[uuid.UUID]models.Notification
	digests       map[uuid.UUID]models.DigestQueueEntry
	emailLogs     []models.EmailLog
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		workouts:      make(map[uuid.UUID]models.WorkoutLog),
		users:         make(map[uuid.UUID]models.User),
		notifications: make(map[uuid.UUID]models.Notification),
		digests:       make(map[uuid.UUID]models.DigestQueueEntry),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// NewRepository wires a fresh Store into every repository slot.
func NewRepository() (*repository.Repository, *Store) {
	s := NewStore()
	return &repository.Repository{
		Workouts:      workouts{s},
		Users:         users{s},
		Audits:        audits{s},
		Notifications: notifications{s},
		Digests:       digests{s},
		EmailLogs:     emailLogs{s},
	}, s
}

// AuditLogs returns a copy of every audit row in insertion order.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audits...)
}

// EmailLogs returns a copy of every email log row in insertion order.
func (s *Store) EmailLogs() []models.EmailLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EmailLog(nil), s.emailLogs...)
}

// Notifications returns every notification for userID, newest first.
func (s *Store) Notifications(userID uuid.UUID) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notificationsFor(userID, false)
}

// DigestEntries returns every queued entry for userID in creation order.
func (s *Store) DigestEntries(userID uuid.UUID) []models.DigestQueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DigestQueueEntry, 0)
	for _, e := range s.digests {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) notificationsFor(userID uuid.UUID, unreadOnly bool) []models.Notification {
	out := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// stamp returns a strictly increasing timestamp so ordering by time is stable.
func (s *Store) stamp(prev time.Time) time.Time {
	t := s.now()
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

// --- workouts ---

type workouts struct{ s *Store }

func (r workouts) Create(_ context.Context, log *models.WorkoutLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	var last time.Time
	for _, w := range r.s.workouts {
		if w.CreatedAt.After(last) {
			last = w.CreatedAt
		}
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.s.stamp(last)
	}
	log.UpdatedAt = log.CreatedAt
	r.s.workouts[log.ID] = *log
	return nil
}

func (r workouts) GetByID(_ context.Context, category models.Category, id uuid.UUID) (*models.WorkoutLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workouts[id]
	if !ok || w.Category != category {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r workouts) ListByUser(_ context.Context, userID uuid.UUID, category models.Category) ([]models.WorkoutLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.WorkoutLog, 0)
	for _, w := range r.s.workouts {
		if w.UserID == userID && (category == "" || w.Category == category) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ActivityDate.Equal(out[j].ActivityDate) {
			return out[i].ActivityDate.After(out[j].ActivityDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r workouts) ListAll(_ context.Context) ([]models.WorkoutLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.WorkoutLog, 0, len(r.s.workouts))
	for _, w := range r.s.workouts {
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r workouts) Search(_ context.Context, f repository.LogFilter) ([]models.WorkoutLog, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := make([]models.WorkoutLog, 0)
	for _, w := range r.s.workouts {
		if f.Status != "" && w.Status() != f.Status {
			continue
		}
		if f.Category != "" && w.Category != f.Category {
			continue
		}
		if f.UserID != nil && w.UserID != *f.UserID {
			continue
		}
		matched = append(matched, w)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := f.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func (r workouts) CountByStatus(_ context.Context) (repository.StatusCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(repository.StatusCounts, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = map[models.VerificationStatus]int64{
			models.StatusPending:  0,
			models.StatusVerified: 0,
			models.StatusFlagged:  0,
		}
	}
	for _, w := range r.s.workouts {
		if m, ok := counts[w.Category]; ok {
			m[w.Status()]++
		}
	}
	return counts, nil
}

func (r workouts) Delete(_ context.Context, userID uuid.UUID, category models.Category, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok || w.UserID != userID || w.Category != category {
		return repository.ErrNotFound
	}
	delete(r.s.workouts, id)
	return nil
}

func (r workouts) ApplyVerification(_ context.Context, logID uuid.UUID, v models.Verification, audit *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[logID]
	if !ok {
		return repository.ErrNotFound
	}
	w.Verification = v
	w.UpdatedAt = r.s.now()
	r.s.workouts[logID] = w

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = r.s.now()
	}
	r.s.audits = append(r.s.audits, *audit)
	return nil
}

// --- users ---

type users struct{ s *Store }

func (r users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r users) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[uuid.UUID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r users) ListAll(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	return out, nil
}

func (r users) Ensure(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.users[user.ID]; ok {
		return &existing, nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	stored := *user
	return &stored, nil
}

func (r users) UpdateProfile(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "display_name":
			u.DisplayName = v.(string)
		case "unit_name":
			u.UnitName = v.(*string)
		case "unit_category":
			u.UnitCategory = v.(models.UnitCategory)
		case "email":
			u.Email = v.(string)
		case "email_notifications":
			u.EmailNotifications = v.(bool)
		case "notify_on_verified":
			u.NotifyOnVerified = v.(bool)
		case "notify_on_flagged":
			u.NotifyOnFlagged = v.(bool)
		case "delivery_mode":
			u.DeliveryMode = v.(models.DeliveryMode)
		}
	}
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func (r users) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.NotificationPreferences) error {
	return r.UpdateProfile(ctx, id, map[string]interface{}{
		"email_notifications": prefs.EmailNotifications,
		"notify_on_verified":  prefs.NotifyOnVerified,
		"notify_on_flagged":   prefs.NotifyOnFlagged,
		"delivery_mode":       prefs.DeliveryMode,
	})
}

// --- audits ---

type audits struct{ s *Store }

func (r audits) ListByLog(_ context.Context, logID uuid.UUID) ([]models.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.AuditLog, 0)
	for _, a := range r.s.audits {
		if a.LogID == logID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- notifications ---

type notifications struct{ s *Store }

func (r notifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	var last time.Time
	for _, existing := range r.s.notifications {
		if existing.CreatedAt.After(last) {
			last = existing.CreatedAt
		}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.stamp(last)
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r notifications) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.s.notificationsFor(userID, unreadOnly)
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r notifications) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.notificationsFor(userID, true))), nil
}

func (r notifications) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

func (r notifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r notifications) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

// --- digests ---

type digests struct{ s *Store }

func (r digests) Enqueue(_ context.Context, entry *models.DigestQueueEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	var last time.Time
	for _, e := range r.s.digests {
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.s.stamp(last)
	}
	r.s.digests[entry.ID] = *entry
	return nil
}

func (r digests) Claim(_ context.Context, token uuid.UUID, now, staleBefore time.Time) ([]models.DigestQueueEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.DigestQueueEntry, 0)
	for id, e := range r.s.digests {
		if e.Processed {
			continue
		}
		if e.ClaimToken != nil && e.ClaimedAt != nil && !e.ClaimedAt.Before(staleBefore) {
			continue
		}
		tok, at := token, now
		e.ClaimToken = &tok
		e.ClaimedAt = &at
		r.s.digests[id] = e
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r digests) MarkProcessed(_ context.Context, ids []uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if e, ok := r.s.digests[id]; ok {
			ts := at
			e.Processed = true
			e.ProcessedAt = &ts
			r.s.digests[id] = e
		}
	}
	return nil
}

func (r digests) PurgeProcessed(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, e := range r.s.digests {
		if e.Processed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.s.digests, id)
			n++
		}
	}
	return n, nil
}

// --- email logs ---

type emailLogs struct{ s *Store }

func (r emailLogs) Create(_ context.Context, entry *models.EmailLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.s.now()
	}
	r.s.emailLogs = append(r.s.emailLogs, *entry)
	return nil
}
