package school

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/edupay/backend/internal/domain/identity"
	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type memStudentRepo struct {
	mu       sync.Mutex
	students map[uuid.UUID]school.Student
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: make(map[uuid.UUID]school.Student)}
}

func (r *memStudentRepo) FindByID(_ context.Context, id uuid.UUID) (*school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found, ok := r.students[id]; ok {
		return &found, nil
	}
	return nil, nil
}

func (r *memStudentRepo) FindByIDForOwner(_ context.Context, ownerAdminID, id uuid.UUID) (*school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found, ok := r.students[id]; ok && found.OwnerAdminID == ownerAdminID {
		return &found, nil
	}
	return nil, nil
}

func (r *memStudentRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.UserID == userID {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memStudentRepo) FindAllForOwner(_ context.Context, ownerAdminID uuid.UUID, filter school.StudentFilter) ([]school.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []school.Student
	for _, s := range r.students {
		if s.OwnerAdminID != ownerAdminID {
			continue
		}
		if filter.Standard != nil && s.Standard != *filter.Standard {
			continue
		}
		if filter.Active != nil && s.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentCode < out[j].StudentCode })
	return out, nil
}

func (r *memStudentRepo) ExistsByMobileNo(_ context.Context, ownerAdminID uuid.UUID, mobileNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.OwnerAdminID == ownerAdminID && s.MobileNo == mobileNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStudentRepo) ExistsByStudentCode(_ context.Context, ownerAdminID uuid.UUID, studentCode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.OwnerAdminID == ownerAdminID && s.StudentCode == studentCode {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStudentRepo) Save(_ context.Context, student *school.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[student.ID] = *student
	return nil
}

func (r *memStudentRepo) SaveWithLock(_ context.Context, student *school.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.students[student.ID]; ok && stored.Version >= student.Version {
		return shared.ErrConcurrencyConflict
	}
	r.students[student.ID] = *student
	return nil
}

func (r *memStudentRepo) CountForOwner(ctx context.Context, ownerAdminID uuid.UUID, filter school.StudentFilter) (int64, error) {
	list, err := r.FindAllForOwner(ctx, ownerAdminID, filter)
	return int64(len(list)), err
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]identity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]identity.User)}
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found, ok := r.users[id]; ok {
		return &found, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == strings.ToLower(username) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, err := r.FindByUsername(ctx, username)
	return u != nil, err
}

func (r *memUserRepo) Save(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) SaveWithLock(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[user.ID]; ok && stored.Version >= user.Version {
		return shared.ErrConcurrencyConflict
	}
	r.users[user.ID] = *user
	return nil
}

type memAnnouncementRepo struct {
	mu            sync.Mutex
	announcements map[uuid.UUID]school.Announcement
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{announcements: make(map[uuid.UUID]school.Announcement)}
}

func (r *memAnnouncementRepo) FindByID(_ context.Context, id uuid.UUID) (*school.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found, ok := r.announcements[id]; ok {
		return &found, nil
	}
	return nil, nil
}

func (r *memAnnouncementRepo) FindByIDForOwner(_ context.Context, ownerAdminID, id uuid.UUID) (*school.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found, ok := r.announcements[id]; ok && found.OwnerAdminID == ownerAdminID {
		return &found, nil
	}
	return nil, nil
}

func (r *memAnnouncementRepo) FindAllForOwner(_ context.Context, ownerAdminID uuid.UUID, _ shared.Filter) ([]school.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []school.Announcement
	for _, a := range r.announcements {
		if a.OwnerAdminID == ownerAdminID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (r *memAnnouncementRepo) FindVisibleToStandard(_ context.Context, ownerAdminID uuid.UUID, standard string, _ shared.Filter) ([]school.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []school.Announcement
	for _, a := range r.announcements {
		if a.OwnerAdminID == ownerAdminID && a.VisibleTo(standard) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (r *memAnnouncementRepo) Save(_ context.Context, announcement *school.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.announcements[announcement.ID] = *announcement
	return nil
}

func (r *memAnnouncementRepo) Delete(_ context.Context, ownerAdminID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found, ok := r.announcements[id]; !ok || found.OwnerAdminID != ownerAdminID {
		return shared.ErrNotFound
	}
	delete(r.announcements, id)
	return nil
}

// captureNotifier records delivered credentials for assertions
type captureNotifier struct {
	mu        sync.Mutex
	delivered []deliveredCredential
	err       error
}

type deliveredCredential struct {
	studentID uuid.UUID
	username  string
	password  string
}

func (n *captureNotifier) NotifyCredentials(_ context.Context, student *school.Student, username, password string) error {
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, deliveredCredential{
		studentID: student.ID,
		username:  username,
		password:  password,
	})
	return nil
}

var errNotifierDown = errors.New("sms gateway unavailable")
