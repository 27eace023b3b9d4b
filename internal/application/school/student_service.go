package school

import (
	"context"

	"github.com/edupay/backend/internal/domain/identity"
	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StudentService handles student enrollment and lifecycle. Onboarding
// provisions the portal account in the same operation, so a student
// record never exists without a login.
type StudentService struct {
	studentRepo school.StudentRepository
	userRepo    identity.UserRepository
	notifier    CredentialNotifier
	log         *zap.Logger
}

// NewStudentService creates a new student service
func NewStudentService(
	studentRepo school.StudentRepository,
	userRepo identity.UserRepository,
	notifier CredentialNotifier,
	log *zap.Logger,
) *StudentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudentService{
		studentRepo: studentRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		log:         log,
	}
}

// OnboardStudent enrolls a student and provisions their portal login.
// The mobile number doubles as the username; the generated password is
// returned once in the response and handed to the notifier, never
// stored in cleartext.
func (s *StudentService) OnboardStudent(ctx context.Context, req OnboardStudentRequest, ownerAdminID uuid.UUID) (*OnboardStudentResponse, error) {
	exists, err := s.studentRepo.ExistsByMobileNo(ctx, ownerAdminID, req.MobileNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_RESOURCE", "A student with this mobile number is already enrolled")
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, req.MobileNo)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("DUPLICATE_RESOURCE", "A portal account with this mobile number already exists")
	}

	// The code is derived from standard and roll number, so this also
	// rejects a second enrollment for the same seat.
	studentCode := school.GenerateStudentCode(req.Standard, req.RollNo)
	codeTaken, err := s.studentRepo.ExistsByStudentCode(ctx, ownerAdminID, studentCode)
	if err != nil {
		return nil, err
	}
	if codeTaken {
		return nil, shared.NewDomainError("DUPLICATE_RESOURCE", "A student with this roll number and standard is already enrolled")
	}

	user, password, err := identity.NewStudentUser(req.MobileNo)
	if err != nil {
		return nil, err
	}
	student, err := school.NewStudent(
		ownerAdminID,
		studentCode,
		req.Name,
		req.RollNo,
		req.Standard,
		req.MobileNo,
		req.GuardianName,
		user.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyCredentials(ctx, student, user.Username, password); err != nil {
			s.log.Warn("Failed to deliver portal credentials",
				zap.String("student_id", student.ID.String()),
				zap.Error(err))
		}
	}

	s.log.Info("Student onboarded",
		zap.String("student_id", student.ID.String()),
		zap.String("student_code", student.StudentCode),
		zap.String("owner_admin_id", ownerAdminID.String()))

	return &OnboardStudentResponse{
		Student:           ToStudentResponse(student),
		Username:          user.Username,
		TemporaryPassword: password,
	}, nil
}

// GetStudent retrieves a student scoped to the owning admin
func (s *StudentService) GetStudent(ctx context.Context, studentID, ownerAdminID uuid.UUID) (*StudentResponse, error) {
	student, err := s.findOwned(ctx, studentID, ownerAdminID)
	if err != nil {
		return nil, err
	}
	response := ToStudentResponse(student)
	return &response, nil
}

// GetStudentByUserID resolves a portal account to its student record
func (s *StudentService) GetStudentByUserID(ctx context.Context, userID uuid.UUID) (*StudentResponse, error) {
	student, err := s.studentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.ErrNotFound
	}
	response := ToStudentResponse(student)
	return &response, nil
}

// UpdateStudent updates a student profile
func (s *StudentService) UpdateStudent(ctx context.Context, studentID uuid.UUID, req UpdateStudentRequest, ownerAdminID uuid.UUID) (*StudentResponse, error) {
	student, err := s.findOwned(ctx, studentID, ownerAdminID)
	if err != nil {
		return nil, err
	}

	if req.MobileNo != student.MobileNo {
		exists, err := s.studentRepo.ExistsByMobileNo(ctx, ownerAdminID, req.MobileNo)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_RESOURCE", "A student with this mobile number is already enrolled")
		}
	}

	if err := student.UpdateProfile(req.Name, req.RollNo, req.Standard, req.MobileNo, req.GuardianName); err != nil {
		return nil, err
	}
	if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
		return nil, err
	}

	response := ToStudentResponse(student)
	return &response, nil
}

// DeactivateStudent withdraws a student and locks their portal
// account. Ledger history stays intact.
func (s *StudentService) DeactivateStudent(ctx context.Context, studentID, ownerAdminID uuid.UUID) error {
	student, err := s.findOwned(ctx, studentID, ownerAdminID)
	if err != nil {
		return err
	}

	if err := student.Deactivate(); err != nil {
		return err
	}
	if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, student.UserID)
	if err != nil {
		return err
	}
	if user != nil && user.IsActive() {
		if err := user.Deactivate(); err != nil {
			return err
		}
		if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
			return err
		}
	}

	s.log.Info("Student deactivated",
		zap.String("student_id", student.ID.String()),
		zap.String("owner_admin_id", ownerAdminID.String()))

	return nil
}

// ReactivateStudent re-enrolls a previously withdrawn student
func (s *StudentService) ReactivateStudent(ctx context.Context, studentID, ownerAdminID uuid.UUID) error {
	student, err := s.findOwned(ctx, studentID, ownerAdminID)
	if err != nil {
		return err
	}

	if err := student.Reactivate(); err != nil {
		return err
	}
	if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, student.UserID)
	if err != nil {
		return err
	}
	if user != nil && !user.IsActive() {
		if err := user.Activate(); err != nil {
			return err
		}
		if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
			return err
		}
	}

	return nil
}

// ListStudents lists students for an owning admin with filtering and pagination
func (s *StudentService) ListStudents(ctx context.Context, ownerAdminID uuid.UUID, filter StudentListFilter) ([]StudentResponse, int64, error) {
	domainFilter := buildStudentFilter(filter)

	students, err := s.studentRepo.FindAllForOwner(ctx, ownerAdminID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.studentRepo.CountForOwner(ctx, ownerAdminID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToStudentResponses(students), total, nil
}

func (s *StudentService) findOwned(ctx context.Context, studentID, ownerAdminID uuid.UUID) (*school.Student, error) {
	student, err := s.studentRepo.FindByIDForOwner(ctx, ownerAdminID, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.ErrNotFound
	}
	return student, nil
}

func buildStudentFilter(filter StudentListFilter) school.StudentFilter {
	base := shared.DefaultFilter()
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}
	base.Search = filter.Search

	out := school.StudentFilter{Filter: base}
	if filter.Standard != "" {
		out.Standard = &filter.Standard
	}
	out.Active = filter.Active
	return out
}
