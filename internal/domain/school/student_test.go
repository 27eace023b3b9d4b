package school

import (
	"errors"
	"testing"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	return de.Code
}

func createTestStudent(t *testing.T) *Student {
	s, err := NewStudent(uuid.New(), "STD8-042", "Anita Desai", "042", "8", "9876543210", "R. Desai", uuid.New())
	require.NoError(t, err)
	return s
}

func TestNewStudent(t *testing.T) {
	ownerAdminID := uuid.New()
	userID := uuid.New()

	s, err := NewStudent(ownerAdminID, "STD8-042", "  Anita Desai  ", "042", "8", "9876543210", "R. Desai", userID)
	require.NoError(t, err)

	assert.Equal(t, ownerAdminID, s.OwnerAdminID)
	assert.Equal(t, "Anita Desai", s.Name, "name is trimmed")
	assert.Equal(t, "STD8-042", s.StudentCode)
	assert.Equal(t, userID, s.UserID)
	assert.True(t, s.Active)
	assert.Nil(t, s.DeactivatedAt)
}

func TestNewStudent_Validation(t *testing.T) {
	owner := uuid.New()
	user := uuid.New()

	tests := []struct {
		name     string
		code     string
		stuName  string
		rollNo   string
		standard string
		mobile   string
		userID   uuid.UUID
		wantCode string
	}{
		{"empty code", "", "Anita", "042", "8", "9876543210", user, "INVALID_STUDENT_CODE"},
		{"empty name", "STD8-042", "   ", "042", "8", "9876543210", user, "INVALID_NAME"},
		{"empty roll", "STD8-042", "Anita", "", "8", "9876543210", user, "INVALID_ROLL_NO"},
		{"empty standard", "STD8-042", "Anita", "042", "", "9876543210", user, "INVALID_STANDARD"},
		{"short mobile", "STD8-042", "Anita", "042", "8", "98765", user, "INVALID_MOBILE"},
		{"alpha mobile", "STD8-042", "Anita", "042", "8", "98765abcde", user, "INVALID_MOBILE"},
		{"nil user", "STD8-042", "Anita", "042", "8", "9876543210", uuid.Nil, "INVALID_USER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStudent(owner, tt.code, tt.stuName, tt.rollNo, tt.standard, tt.mobile, "", tt.userID)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domainCode(t, err))
		})
	}
}

func TestStudent_UpdateProfile(t *testing.T) {
	s := createTestStudent(t)
	before := s.Version

	require.NoError(t, s.UpdateProfile("Anita D. Desai", "043", "9", "9123456780", "Raj Desai"))
	assert.Equal(t, "Anita D. Desai", s.Name)
	assert.Equal(t, "9", s.Standard)
	assert.Equal(t, before+1, s.Version)

	err := s.UpdateProfile("Anita", "043", "9", "bad", "")
	assert.Equal(t, "INVALID_MOBILE", domainCode(t, err))
}

func TestStudent_DeactivateBlocksUpdates(t *testing.T) {
	s := createTestStudent(t)

	require.NoError(t, s.Deactivate())
	assert.False(t, s.Active)
	assert.NotNil(t, s.DeactivatedAt)

	err := s.Deactivate()
	assert.Equal(t, "ALREADY_DEACTIVATED", domainCode(t, err))

	err = s.UpdateProfile("New Name", "001", "8", "9876543210", "")
	assert.Equal(t, "INVALID_STATE", domainCode(t, err))

	require.NoError(t, s.Reactivate())
	assert.True(t, s.Active)
	assert.Nil(t, s.DeactivatedAt)
}

func TestGenerateStudentCode(t *testing.T) {
	assert.Equal(t, "STD8-042", GenerateStudentCode("8", "042"))
	assert.Equal(t, "STD10A-7", GenerateStudentCode("10a", "7"))
}

func TestNewAnnouncement(t *testing.T) {
	owner := uuid.New()

	a, err := NewAnnouncement(owner, "Fee due reminder", "Term 2 fees are due by Friday.", AudienceAll, "")
	require.NoError(t, err)
	assert.True(t, a.VisibleTo("8"))
	assert.True(t, a.VisibleTo("12"))

	scoped, err := NewAnnouncement(owner, "Class 8 picnic", "Bring consent forms.", AudienceStandard, "8")
	require.NoError(t, err)
	assert.True(t, scoped.VisibleTo("8"))
	assert.False(t, scoped.VisibleTo("9"))

	_, err = NewAnnouncement(owner, "", "body", AudienceAll, "")
	assert.Equal(t, "INVALID_TITLE", domainCode(t, err))

	_, err = NewAnnouncement(owner, "title", "body", AudienceStandard, "")
	assert.Equal(t, "INVALID_STANDARD", domainCode(t, err))
}
