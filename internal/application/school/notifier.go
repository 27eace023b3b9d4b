package school

import (
	"context"

	"github.com/edupay/backend/internal/domain/school"
)

// CredentialNotifier delivers first-login credentials to a newly
// enrolled student, typically over SMS to the registered mobile
// number. Delivery is best-effort: onboarding succeeds even when the
// notification cannot be sent, since the credentials are also returned
// to the admin who performed the enrollment.
type CredentialNotifier interface {
	NotifyCredentials(ctx context.Context, student *school.Student, username, password string) error
}
