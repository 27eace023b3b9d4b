package notify

import (
	"context"

	appschool "github.com/edupay/backend/internal/application/school"
	"github.com/edupay/backend/internal/domain/school"
	"go.uber.org/zap"
)

// LogNotifier implements appschool.CredentialNotifier by logging the
// delivery without the password itself. Stands in for an SMS gateway
// in environments where one is not configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

// NotifyCredentials records that credentials were issued. The password
// is never written to the log.
func (n *LogNotifier) NotifyCredentials(_ context.Context, student *school.Student, username string, _ string) error {
	n.log.Info("Portal credentials issued",
		zap.String("student_id", student.ID.String()),
		zap.String("student_code", student.StudentCode),
		zap.String("username", username),
		zap.String("mobile_no", student.MobileNo))
	return nil
}

var _ appschool.CredentialNotifier = (*LogNotifier)(nil)
