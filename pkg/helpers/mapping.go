package helpers

import (
	"fmt"

	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
)

// EnsureRecipientAndEmail fills Data["Email"] from the job recipient when missing.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
}
