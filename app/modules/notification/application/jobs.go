package notificationservice

import "github.com/riverqueue/river"

// QueueNotifications is the river queue email jobs run on.
const QueueNotifications = "notifications"

// QrCodeLine is one QR code listed in a confirmation email.
type QrCodeLine struct {
	Code         string `json:"code"`
	CategoryName string `json:"category_name"`
	TotalPacks   int    `json:"total_packs"`
	MaxScans     int    `json:"max_scans"`
}

// ConfirmationEmailJob tells a registrant their payment was accepted.
type ConfirmationEmailJob struct {
	RegistrationID int64        `json:"registration_id"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	AccessCode     string       `json:"access_code"`
	TotalAmount    int64        `json:"total_amount"`
	QrCodes        []QrCodeLine `json:"qr_codes"`
}

func (ConfirmationEmailJob) Kind() string { return "confirmation_email" }

func (ConfirmationEmailJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue: QueueNotifications,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}

// DeclineEmailJob tells a registrant their payment was rejected.
type DeclineEmailJob struct {
	RegistrationID int64  `json:"registration_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Reason         string `json:"reason"`
}

func (DeclineEmailJob) Kind() string { return "decline_email" }

func (DeclineEmailJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue: QueueNotifications,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}
