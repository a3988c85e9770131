package eventbus

import "time"

// Topics published after a successful commit. Subjects are versioned so
// consumers can pin a payload shape.
const (
	TopicRegistrationConfirmed = "registration.confirmed.v1"
	TopicRegistrationDeclined  = "registration.declined.v1"
	TopicRacePackClaimed       = "racepack.claimed.v1"
)

// RegistrationConfirmed is the payload of TopicRegistrationConfirmed.
type RegistrationConfirmed struct {
	RegistrationID int64     `json:"registrationId"`
	UserID         int64     `json:"userId"`
	Email          string    `json:"email"`
	QrCodes        []string  `json:"qrCodes"`
	ConfirmedAt    time.Time `json:"confirmedAt"`
}

// RegistrationDeclined is the payload of TopicRegistrationDeclined.
type RegistrationDeclined struct {
	RegistrationID         int64     `json:"registrationId"`
	UserID                 int64     `json:"userId"`
	Reason                 string    `json:"reason"`
	ReleasedEarlyBirdSlots int       `json:"releasedEarlyBirdSlots"`
	DeclinedAt             time.Time `json:"declinedAt"`
}

// RacePackClaimed is the payload of TopicRacePackClaimed.
type RacePackClaimed struct {
	ClaimID        int64     `json:"claimId"`
	Code           string    `json:"code"`
	CategoryID     int64     `json:"categoryId"`
	ParticipantIDs []int64   `json:"participantIds"`
	ClaimedBy      string    `json:"claimedBy"`
	ScansRemaining int       `json:"scansRemaining"`
	ClaimedAt      time.Time `json:"claimedAt"`
}
