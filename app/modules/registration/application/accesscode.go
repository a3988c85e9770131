package registrationservice

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/uptrace/bun"
)

const maxAccessCodeLen = 30

var (
	accessCodeStrip      = regexp.MustCompile(`[^a-z0-9\s]`)
	accessCodeWhitespace = regexp.MustCompile(`\s+`)
)

// AccessCodeBase derives the access code stem from a user's name, falling back
// to the email and then the id. The result is lowercase [a-z0-9_], at most
// 30 characters, and never empty.
func AccessCodeBase(name, email string, userID int64, now time.Time) string {
	base := name
	if strings.TrimSpace(base) == "" {
		base = email
	}
	if strings.TrimSpace(base) == "" {
		base = fmt.Sprintf("user%d", userID)
	}

	slug := accessCodeStrip.ReplaceAllString(strings.ToLower(base), "")
	slug = accessCodeWhitespace.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > maxAccessCodeLen {
		slug = strings.TrimRight(slug[:maxAccessCodeLen], "_")
	}
	if slug == "" {
		slug = "u" + strconv.FormatInt(now.UnixMilli(), 36)
	}
	return slug
}

// mintAccessCode picks the first free code among base, base_2, base_3 and so
// on, and stores it on the user. A code set concurrently by another confirm
// wins over the one picked here.
func (s *RegistrationService) mintAccessCode(ctx context.Context, db bun.IDB, user *registrationdb.User) (string, error) {
	base := AccessCodeBase(user.Name, user.Email, user.ID, s.now())
	code := base
	for n := 2; ; n++ {
		taken, err := s.repo.AccessCodeExists(ctx, db, code)
		if err != nil {
			return "", err
		}
		if !taken {
			break
		}
		code = fmt.Sprintf("%s_%d", base, n)
	}
	stored, err := s.repo.SetAccessCode(ctx, db, user.ID, code)
	if err != nil {
		return "", err
	}
	user.AccessCode = &stored
	return stored, nil
}
