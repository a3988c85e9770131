package flowintegrationtests

import (
	"sync"
	"testing"

	registrationservice "github.com/Black-And-White-Club/racepack/app/modules/registration/application"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarlyBird_ConcurrentRegistrationsNeverOversell(t *testing.T) {
	deps := SetupServices(t)
	fiveK := categoryID(t, "5km")
	setEarlyBirdCapacity(t, fiveK, ptr(2))

	const workers = 6
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = deps.Registration.CreateRegistration(deps.Ctx, registrationservice.CreateRegistrationRequest{
				User: deps.user(),
				Items: []registrationservice.Item{{
					Type: registrationdb.TypeIndividual, CategoryID: fiveK, JerseySize: "M", EarlyBird: true,
				}},
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var earlyBirds int
	err := testEnv.DB.NewRaw("SELECT count(*) FROM participants WHERE category_id = ? AND early_bird", fiveK).
		Scan(deps.Ctx, &earlyBirds)
	require.NoError(t, err)
	assert.Equal(t, 2, earlyBirds)

	remaining, limited, err := deps.Ledger.Remaining(deps.Ctx, nil, fiveK)
	require.NoError(t, err)
	assert.True(t, limited)
	assert.Equal(t, 0, remaining)
}

func TestDecline_ReleasesEarlyBirdSlots(t *testing.T) {
	deps := SetupServices(t)
	fiveK := categoryID(t, "5km")
	setEarlyBirdCapacity(t, fiveK, ptr(2))

	pair := deps.register(t, registrationservice.Item{
		Type: registrationdb.TypeCommunity, CategoryID: fiveK, Jerseys: map[string]int{"M": 2}, EarlyBird: true,
	}, registrationdb.TypeCommunity)
	for _, p := range pair.Participants {
		assert.True(t, p.EarlyBird)
	}

	full, err := deps.Registration.CreateRegistration(deps.Ctx, registrationservice.CreateRegistrationRequest{
		User:  deps.user(),
		Items: []registrationservice.Item{{Type: registrationdb.TypeIndividual, CategoryID: fiveK, JerseySize: "S", EarlyBird: true}},
	})
	require.NoError(t, err)
	assert.False(t, full.Participants[0].EarlyBird, "sold out slots fall back to regular pricing")

	view, err := deps.Registration.DeclinePayment(deps.Ctx, pair.RegistrationID, "transfer not received")
	require.NoError(t, err)
	assert.Equal(t, registrationdb.StatusDeclined, view.Status)
	assert.Len(t, view.Participants, 2, "participants are kept for audit")

	remaining, _, err := deps.Ledger.Remaining(deps.Ctx, nil, fiveK)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	again, err := deps.Registration.CreateRegistration(deps.Ctx, registrationservice.CreateRegistrationRequest{
		User:  deps.user(),
		Items: []registrationservice.Item{{Type: registrationdb.TypeIndividual, CategoryID: fiveK, JerseySize: "L", EarlyBird: true}},
	})
	require.NoError(t, err)
	assert.True(t, again.Participants[0].EarlyBird)

	// A second decline has nothing pending to resolve.
	_, err = deps.Registration.DeclinePayment(deps.Ctx, pair.RegistrationID, "")
	assert.Error(t, err)
}
