package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/travel_app/internal/events"
	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/internal/testutil"
	"github.com/Skotchmaster/travel_app/pkg/clock"
	"github.com/Skotchmaster/travel_app/pkg/hash"
	"github.com/Skotchmaster/travel_app/pkg/tokens"
)

type testEnv struct {
	Clock    *clock.Mock
	Store    *repo.GormRepo
	Codec    *tokens.Codec
	Events   *events.Recorder
	Auth     *AuthService
	Access   *AccessControl
	Trips    *TripService
	Members  *MemberService
	Messages *MessageService
	Comments *CommentService
	Users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := repo.New(testutil.NewDB(t), clk)
	codec, err := tokens.NewCodec(tokens.Config{
		SecretKey:  []byte("service-test-secret-0123456789abcdef"),
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, clk)
	require.NoError(t, err)

	hasher, err := hash.New(hash.Params{Time: 1, Memory: 1024, Threads: 1})
	require.NoError(t, err)

	rec := &events.Recorder{}
	access := &AccessControl{Store: store}
	return &testEnv{
		Clock:  clk,
		Store:  store,
		Codec:  codec,
		Events: rec,
		Auth: &AuthService{
			Store:  store,
			Hasher: hasher,
			Tokens: codec,
			Clock:  clk,
			Events: rec,
		},
		Access:   access,
		Trips:    &TripService{Store: store, Access: access, Events: rec},
		Members:  &MemberService{Store: store, Access: access, Events: rec},
		Messages: &MessageService{Store: store, Access: access},
		Comments: &CommentService{Store: store, Access: access},
		Users:    &UserService{Store: store, Events: rec},
	}
}

func (e *testEnv) register(t *testing.T, email string) *Session {
	t.Helper()
	sess, err := e.Auth.Register(context.Background(), email, "pw-"+email)
	require.NoError(t, err)
	return sess
}

func (e *testEnv) trip(t *testing.T, organizer uint, title string) *models.Trip {
	t.Helper()
	trip, err := e.Trips.Create(context.Background(), organizer, TripInput{Title: title, Destination: "Porto"})
	require.NoError(t, err)
	return trip
}

func (e *testEnv) join(t *testing.T, tripID, userID uint) {
	t.Helper()
	_, err := e.Members.Join(context.Background(), tripID, userID)
	require.NoError(t, err)
}
