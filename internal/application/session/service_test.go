package session

import (
	"context"
	"errors"
	"testing"

	"github.com/payment-reminder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, token string, sess *domain.Session) error {
	args := m.Called(ctx, token, sess)
	return args.Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s := args.Get(0); s != nil {
		return s.(*domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "usr_1",
		Username:     "asha",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		FullName:     "Asha Rao",
		Role:         domain.RoleUser,
		IsApproved:   true,
		IsActive:     true,
	}
}

func TestLoginUnknownUser(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(sessions, users)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginWrongPassword(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	u := testUser(t, "correct-horse")
	users.On("GetByUsername", mock.Anything, "asha").Return(u, nil)

	svc := NewService(sessions, users)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "asha", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	u := testUser(t, "correct-horse")
	u.IsActive = false
	users.On("GetByUsername", mock.Anything, "asha").Return(u, nil)

	svc := NewService(sessions, users)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "asha", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginUnapprovedUserGetsSession(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	u := testUser(t, "correct-horse")
	u.IsApproved = false
	users.On("GetByUsername", mock.Anything, "asha").Return(u, nil)
	sessions.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*domain.Session")).Return(nil)

	svc := NewService(sessions, users)
	sess, err := svc.Login(context.Background(), LoginRequest{Username: "asha", Password: "correct-horse"})
	require.NoError(t, err)
	assert.False(t, sess.IsApproved)
	assert.NotEmpty(t, sess.Token)
}

func TestLoginSuccess(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	u := testUser(t, "correct-horse")
	users.On("GetByUsername", mock.Anything, "asha").Return(u, nil)

	var storedToken string
	sessions.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*domain.Session")).
		Run(func(args mock.Arguments) {
			storedToken = args.String(1)
			sess := args.Get(2).(*domain.Session)
			assert.Equal(t, u.UserID, sess.UserID)
			assert.Equal(t, u.Username, sess.Username)
			assert.Equal(t, u.Role, sess.Role)
		}).Return(nil)

	svc := NewService(sessions, users)
	sess, err := svc.Login(context.Background(), LoginRequest{Username: "asha", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, storedToken, sess.Token)
	assert.Len(t, sess.Token, 64)
	sessions.AssertExpectations(t)
}

func TestLogoutPropagatesStoreError(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	storeErr := errors.New("redis down")
	sessions.On("Delete", mock.Anything, "tok").Return(storeErr)

	svc := NewService(sessions, users)
	assert.ErrorIs(t, svc.Logout(context.Background(), "tok"), storeErr)
}

func TestCurrentReadsSnapshotOnly(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	snap := &domain.Session{Token: "tok", UserID: "usr_1", Username: "asha"}
	sessions.On("Get", mock.Anything, "tok").Return(snap, nil)

	svc := NewService(sessions, users)
	sess, err := svc.Current(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, snap, sess)
	users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRefreshSnapshotUpdatesMutableFields(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	snap := &domain.Session{Token: "tok", UserID: "usr_1", Username: "asha", IsApproved: false, IsActive: true}
	sessions.On("Get", mock.Anything, "tok").Return(snap, nil)

	u := testUser(t, "pw")
	u.IsApproved = true
	u.Role = domain.RoleAdmin
	users.On("Get", mock.Anything, "usr_1").Return(u, nil)
	sessions.On("Put", mock.Anything, "tok", mock.AnythingOfType("*domain.Session")).Return(nil)

	svc := NewService(sessions, users)
	sess, err := svc.RefreshSnapshot(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, sess.IsApproved)
	assert.Equal(t, domain.RoleAdmin, sess.Role)
	sessions.AssertExpectations(t)
}

func TestRefreshSnapshotDeletedUserDestroysSession(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	snap := &domain.Session{Token: "tok", UserID: "usr_1"}
	sessions.On("Get", mock.Anything, "tok").Return(snap, nil)
	users.On("Get", mock.Anything, "usr_1").Return(nil, domain.ErrNotFound)
	sessions.On("Delete", mock.Anything, "tok").Return(nil)

	svc := NewService(sessions, users)
	_, err := svc.RefreshSnapshot(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertExpectations(t)
}
