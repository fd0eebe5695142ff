package services

import (
	"context"
	"testing"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/testutil"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndAuthenticate(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "jwt-secret")
	user := testutil.CreateTestUser(t, db)
	ctx := context.Background()

	result, err := svc.Login(ctx, user.Email, testutil.TestPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	got, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, user.Email, "wrong")
	assertKind(t, err, utils.KindUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.com", "x")
	assertKind(t, err, utils.KindUnauthorized)
	_, err = svc.Login(ctx, "", "")
	assertKind(t, err, utils.KindInvalidArgument)

	_, err = svc.Authenticate(ctx, "garbage")
	assertKind(t, err, utils.KindUnauthorized)
	other := NewAuthService(repository.NewUserRepository(db), "other-secret")
	_, err = other.Authenticate(ctx, result.Token)
	assertKind(t, err, utils.KindUnauthorized)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "jwt-secret")
	user := testutil.CreateTestUser(t, db)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), user.Email, testutil.TestPassword)
	assertKind(t, err, utils.KindForbidden)
}

func TestEnsureAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "jwt-secret")
	ctx := context.Background()
	seed := AdminSeed{Email: "Admin@DomainDesk.test", Password: "changeme", FullName: "Admin"}

	require.NoError(t, svc.EnsureAdmin(ctx, seed))
	require.NoError(t, svc.EnsureAdmin(ctx, seed))
	require.NoError(t, svc.EnsureAdmin(ctx, AdminSeed{}))

	var count int64
	db.Model(&models.User{}).Where("email = ?", "admin@domaindesk.test").Count(&count)
	assert.Equal(t, int64(1), count)

	_, err := svc.Login(ctx, "admin@domaindesk.test", "changeme")
	assert.NoError(t, err)
}
