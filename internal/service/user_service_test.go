package service

import (
	"context"
	"strconv"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupInput {
	return SignupInput{
		Username:  "new_writer",
		Email:     "  Writer@Example.com ",
		Password:  "hunter22",
		FirstName: "Ada",
		LastName:  "Writer",
	}
}

func TestUserService_Signup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.users.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "writer@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, "hunter22", res.User.Password)

	_, err = env.users.Signup(ctx, validSignup())
	assertValidationError(t, err)

	tests := []struct {
		name   string
		mutate func(*SignupInput)
	}{
		{"missing password", func(in *SignupInput) { in.Password = "" }},
		{"short password", func(in *SignupInput) { in.Password = "abc" }},
		{"bad username", func(in *SignupInput) { in.Username = "_bad name" }},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }},
		{"short first name", func(in *SignupInput) { in.FirstName = "A" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignup()
			in.Username = "someone_else"
			in.Email = "else@example.com"
			tt.mutate(&in)
			_, err := env.users.Signup(ctx, in)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	signed, err := env.users.Signup(ctx, validSignup())
	require.NoError(t, err)

	res, err := env.users.Login(ctx, "WRITER@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, res.User.ID)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience), jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(uint64(signed.User.ID), 10), sub)
	assert.Equal(t, "new_writer", claims["username"])
	assert.Equal(t, "user", claims["role"])
	assert.NotEmpty(t, claims["jti"])

	_, err = env.users.Login(ctx, "writer@example.com", "wrong-password")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = env.users.Login(ctx, "nobody@example.com", "hunter22")
	assertCode(t, err, models.CodeUnauthorized)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", signed.User.ID).Update("is_active", false).Error)
	_, err = env.users.Login(ctx, "writer@example.com", "hunter22")
	assertCode(t, err, models.CodeUnauthorized)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestUserService_ToggleStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	updated, err := env.users.ToggleStatus(ctx, env.asAdmin(), env.reader.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = env.users.ToggleStatus(ctx, env.asAdmin(), env.reader.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	_, err = env.users.ToggleStatus(ctx, env.asAdmin(), env.admin.ID)
	assertCode(t, err, models.CodeSelfAction)

	other := testutil.CreateUser(t, env.db, "second_admin", models.RoleAdmin)
	_, err = env.users.ToggleStatus(ctx, env.asAdmin(), other.ID)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = env.users.ToggleStatus(ctx, env.asAuthor(), env.reader.ID)
	assertCode(t, err, models.CodeForbidden)

	_, err = env.users.ToggleStatus(ctx, env.asAdmin(), 9999)
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusDraft)
	_, err := env.users.ToggleStatus(ctx, env.asAdmin(), env.reader.ID)
	require.NoError(t, err)

	all, err := env.users.List(ctx, env.asAdmin(), ListUsersQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)
	assert.Equal(t, defaultUserPageSize, all.Pagination.Limit)

	inactive, err := env.users.List(ctx, env.asAdmin(), ListUsersQuery{Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, inactive.Users, 1)
	assert.Equal(t, env.reader.ID, inactive.Users[0].ID)

	found, err := env.users.List(ctx, env.asAdmin(), ListUsersQuery{Search: "AUTH"})
	require.NoError(t, err)
	require.Len(t, found.Users, 1)
	assert.Equal(t, int64(2), found.Users[0].BlogCount)

	_, err = env.users.List(ctx, env.asAdmin(), ListUsersQuery{Status: "banned"})
	assertValidationError(t, err)
	_, err = env.users.List(ctx, env.asReader(), ListUsersQuery{})
	assertCode(t, err, models.CodeForbidden)
}

func TestUserService_SetRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	promoted, err := env.users.SetRole(ctx, "Reader@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	var stored models.User
	require.NoError(t, env.db.First(&stored, env.reader.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	_, err = env.users.SetRole(ctx, "reader@example.com", models.Role("owner"))
	assertValidationError(t, err)
	_, err = env.users.SetRole(ctx, "ghost@example.com", models.RoleUser)
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_ResolveCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	u, err := env.users.Resolve(ctx, env.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", u.Username)
	assert.True(t, mr.Exists(cache.UserKey(env.reader.ID)))

	_, err = env.users.ToggleStatus(ctx, env.asAdmin(), env.reader.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.UserKey(env.reader.ID)))

	u, err = env.users.Resolve(ctx, env.reader.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, err = env.users.Resolve(ctx, 4242)
	assertCode(t, err, models.CodeNotFound)
}
