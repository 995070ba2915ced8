package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/eldtechnologies/folio/internal/config"
	"github.com/eldtechnologies/folio/internal/crypto"
	"github.com/eldtechnologies/folio/internal/provision"
	"github.com/eldtechnologies/folio/internal/store"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"admin", "hash-password", "relay-secret", "mail"} {
		assert.Contains(t, out, name)
	}
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := run(t, "s3cret\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.True(t, crypto.CheckPassword(hash, "s3cret"))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := run(t, "\n", "hash-password")
	assert.ErrorIs(t, err, crypto.ErrEmptyPassword)
}

func TestAdminCreateAndSetPassword(t *testing.T) {
	db := filepath.Join(t.TempDir(), "folio.db")

	out, err := run(t, "", "--database", db, "admin", "create", "--id", "me", "--password", "first")
	require.NoError(t, err)
	assert.Contains(t, out, `admin "me" created`)

	_, err = run(t, "", "--database", db, "admin", "create", "--id", "other", "--password", "x")
	assert.ErrorIs(t, err, provision.ErrAdminExists)

	_, err = run(t, "second\n", "--database", db, "admin", "set-password", "--id", "me")
	require.NoError(t, err)

	ds, err := store.Open(context.Background(), db)
	require.NoError(t, err)
	defer ds.Close()

	admin, err := ds.GetAdmin(context.Background(), "me")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, crypto.CheckPassword(admin.PasswordHash, "second"))
}

func TestAdminSetPasswordUnknownID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "folio.db")
	_, err := run(t, "", "--database", db, "admin", "set-password", "--id", "ghost", "--password", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestAdminCreateRequiresID(t *testing.T) {
	_, err := run(t, "", "admin", "create", "--password", "x")
	assert.Error(t, err)
}

func TestRelaySecretSet(t *testing.T) {
	keyring.MockInit()
	t.Setenv("EMAIL", "")
	t.Setenv("EMAIL_APP_PASS", "")

	out, err := run(t, "app-pass\n", "relay-secret", "set", "--email", "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "me@example.com")

	secret, err := keyring.Get(config.KeyringService, "me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "app-pass", secret)
}

func TestRelaySecretSetNeedsAddress(t *testing.T) {
	keyring.MockInit()
	t.Setenv("EMAIL", "")

	_, err := run(t, "x\n", "relay-secret", "set")
	assert.Error(t, err)
}

func TestMailTestNeedsCredentials(t *testing.T) {
	keyring.MockInit()
	t.Setenv("EMAIL", "")
	t.Setenv("EMAIL_APP_PASS", "")

	_, err := run(t, "", "mail", "test")
	assert.Error(t, err)
}
