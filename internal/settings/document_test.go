package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectd/internal/config"
)

func TestGenerator_WithServerDetails(t *testing.T) {
	doc := NewGenerator().WithServerDetails("https://example.com", "alice", config.Secret("secret"))

	assert.Equal(t, "https://example.com", doc.General[KeyServerURL])
	assert.Equal(t, "alice", doc.General[KeyUsername])
	assert.Equal(t, "secret", doc.General[KeyPassword])
	assert.Equal(t, ProtocolDefault, doc.General[KeyProtocol])
	assert.Empty(t, doc.Admin)
	assert.Empty(t, doc.Project)

	conn := doc.Connection()
	assert.Equal(t, Connection{ServerURL: "https://example.com", UserName: "alice", Password: "secret"}, conn)
}

func TestDocument_ConnectionDefaults(t *testing.T) {
	conn := Document{General: map[string]any{}}.Connection()
	assert.Equal(t, DefaultServerURL, conn.ServerURL)
	assert.Empty(t, conn.UserName)
	assert.Empty(t, conn.Password)
}

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want ImportResult
	}{
		{"valid", NewGenerator().WithServerDetails("https://x.org", "u", "p"), ImportSuccess},
		{"missing general", Document{}, ImportInvalidSettings},
		{"non string username", Document{General: map[string]any{KeyUsername: 42.0}}, ImportInvalidSettings},
		{"google sheets", Document{General: map[string]any{KeyProtocol: ProtocolGoogleSheets}}, ImportUnsupportedProtocol},
		{"extra keys allowed", Document{General: map[string]any{"form_update_mode": "manual"}}, ImportSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.Validate())
		})
	}
}

func TestParse_RoundTripsSections(t *testing.T) {
	doc, err := Parse([]byte(`{"general":{"server_url":"https://x.org","username":"bob","delete_send":true}}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", doc.Connection().UserName)
	assert.NotNil(t, doc.Admin)
	assert.NotNil(t, doc.Project)

	v, ok := doc.Bool(KeyDeleteSend)
	assert.True(t, ok)
	assert.True(t, v)

	out, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"general":{"server_url":"https://x.org","username":"bob","delete_send":true},"admin":{},"project":{}}`, string(out))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	assert.True(t, errors.Is(err, ErrInvalidDocument))

	_, err = Parse([]byte(`{"admin":{}}`))
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestDocument_StableDropsVolatileKeys(t *testing.T) {
	doc := Document{
		General: map[string]any{KeyServerURL: "https://x.org", "last_updated": "2024-01-01"},
		Admin:   map[string]any{"timestamp": 12.0, "change_server": true},
	}
	stable := doc.Stable()
	assert.Equal(t, map[string]any{KeyServerURL: "https://x.org"}, stable.General)
	assert.Equal(t, map[string]any{"change_server": true}, stable.Admin)
	assert.Contains(t, doc.General, "last_updated", "original must not be mutated")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	doc := NewGenerator().WithServerDetails("https://x.org", "u", "p")

	require.NoError(t, store.Save(ctx, "p1", doc))

	loaded, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, doc.Connection(), loaded.Connection())

	loaded.General[KeyUsername] = "mutated"
	again, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "u", again.Connection().UserName)

	require.NoError(t, store.Delete(ctx, "p1"))
	_, err = store.Load(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, store.Save(ctx, "", doc))
}
