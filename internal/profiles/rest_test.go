package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
)

// memRows keeps rows as JSON keyed by table and id, like PostgREST would.
type memRows struct {
	rows   map[string][]byte
	tokens []string
	err    error
}

func newMemRows() *memRows {
	return &memRows{rows: map[string][]byte{}}
}

func (m *memRows) UpsertRow(accessToken, table string, row any) error {
	m.tokens = append(m.tokens, accessToken)
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	var id struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(data, &id)
	m.rows[table+"/"+id.ID] = data
	return nil
}

func (m *memRows) SelectRow(accessToken, table, _, id string, dest any) error {
	m.tokens = append(m.tokens, accessToken)
	if m.err != nil {
		return m.err
	}
	data, ok := m.rows[table+"/"+id]
	if !ok {
		return supabase.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

var jane = models.Account{ID: "5a0e2b1c-0000-4000-8000-000000000001", Email: "jane@example.com", AccessToken: "tok"}

func TestRESTStoreRole(t *testing.T) {
	ctx := context.Background()
	rows := newMemRows()
	store := NewRESTStore(rows)

	_, err := store.Role(ctx, jane)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetRole(ctx, jane, models.RoleCurator))
	role, err := store.Role(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCurator, role)

	// Choosing again overwrites the earlier role.
	require.NoError(t, store.SetRole(ctx, jane, models.RoleDater))
	role, err = store.Role(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDater, role)

	assert.Error(t, store.SetRole(ctx, jane, models.Role("admin")))

	for _, tok := range rows.tokens {
		assert.Equal(t, "tok", tok)
	}
}

func TestRESTStoreUnknownRoleIsNotFound(t *testing.T) {
	rows := newMemRows()
	rows.rows["profiles/"+jane.ID] = []byte(`{"id":"` + jane.ID + `","role":"admin"}`)

	_, err := NewRESTStore(rows).Role(context.Background(), jane)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRESTStoreBackendError(t *testing.T) {
	rows := newMemRows()
	rows.err = &supabase.Error{Message: "permission denied for table profiles"}

	_, err := NewRESTStore(rows).Role(context.Background(), jane)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "permission denied for table profiles", supabase.Message(err))
}

func TestRESTStoreDaterProfile(t *testing.T) {
	ctx := context.Background()
	store := NewRESTStore(newMemRows())

	p, err := store.DaterProfile(ctx, jane)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, jane.ID, p.ID)
	assert.Empty(t, p.Photos)

	require.NoError(t, store.SaveDaterProfile(ctx, jane, models.DaterProfile{Bio: "Loves hiking"}))
	p, err = store.DaterProfile(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, "Loves hiking", p.Bio)
	assert.NotNil(t, p.Photos)
	assert.Empty(t, p.Photos)

	photos := []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}
	require.NoError(t, store.SaveDaterProfile(ctx, jane, models.DaterProfile{Bio: "Loves hiking", Photos: photos}))
	p, err = store.DaterProfile(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, photos, p.Photos)
}
