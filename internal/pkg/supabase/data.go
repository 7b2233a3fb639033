package supabase

import (
	"github.com/supabase-community/postgrest-go"
)

// rest builds a PostgREST client scoped to the caller so row-level security
// sees their identity.
func (c *Client) rest(accessToken string) *postgrest.Client {
	return postgrest.NewClient(c.url+restPath, schema, map[string]string{
		"apikey":        c.key,
		"Authorization": "Bearer " + c.bearer(accessToken),
	})
}

// UpsertRow inserts row, or merges it into the existing row with the same id.
func (c *Client) UpsertRow(accessToken, table string, row any) error {
	_, _, err := c.rest(accessToken).From(table).Upsert(row, "id", "minimal", "").Execute()
	return restError(err)
}

// SelectRow loads the row with the given id into dest. It returns
// ErrNotFound when there is none.
func (c *Client) SelectRow(accessToken, table, columns, id string, dest any) error {
	_, err := c.rest(accessToken).From(table).
		Select(columns, "", false).
		Eq("id", id).
		Single().
		ExecuteTo(dest)
	return restError(err)
}
