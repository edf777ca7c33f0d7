package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malhajar17/jim-and-dwight/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func leadJSON(t *testing.T, lead model.Lead) []byte {
	t.Helper()
	data, err := json.Marshal(lead)
	require.NoError(t, err)
	return data
}

func TestPostgres_GetLead(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	data := leadJSON(t, model.Lead{ID: "abc", Name: "Jane Doe", Email: "jane.doe@acme.com"})
	mock.ExpectQuery(`SELECT data FROM leads WHERE id = \$1`).
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	got, err := st.GetLead(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLead_Missing(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM leads WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := st.GetLead(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListLeads_Filtered(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"data"}).
		AddRow(leadJSON(t, model.Lead{ID: "a", Name: "A"})).
		AddRow(leadJSON(t, model.Lead{ID: "b", Name: "B"}))
	mock.ExpectQuery(`SELECT data FROM leads WHERE true AND enrich_state = \$1 ORDER BY confidence DESC`).
		WithArgs(string(model.EnrichStateDone), 100).
		WillReturnRows(rows)

	leads, err := st.ListLeads(context.Background(), LeadFilter{State: model.EnrichStateDone})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "a", leads[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveLeads_BulkUpsert(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_leads"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_leads"}, leadColumns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "leads" .+ ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	leads := []model.Lead{
		{Name: "Jane Doe"},
		{ID: "existing", Name: "Joe Bloggs"},
	}
	require.NoError(t, st.SaveLeads(context.Background(), leads))
	assert.NotEmpty(t, leads[0].ID, "save assigns an ID in place")
	assert.Equal(t, "existing", leads[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveLeads_Empty(t *testing.T) {
	st, mock := newMockPostgresStore(t)
	assert.NoError(t, st.SaveLeads(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
