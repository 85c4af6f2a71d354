package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"formprobe/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", "formprobe_", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLoadTrials(t *testing.T) {
	s := openTestStore(t)
	run := model.RunID("run-1")

	tc := model.TestCase{
		model.Mobile:      "1234567890",
		model.DateOfBirth: time.Date(2000, time.May, 4, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Record(run, model.Mobile, ClassValid, true, tc))

	trials, err := s.Trials(run)
	require.NoError(t, err)
	require.Len(t, trials, 1)

	got := trials[0]
	assert.Equal(t, "mobile", got.Field)
	assert.Equal(t, ClassValid, got.Class)
	assert.True(t, got.Accepted)
	assert.NotEmpty(t, got.ID)

	rec := gjson.Parse(got.Record)
	assert.Equal(t, "1234567890", rec.Get("mobile").String())
	assert.Equal(t, "2000-05-04T00:00:00Z", rec.Get("date_of_birth").String())
}

func TestSummaryGroupsByFieldAndClass(t *testing.T) {
	s := openTestStore(t)
	run := model.RunID("run-2")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(run, model.Email, ClassValid, true, nil))
	}
	require.NoError(t, s.Record(run, model.Email, ClassValid, false, nil))
	require.NoError(t, s.Record(run, model.Email, ClassInvalid, false, nil))
	require.NoError(t, s.Record(model.RunID("other"), model.Email, ClassValid, true, nil))

	got, err := s.Summary(run)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Tally{Field: "email", Class: ClassInvalid, Total: 1, Accepted: 0}, got[0])
	assert.Equal(t, Tally{Field: "email", Class: ClassValid, Total: 4, Accepted: 3}, got[1])
}

func TestTrialsOfUnknownRunIsEmpty(t *testing.T) {
	s := openTestStore(t)
	trials, err := s.Trials(model.RunID("nope"))
	require.NoError(t, err)
	assert.Empty(t, trials)
}
