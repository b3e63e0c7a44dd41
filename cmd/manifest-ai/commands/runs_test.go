package commands

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/storage"
)

func TestParseRunID(t *testing.T) {
	want := uuid.New()

	id, err := parseRunID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = parseRunID("3f2a9c1b")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInvalidRequest, domain.KindOf(err))
}

func TestRunDetail(t *testing.T) {
	started := time.Date(2025, time.November, 14, 8, 0, 0, 0, time.UTC)
	finished := started.Add(3*time.Minute + 4*time.Second)
	id := uuid.New()

	tests := []struct {
		name string
		run  storage.Run
		want map[string]string
	}{
		{
			name: "finished",
			run: storage.Run{
				ID: id, Pipeline: "normalize", Filename: "manifest.xlsx", Model: "gemini",
				Status: storage.StatusSucceeded, ItemCount: 12, HSAdded: 3, HSValidated: 9,
				StartedAt: started, FinishedAt: &finished,
			},
			want: map[string]string{"ID": id.String(), "Items": "12", "HS added": "3", "Took": "3m 04s", "Error": "-"},
		},
		{
			name: "still running",
			run:  storage.Run{ID: id, Status: storage.StatusRunning, StartedAt: started},
			want: map[string]string{"Finished": "-", "Took": "-"},
		},
		{
			name: "failed",
			run: storage.Run{
				ID: id, Status: storage.StatusFailed, Error: "provider fallback exhausted",
				StartedAt: started, FinishedAt: &finished,
			},
			want: map[string]string{"Status": "failed", "Error": "provider fallback exhausted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string]string)
			for _, row := range runDetail(&tt.run) {
				require.Len(t, row, 2)
				got[row[0]] = row[1]
			}
			for field, value := range tt.want {
				assert.Equal(t, value, got[field], field)
			}
		})
	}
}
